// Package render provides rendering backends that rasterise PDF pages by
// shelling out to Poppler pdftoppm, MuPDF mutool or Ghostscript.
//
// Each backend reports availability by looking up its binary on PATH, so a
// missing tool is a normal condition rather than an error.
package render
