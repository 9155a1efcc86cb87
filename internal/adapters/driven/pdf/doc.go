// Package pdf provides PDF page counting, page-range extraction and
// image-only PDF assembly.
//
// Page counts come from github.com/ledongthuc/pdf with pdfcpu as a fallback
// for files it cannot parse. Splitting and image import use pdfcpu.
package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu would otherwise create a config directory under the user's home.
	api.DisableConfigDir()
}

// newConfiguration returns the pdfcpu configuration used for every write.
// Classic xref tables keep the output readable by simpler parsers.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}
