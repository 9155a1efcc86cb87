package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

var (
	convertRender renderFlags
	convertOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.pdf>",
	Short: "Convert a PDF to an image PDF",
	Long: `Renders every page of a PDF to an image and reassembles the pages into
a new image-only PDF. Scanned documents with broken or unusual encodings
are often recognised more reliably after conversion.

The output defaults to <input>_image.pdf next to the input.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertRender.register(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output path for the image PDF")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if converter == nil {
		return errors.New("convert service not configured")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	render, err := convertRender.apply(cmd, settings.Render)
	if err != nil {
		return err
	}

	cmd.Printf("Converting %s to an image PDF...\n", args[0])
	result, err := converter.Convert(cmd.Context(), args[0], domain.ConvertOptions{
		Render:     render,
		OutputPath: convertOutput,
	})
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.ok.Render("Conversion complete"))
	cmd.Println(st.field("Output", result.Output.Path))
	cmd.Println(st.field("Pages", result.Output.PageCount))
	cmd.Println(st.field("Backend", result.Backend.Description()))
	cmd.Println(st.field("Input size", formatMB(result.InputBytes)))
	cmd.Println(st.field("Output size", formatMB(result.OutputBytes)))
	return nil
}
