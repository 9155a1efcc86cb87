package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

var (
	ocrFlags  sessionFlags
	ocrOutput string
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <input>",
	Short: "Recover the text of a PDF or image",
	Long: `Runs one processing session: the input is copied into a
<name>_processing folder, converted to an image PDF, split into chunks and
sent through Google Drive OCR. The recovered text is written to
<name>_ocr_text.txt inside the folder.

Supported inputs: PDF, JPEG, PNG, GIF, BMP and DOC. Images are submitted
as a single chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	ocrFlags.register(ocrCmd)
	ocrCmd.Flags().StringVarP(&ocrOutput, "output", "o", "", "Output path for the recovered text")
	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("ocr service not configured")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	opts, err := ocrFlags.apply(cmd, settings)
	if err != nil {
		return err
	}
	opts.OutputPath = ocrOutput

	cmd.Printf("Processing %s...\n", args[0])
	result, err := pipeline.Run(cmd.Context(), args[0], opts)
	if err != nil {
		if result != nil && result.Folder.Path != "" {
			cmd.Printf("Processing folder kept for inspection: %s\n", result.Folder.Path)
		}
		return fmt.Errorf("ocr failed: %w", err)
	}

	printSessionResult(cmd, result)
	return nil
}

func printSessionResult(cmd *cobra.Command, result *domain.SessionResult) {
	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.ok.Render("OCR complete"))
	cmd.Println(st.field("Text", result.Output))
	cmd.Println(st.field("Folder", result.Folder.Path))
	if result.Input.PageCount > 0 {
		cmd.Println(st.field("Pages", result.Input.PageCount))
	}
	cmd.Println(st.field("Chunks", result.Chunks))
	if result.Backend != domain.BackendAuto {
		cmd.Println(st.field("Backend", result.Backend.Description()))
	}
	cmd.Println(st.field("Duration", result.Duration.Round(100*time.Millisecond)))
	if result.Degraded {
		cmd.Println(st.warn.Render("Image conversion failed; the original PDF was submitted instead."))
	}
}
