package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

var (
	batchFlags       sessionFlags
	batchTypes       string
	batchConcurrency int
	batchWatch       bool
)

var batchCmd = &cobra.Command{
	Use:   "ocr-batch <directory>",
	Short: "Recover the text of every document in a directory",
	Long: `Processes every supported file directly inside a directory. A
batch_processing_<timestamp> folder is created in the directory with one
processing folder per document. PDFs go at the top level and other types
under <type>_files/.

A failed document is reported and never stops the rest of the batch.
With --watch the batch stays open and processes files added to the
directory until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchFlags.register(batchCmd)
	batchCmd.Flags().StringVarP(&batchTypes, "types", "t", "", "Comma-separated extensions to process (default: all supported)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "j", domain.DefaultBatchConcurrency, "Documents processed at once")
	batchCmd.Flags().BoolVarP(&batchWatch, "watch", "w", false, "Keep processing new files until interrupted")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchRunner == nil {
		return errors.New("batch service not configured")
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	session, err := batchFlags.apply(cmd, settings)
	if err != nil {
		return err
	}
	opts := domain.BatchOptions{Session: session, Concurrency: settings.BatchConcurrency}
	if cmd.Flags().Changed("concurrency") {
		opts.Concurrency = batchConcurrency
	}
	if opts.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", domain.ErrInvalidInput)
	}
	types := settings.BatchTypes
	if cmd.Flags().Changed("types") {
		types = splitTypes(batchTypes)
	}

	ctx := cmd.Context()
	cmd.Printf("Scanning %s...\n", args[0])
	report, err := batchRunner.Run(ctx, args[0], types, opts)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	printFoundFiles(cmd, st, report)
	printOutcomes(cmd, st, report.Outcomes)

	if batchWatch {
		hint := fmt.Sprintf("Watching %s for new files.", report.Run.SourceDir)
		if isTerminal(cmd.InOrStdin()) {
			hint += " Press Ctrl+C to stop."
		}
		cmd.Println(st.muted.Render(hint))
		err := batchRunner.Watch(ctx, report, types, opts, func(o domain.FileOutcome) {
			printOutcomes(cmd, st, []domain.FileOutcome{o})
		})
		if err != nil {
			return fmt.Errorf("watch failed: %w", err)
		}
	}

	printBatchSummary(cmd, st, report)
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(report.Outcomes))
	}
	return nil
}

// splitTypes parses a comma-separated extension list.
func splitTypes(s string) []string {
	var types []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}

func printFoundFiles(cmd *cobra.Command, st styles, report *domain.BatchReport) {
	counts := report.CountByType()
	if len(counts) == 0 {
		cmd.Println("No supported files found.")
		return
	}

	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	slices.Sort(exts)

	cmd.Println(st.title.Render(fmt.Sprintf("Found %d file(s)", len(report.Outcomes))))
	for _, ext := range exts {
		cmd.Printf("  %-6s %d\n", ext, counts[ext])
	}
	cmd.Println()
}

func printOutcomes(cmd *cobra.Command, st styles, outcomes []domain.FileOutcome) {
	for _, o := range outcomes {
		name := filepath.Base(o.Input)
		if o.Succeeded() {
			detail := fmt.Sprintf("%d chunk(s), %s", o.Chunks, o.Duration.Round(100*time.Millisecond))
			if o.Degraded {
				detail += ", " + st.warn.Render("original PDF submitted")
			}
			cmd.Printf("%s %s %s\n", st.badge(true), name, st.muted.Render("("+detail+")"))
			continue
		}
		cmd.Printf("%s %s\n", st.badge(false), name)
		cmd.Printf("         %s\n", st.failed.Render(o.Err.Error()))
	}
}

func printBatchSummary(cmd *cobra.Command, st styles, report *domain.BatchReport) {
	lines := []string{
		st.field("Processed", len(report.Outcomes)),
		st.field("Succeeded", report.Succeeded()),
		st.field("Failed", report.Failed()),
		st.field("Results", report.Run.Root),
	}
	cmd.Println()
	cmd.Println(st.summary.Render(strings.Join(lines, "\n")))
}
