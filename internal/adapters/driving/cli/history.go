package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent OCR runs",
	Long: `Lists recorded OCR sessions and batch runs, most recent first.
With a run ID, shows every file of that run and where its text was written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	if len(args) == 1 {
		return showRun(cmd, args[0])
	}

	runs, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.muted).
		Headers("ID", "KIND", "STARTED", "DURATION", "OK", "FAILED", "INPUT")
	for _, r := range runs {
		t.Row(
			r.ID,
			string(r.Kind),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Duration().Round(time.Second).String(),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			r.Input,
		)
	}
	cmd.Println(t.Render())
	return nil
}

func showRun(cmd *cobra.Command, id string) error {
	run, err := historyService.Get(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run not found: %s", id)
		}
		return fmt.Errorf("failed to get run: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.title.Render("Run " + run.ID))
	cmd.Println(st.field("Kind", run.Kind))
	cmd.Println(st.field("Input", run.Input))
	cmd.Println(st.field("Folder", run.Location))
	cmd.Println(st.field("Started", run.StartedAt.Local().Format(time.RFC1123)))
	cmd.Println(st.field("Duration", run.Duration().Round(time.Second)))
	cmd.Println(st.field("Succeeded", run.Succeeded))
	cmd.Println(st.field("Failed", run.Failed))
	if run.Error != "" {
		cmd.Println(st.field("Error", st.failed.Render(run.Error)))
	}

	if len(run.Files) > 0 {
		cmd.Println()
		for _, f := range run.Files {
			cmd.Printf("%s %s\n", st.badge(f.Error == ""), f.Input)
			if f.Error != "" {
				cmd.Printf("         %s\n", st.failed.Render(f.Error))
			} else if f.Output != "" {
				cmd.Printf("         %s\n", st.muted.Render(f.Output))
			}
		}
	}
	return nil
}
