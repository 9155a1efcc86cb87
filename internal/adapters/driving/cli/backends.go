package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List rendering backends",
	Long: `Lists the PDF rendering backends in priority order and whether each
is installed. The first installed backend is used unless --backend or
render.backend selects another.`,
	Args: cobra.NoArgs,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, _ []string) error {
	if backendCatalog == nil {
		return errors.New("backend catalog not configured")
	}

	st := newStyles(cmd.OutOrStdout())
	statuses := backendCatalog.Statuses()
	available := 0
	for _, s := range statuses {
		state := st.failed.Render("not installed")
		if s.Available {
			state = st.ok.Render("available")
			available++
		}
		cmd.Printf("%d. %-12s %-28s %s\n", s.Priority, s.Kind, s.Kind.Description(), state)
	}
	if available == 0 {
		cmd.Println()
		cmd.Println(st.warn.Render("No backend installed. Install poppler-utils, mupdf-tools or ghostscript."))
	}
	return nil
}
