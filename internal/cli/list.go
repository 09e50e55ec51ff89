package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akoval/cfgclone/internal/artifact"
	"github.com/akoval/cfgclone/internal/check"
	"github.com/akoval/cfgclone/internal/ui"
)

// ListResult is the data payload of the list command.
type ListResult struct {
	Index   string   `json:"index"`
	Records []string `json:"records"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities registered in the repository indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := getRepoConfig()
		layout := rc.Layout(getRepoPath())
		store := artifact.NewStore()

		var results []ListResult
		for _, path := range []string{layout.StructuralIndexPath(), layout.DumpIndexPath()} {
			records, err := check.Records(store, path, rc.RecordContainer)
			if err != nil {
				return handleCloneError(err)
			}
			results = append(results, ListResult{Index: path, Records: records})
		}

		if isJSONOutput() {
			outputSuccess(results)
			return nil
		}

		for _, res := range results {
			fmt.Println(ui.Header(res.Index))
			lastType := ""
			for _, rec := range res.Records {
				typ, _, _ := strings.Cut(rec, ".")
				if typ != lastType {
					fmt.Println(ui.Hint("  " + typ))
					lastType = typ
				}
				fmt.Printf("    %s\n", rec)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
