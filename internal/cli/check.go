package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akoval/cfgclone/internal/artifact"
	"github.com/akoval/cfgclone/internal/check"
	"github.com/akoval/cfgclone/internal/ui"
)

// CheckResult is the data payload of the check command.
type CheckResult struct {
	Issues []check.Issue `json:"issues"`
	Clean  bool          `json:"clean"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check index ordering and cross-file consistency",
	Long: `Check the structural invariants cfgclone maintains:

- records of the same type are contiguous in each index
- every entity registered in one index is registered in the other
- every registered entity has a definition file

This is not schema validation; the repository may still be rejected by its
consumer for reasons outside these checks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := getRepoConfig()
		checker := check.NewChecker(artifact.NewStore(), rc.Layout(getRepoPath()), rc.RecordContainer)

		issues, err := checker.Run()
		if err != nil {
			return handleCloneError(err)
		}

		result := CheckResult{Issues: issues, Clean: true}
		for _, issue := range issues {
			if issue.Level == check.LevelError {
				result.Clean = false
			}
		}

		if isJSONOutput() {
			outputSuccess(result)
			return nil
		}

		if len(issues) == 0 {
			fmt.Println(ui.Success("Repository indexes are consistent"))
			return nil
		}
		for _, issue := range issues {
			switch issue.Level {
			case check.LevelError:
				fmt.Println(ui.Error(fmt.Sprintf("%s: %s", ui.FilePath(issue.Path), issue.Message)))
			default:
				fmt.Println(ui.Warning(fmt.Sprintf("%s: %s", ui.FilePath(issue.Path), issue.Message)))
			}
		}
		if !result.Clean {
			return handleErrorMsg(ErrCheckFailed, "repository has consistency errors", "")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
