package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akoval/cfgclone/internal/artifact"
	"github.com/akoval/cfgclone/internal/engine"
	"github.com/akoval/cfgclone/internal/ident"
	"github.com/akoval/cfgclone/internal/repo"
	"github.com/akoval/cfgclone/internal/ui"
)

var cloneType string

// CloneResult is the data payload of a successful clone.
type CloneResult struct {
	Donor      string   `json:"donor"`
	Clone      string   `json:"clone"`
	Definition string   `json:"definition"`
	Indexes    []string `json:"indexes"`
}

var cloneCmd = &cobra.Command{
	Use:   "clone <donor-name> <clone-name>",
	Short: "Clone an entity and register it in the repository indexes",
	Long: `Clone a configuration entity under a new name.

The donor's definition file is copied with all name-derived references
rewritten, every embedded identifier is regenerated, and a registration
record for the clone is inserted into Configuration.xml and
ConfigDumpInfo.xml directly after the last record of the same type.

Any leftovers of a previous clone under the same name are removed first, so
the command can be re-run safely.

Examples:
  cfgclone clone --type Catalog Items Widgets
  cfgclone clone --type Document Invoice InvoiceCopy --root /data/erp-dump`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		donor := repo.Entity{Type: cloneType, Name: args[0]}
		cloneName := args[1]

		rc := getRepoConfig()
		layout := rc.Layout(getRepoPath())
		opts := engine.Options{
			Layout:           layout,
			IdentifierPrefix: rc.IdentifierPrefix,
			RecordContainer:  rc.RecordContainer,
		}

		reporter := engine.NopReporter()
		if !isJSONOutput() && ui.Interactive() {
			reporter = cliReporter{}
		}

		p, err := engine.New(artifact.NewStore(), ident.UUID{}, opts, donor, cloneName, reporter)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		if err := p.Run(); err != nil {
			return handleCloneError(err)
		}

		clone := repo.Entity{Type: donor.Type, Name: cloneName}
		result := CloneResult{
			Donor:      donor.QualifiedName(),
			Clone:      clone.QualifiedName(),
			Definition: layout.DefinitionPath(clone),
			Indexes:    []string{layout.StructuralIndexPath(), layout.DumpIndexPath()},
		}

		if isJSONOutput() {
			outputSuccess(result)
			return nil
		}

		fmt.Println(ui.Successf("Cloned %s to %s", ui.FilePath(result.Donor), ui.FilePath(result.Clone)))
		fmt.Println(ui.Hint(fmt.Sprintf("  definition: %s", result.Definition)))
		return nil
	},
}

// handleCloneError maps the engine's error taxonomy onto stable CLI codes.
func handleCloneError(err error) error {
	var nf *artifact.NotFoundError
	if errors.As(err, &nf) {
		return handleError(ErrArtifactNotFound, err, "Check the donor name and repository root")
	}
	var pe *artifact.ParseError
	if errors.As(err, &pe) {
		return handleError(ErrMalformedArtifact, err, "")
	}
	var mi *engine.MissingIdentifierError
	if errors.As(err, &mi) {
		return handleError(ErrMissingIdentifiers, err,
			"The donor does not match the expected schema shape; check identifier_prefix in cfgclone.yaml")
	}
	var we *artifact.WriteError
	if errors.As(err, &we) {
		return handleError(ErrWriteFailed, err, "")
	}
	return handleError(ErrInternal, err, "")
}

// cliReporter renders engine progress to the terminal.
type cliReporter struct{}

func (cliReporter) Step(msg string)    { fmt.Println(ui.Step(msg)) }
func (cliReporter) Success(msg string) { fmt.Println(ui.Success(msg)) }

func init() {
	cloneCmd.Flags().StringVarP(&cloneType, "type", "t", "", "Entity type of the donor (e.g. Catalog)")
	_ = cloneCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(cloneCmd)
}
