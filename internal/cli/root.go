package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akoval/cfgclone/internal/config"
	"github.com/akoval/cfgclone/internal/ui"
)

var (
	// Global flags
	repoName     string // Named repository from config
	repoPathFlag string // Explicit path
	configPath   string

	// Resolved values
	resolvedRepoPath string
	repoCfg          *config.RepoConfig
	cfg              *config.Config
)

// errSilent signals that the error was already reported (JSON mode).
var errSilent = errors.New("error already reported")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cfgclone",
	Short: "cfgclone - clone entities inside an XML configuration repository",
	Long: `cfgclone duplicates a named entity inside an XML configuration dump:
it copies the entity's definition file under a new name, regenerates every
embedded identifier, and registers the clone in the repository's index files
while keeping their type-grouped ordering intact.

Re-running the same clone is safe: leftovers of a previous run are removed
before anything is written.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip repository resolution for commands that don't need it
		switch cmd.Name() {
		case "config", "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "config" || cmd.Parent().Name() == "completion") {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		// Resolve repository root: explicit path > named repo > default
		if repoPathFlag != "" {
			resolvedRepoPath = repoPathFlag
		} else {
			resolvedRepoPath, err = cfg.GetRepoPath(repoName)
			if err != nil {
				if repoName != "" {
					return handleErrorMsg(ErrRepoNotFound,
						fmt.Sprintf("repository '%s' not found in config", repoName),
						"Check [repos] in your config.toml")
				}
				return handleErrorMsg(ErrRepoNotSpecified,
					`no repository specified

Either:
  1. Use --root /path/to/config-dump
  2. Use --repo <name> (from config)
  3. Set default_repo in ~/.config/cfgclone/config.toml`, "")
			}
		}

		// Verify repository root exists
		if _, err := os.Stat(resolvedRepoPath); os.IsNotExist(err) {
			return handleErrorMsg(ErrRepoNotFound,
				fmt.Sprintf("repository root not found: %s", resolvedRepoPath), "")
		}

		// Repo-local overrides (cfgclone.yaml), if present
		repoCfg, err = config.LoadRepoConfig(resolvedRepoPath)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&repoName, "repo", "r", "", "Named repository from config")
	rootCmd.PersistentFlags().StringVar(&repoPathFlag, "root", "", "Explicit path to the repository root")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for script use)")
}

// getRepoPath returns the resolved repository root.
func getRepoPath() string {
	return resolvedRepoPath
}

// getRepoConfig returns the loaded repo-local config.
func getRepoConfig() *config.RepoConfig {
	if repoCfg == nil {
		return &config.RepoConfig{}
	}
	return repoCfg
}

func loadGlobalConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}
