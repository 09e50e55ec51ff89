package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akoval/cfgclone/internal/config"
	"github.com/akoval/cfgclone/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global cfgclone configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the global config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if isJSONOutput() {
			outputSuccess(map[string]string{"path": path})
			return nil
		}
		fmt.Println(path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default global config file if none exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefault()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]string{"path": path})
			return nil
		}
		fmt.Println(ui.Successf("Config at %s", ui.FilePath(path)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
