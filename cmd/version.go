package cmd

import (
	"fmt"
	"runtime"

	"github.com/hrbox-pull/hrbox-pull/config"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Print the version number of hrbox-pull",
	// no config needed
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s %s/%s\nBuildTime: %s, Commit: %s\n",
			config.AppName, config.Version, runtime.GOOS, runtime.GOARCH, config.BuildTime, config.GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(VersionCmd)
}
