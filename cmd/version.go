package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the build version, overridable at link time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the worklens version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("worklens %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
