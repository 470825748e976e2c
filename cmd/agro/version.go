package main

import (
	"fmt"

	"github.com/calehh/agro-gov/app"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if app.GitCommit != "" {
			fmt.Printf("%s-%s\n", app.Version, app.GitCommit)
			return
		}
		fmt.Println(app.Version)
	},
}
