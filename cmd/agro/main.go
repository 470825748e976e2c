package main

import (
	"fmt"
	"os"
)

func main() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(keysCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
