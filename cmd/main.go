package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "menusync",
	Short:        "Menu catalog service",
	Long:         `Serves the menu catalog from the entity store and its tree cache, and keeps both in line with the catalog feed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, reconcileCmd, reseedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
