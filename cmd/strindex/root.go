package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/strindex/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "strindex",
		Short: "String analysis and lookup service",
		Long: `strindex stores strings together with their computed properties and answers
lookups by structured filters or plain-English phrases.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newTranslateCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.String())
		},
	}
}
