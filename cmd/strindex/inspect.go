package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/strindex/internal/domain/analysis"
	"github.com/kailas-cloud/strindex/internal/domain/nlquery"
	"github.com/kailas-cloud/strindex/internal/domain/predicate"
)

type analyzeOutput struct {
	ID         string              `json:"id"`
	Value      string              `json:"value"`
	Properties analysis.Properties `json:"properties"`
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <value>",
		Short: "Print the computed properties of a string",
		Long: `Computes length, palindrome status, unique characters, word count, SHA-256
fingerprint and character frequencies without storing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props := analysis.Analyze(args[0])
			return printJSON(cmd, analyzeOutput{ID: props.SHA256Hash, Value: args[0], Properties: props})
		},
	}
}

type translateOutput struct {
	Original      string              `json:"original"`
	ParsedFilters predicate.Predicate `json:"parsed_filters"`
	Rules         []string            `json:"rules"`
}

func newTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <phrase>",
		Short: "Show how a plain-English phrase is interpreted",
		Example: `  strindex translate "all single word palindromic strings"
  strindex translate strings longer than 10 characters`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := strings.Join(args, " ")
			p, rules, err := nlquery.Explain(phrase)
			if err != nil {
				return fmt.Errorf("translate %q: %w", phrase, err)
			}
			return printJSON(cmd, translateOutput{Original: phrase, ParsedFilters: p, Rules: rules})
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
