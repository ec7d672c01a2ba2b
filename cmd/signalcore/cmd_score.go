package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a feature snapshot JSON",
		Long:  "Reads a feature snapshot from a file (or stdin with -) and prints the rule engine's signal as JSON.",
		RunE:  runScore,
	}
	cmd.Flags().String("input", "-", "Feature snapshot JSON file, - for stdin")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")

	var reader io.Reader = os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("failed to open snapshot file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var snap domain.FeatureSnapshot
	if err := json.NewDecoder(reader).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode feature snapshot: %w", err)
	}

	result := scoring.NewEngine().Score(scoring.FromSnapshot(&snap))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
