package main

import (
	"fmt"

	"minesite/internal/ml"

	"github.com/spf13/cobra"
)

var inspectFlags struct {
	strict bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact>",
	Short: "Load a model artifact and print the features it expects",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectFlags.strict, "strict", false, "Reject artifacts that only declare a feature count")
}

func runInspect(cmd *cobra.Command, args []string) error {
	p, err := ml.NewWithMetrics(ml.PredictorConfig{
		ModelPath:    args[0],
		StrictSchema: inspectFlags.strict,
	}, nil)
	if err != nil {
		return fmt.Errorf("load artifact: %w", err)
	}
	info := p.Info()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Model:    %s\n", info.ModelPath)
	fmt.Fprintf(out, "Type:     %s\n", info.ModelType)
	if info.LibraryVersion != "" {
		fmt.Fprintf(out, "Library:  %s\n", info.LibraryVersion)
	}
	fmt.Fprintf(out, "Patched:  %t\n", info.Patched)
	fmt.Fprintf(out, "Schema:   %s\n", info.SchemaSource)
	fmt.Fprintf(out, "Features: (%d)\n", len(info.ExpectedOrder))
	for i, name := range info.ExpectedOrder {
		fmt.Fprintf(out, "  %d. %s\n", i+1, name)
	}
	return nil
}
