package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"minesite/internal/client"
	"minesite/internal/features"
	"minesite/internal/ml"

	"github.com/spf13/cobra"
)

var predictFlags struct {
	values map[string]*float64
	json   bool
	batch  string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Ask the server whether a site is a potential mining site",
	Long:  "Sends one feature record to the server. Fields that are not given\ntake the slider defaults on the server side.",
	RunE:  runPredict,
}

func init() {
	f := predictCmd.Flags()
	predictFlags.values = make(map[string]*float64)
	for _, field := range features.Canonical() {
		predictFlags.values[field.Key] = f.Float64(field.Key, field.Default,
			fmt.Sprintf("%s [%g, %g]", field.Label, field.Min, field.Max))
	}
	f.BoolVar(&predictFlags.json, "json", false, "Print the raw JSON result")
	f.StringVar(&predictFlags.batch, "batch", "", "Predict each JSON line of this file (- for stdin) over one WebSocket session")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	if predictFlags.batch != "" {
		return runBatch(cmd)
	}

	values := make(map[string]float64)
	for key, v := range predictFlags.values {
		if cmd.Flags().Changed(key) {
			values[key] = *v
		}
	}

	result, err := newClient().Predict(cmd.Context(), values)
	if err != nil {
		var apiErr *client.APIError
		if errors.Is(err, ml.ErrFeatureMismatch) && errors.As(err, &apiErr) {
			return fmt.Errorf("feature mismatch: missing %v, model expects %v", apiErr.Missing, apiErr.Expected)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if predictFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "User Input Features:\n")
	for _, row := range result.Inputs {
		fmt.Fprintf(out, "  %-28s %g\n", row.Name, row.Value)
	}
	fmt.Fprintf(out, "\nPrediction Result: %s\n", result.Outcome)
	if result.SchemaSource == ml.SchemaPositional {
		fmt.Fprintf(out, "Warning: model declares only a feature count; inputs assumed in slider order\n")
	}
	fmt.Fprintf(out, "\nNote: %s\n", result.Note)
	return nil
}

// runBatch reads one JSON object of feature values per line and prints one
// outcome per line. Blank lines are skipped.
func runBatch(cmd *cobra.Command) error {
	var in io.Reader = cmd.InOrStdin()
	if predictFlags.batch != "-" {
		f, err := os.Open(predictFlags.batch)
		if err != nil {
			return fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		in = f
	}

	session, err := client.DialSession(cmd.Context(), rootFlags.server, rootFlags.timeout)
	if err != nil {
		return err
	}
	defer session.Close()

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var values map[string]float64
		if err := json.Unmarshal([]byte(text), &values); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		result, err := session.Predict(values)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		fmt.Fprintf(out, "%d\t%d\t%s\n", line, result.Label, result.Outcome)
	}
	return scanner.Err()
}
