package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"encomendas_backend/internal/algorithms"
	"encomendas_backend/internal/models"

	"github.com/spf13/cobra"
)

type matchOptions struct {
	suggestionPath string
	residentsPath  string
	trace          bool
	overrides      algorithms.PolicyOverrides
}

func newMatchCmd() *cobra.Command {
	opts := &matchOptions{}
	var threshold int
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Escolhe o morador para uma etiqueta lida",
		Long: `Lê a sugestão da IA (JSON) e a lista de moradores (JSON array)
e imprime o morador escolhido. Com --trace imprime a pontuação de todos.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("threshold") {
				opts.overrides.Threshold = &threshold
			}
			return runMatch(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.suggestionPath, "suggestion", "", "arquivo JSON com a sugestão da etiqueta")
	cmd.Flags().StringVar(&opts.residentsPath, "residents", "", "arquivo JSON com os moradores")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "imprimir a pontuação de cada morador")
	cmd.Flags().IntVar(&threshold, "threshold", algorithms.DefaultPolicy().Threshold, "pontuação mínima")
	_ = cmd.MarkFlagRequired("suggestion")
	_ = cmd.MarkFlagRequired("residents")
	return cmd
}

func runMatch(out io.Writer, opts *matchOptions) error {
	var suggestion models.LabelSuggestion
	if err := readJSON(opts.suggestionPath, &suggestion); err != nil {
		return fmt.Errorf("suggestion: %w", err)
	}
	var residents []models.Resident
	if err := readJSON(opts.residentsPath, &residents); err != nil {
		return fmt.Errorf("residents: %w", err)
	}

	result := algorithms.NewResidentMatcher(opts.overrides.Apply(algorithms.DefaultPolicy())).Match(suggestion, residents)

	fmt.Fprintf(out, "unit: block=%q apartment=%q\n", result.Block, result.Apartment)
	if result.Carrier != "" {
		fmt.Fprintf(out, "carrier: %s\n", result.Carrier)
	}
	if result.Matched() {
		fmt.Fprintf(out, "match: %s (%s) score=%d\n", result.Resident.FullName, unitLabel(result.Resident), result.Score)
	} else {
		fmt.Fprintf(out, "match: none (best score=%d)\n", result.Score)
	}

	if opts.trace {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tRESIDENT\tREASONS")
		for _, s := range result.Trace {
			fmt.Fprintf(w, "%d\t%s\t%v\n", s.Score, s.FullName, s.Reasons)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func unitLabel(r *models.Resident) string {
	if r.Block == "" {
		return "apto " + r.Apartment
	}
	return "bloco " + r.Block + ", apto " + r.Apartment
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
