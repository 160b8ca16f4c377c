package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alchemorsel/patisserie/internal/domain/composition"
	"github.com/alchemorsel/patisserie/internal/infrastructure/export"
	"github.com/alchemorsel/patisserie/internal/ports/inbound"
	"gopkg.in/yaml.v3"
)

func writeJSON(w io.Writer, dto *inbound.AnalysisDTO) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto)
}

// writeYAML renders the JSON shape of the analysis as block YAML, keeping
// the JSON field names and order
func writeYAML(w io.Writer, dto *inbound.AnalysisDTO) error {
	raw, err := json.Marshal(dto)
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle clears the flow and quoting styles a JSON document parses with
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func writeTable(w io.Writer, dto *inbound.AnalysisDTO) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Recipe:\t%s\n", dto.RecipeName)
	fmt.Fprintf(tw, "Category:\t%s\n", dto.Validation.CategoryName)
	fmt.Fprintf(tw, "Total weight:\t%.1f g\n\n", dto.Totals.TotalWeightG)

	fmt.Fprintln(tw, "INGREDIENT\tGRAMS\t%\tSUGAR\tFAT\tWATER")
	for _, bd := range dto.Breakdowns {
		fat := bd.Oil + bd.ButterFat + bd.CocoaButter
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			bd.Name, bd.QuantityG, bd.Percentage, bd.Sugar, fat, bd.Water)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "METRIC\tVALUE %\tRANGE\tLEVEL")
	for _, m := range dto.Validation.Metrics {
		rng := "-"
		if m.Range != nil {
			rng = fmt.Sprintf("%.1f - %.1f", m.Range.Min, m.Range.Max)
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\n", m.DisplayName, m.Value, rng, m.Level)
	}
	fmt.Fprintf(tw, "POD\t%.1f\t\t\n", dto.Totals.POD)
	fmt.Fprintf(tw, "PAC\t%.1f\t\t\n", dto.Totals.PAC)
	fmt.Fprintf(tw, "Cost\t%.2f\t\t\n", dto.Totals.TotalCost)

	if err := tw.Flush(); err != nil {
		return err
	}

	if len(dto.Validation.Recommendations) > 0 {
		fmt.Fprintln(w)
		for _, rec := range dto.Validation.Recommendations {
			fmt.Fprintf(w, "- %s\n", rec)
		}
	}
	for _, warning := range dto.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning.Message)
	}
	return nil
}

func writeCSV(w io.Writer, dto *inbound.AnalysisDTO) error {
	return export.NewCSVExporter().Export(composition.Analysis{
		Breakdowns: dto.Breakdowns,
		Totals:     dto.Totals,
	}, w)
}
