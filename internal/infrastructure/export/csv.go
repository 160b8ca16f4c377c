// Package export renders recipe analyses as spreadsheets and publishes them
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/alchemorsel/patisserie/internal/domain/composition"
)

// ContentType is the MIME type of exported sheets
const ContentType = "text/csv; charset=utf-8"

var header = []string{
	"Ingrediente", "Cantidad (g)", "% Total",
	"Azúcar %", "Aceite %", "Mantequilla %", "M. Cacao %",
	"Cacao %", "AMP %", "Lactosa %", "Otro %",
	"Agua %", "Alcohol %",
	"POD", "PAC", "Kcal", "Coste (€)",
}

// CSVExporter writes an analysis as a semicolon separated sheet: one row per
// ingredient, a TOTALES row and a RESUMEN block
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the sheet to w
func (e *CSVExporter) Export(analysis composition.Analysis, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	rows := [][]string{header}
	for _, bd := range analysis.Breakdowns {
		rows = append(rows, []string{
			bd.Name,
			f1(bd.QuantityG),
			f1(bd.Percentage),
			f1(bd.Sugar),
			f1(bd.Oil),
			f1(bd.ButterFat),
			f1(bd.CocoaButter),
			f1(bd.Cocoa),
			f1(bd.AMP),
			f1(bd.Lactose),
			f1(bd.OtherSolids),
			f1(bd.Water),
			f1(bd.Alcohol),
			f1(bd.POD),
			f1(bd.PAC),
			f1(bd.Kcal),
			f2(bd.Cost),
		})
	}

	t := analysis.Totals
	rows = append(rows,
		[]string{},
		[]string{
			"TOTALES",
			f1(t.TotalWeightG),
			"100.0",
			f1(t.SugarPct),
			f1(t.OilPct),
			f1(t.ButterFatPct),
			f1(t.CocoaButterPct),
			f1(t.CocoaPct),
			f1(t.AMPPct),
			f1(t.LactosePct),
			f1(t.OtherSolidsPct),
			f1(t.WaterPct),
			f1(t.AlcoholPct),
			f1(t.POD),
			f1(t.PAC),
			f1(t.KcalPer100g),
			f2(t.TotalCost),
		},
		[]string{},
		[]string{"RESUMEN"},
		[]string{"Azúcares totales", f1(t.TotalSugarsPct) + "%"},
		[]string{"Grasas totales", f1(t.TotalFatsPct) + "%"},
		[]string{"Materia seca", f1(t.TotalDryMatterPct) + "%"},
		[]string{"Líquidos", f1(t.TotalLiquidsPct) + "%"},
		[]string{"POD", f1(t.POD)},
		[]string{"PAC", f1(t.PAC)},
		[]string{"Kcal/100g", f1(t.KcalPer100g)},
		[]string{"Coste total", f2(t.TotalCost) + " €"},
	)

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Bytes renders the sheet into memory
func (e *CSVExporter) Bytes(analysis composition.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(analysis, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToString renders the sheet as a string
func (e *CSVExporter) ToString(analysis composition.Analysis) (string, error) {
	b, err := e.Bytes(analysis)
	return string(b), err
}

func f1(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func f2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
