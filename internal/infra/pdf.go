package infra

// pdf.go renders the production sheet for an assembly using go-pdf/fpdf:
//   - assembly name, type and slug header
//   - batch quantity and print timestamp
//   - flattened leaf table (component, type, quantity, unit cost, cost)
//   - bold total cost
//   - packaging instructions, when present

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/go-pdf/fpdf"
)

const maxNameRunes = 48

// WriteBOMSheet writes an A4 production sheet PDF for sheet to w.
func WriteBOMSheet(w io.Writer, sheet *dto.BOMSheet) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Production sheet: "+sheet.Assembly.DisplayName, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(sheet.Assembly.DisplayName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("%s  |  %s", sheet.Assembly.AssemblyType, sheet.Assembly.Slug), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Batch: %d  |  Printed %s", sheet.Quantity, time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Component table ──────────────────────────────────────────────────────
	cols := []float64{contentW * 0.42, contentW * 0.14, contentW * 0.14, contentW * 0.15, contentW * 0.15}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range []string{"Component", "Type", "Quantity", "Unit cost", "Cost"} {
		align := "R"
		if i < 2 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 6, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, c := range sheet.Components {
		pdf.CellFormat(cols[0], 6, tr(truncate(c.DisplayName, maxNameRunes)), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 6, typeLabel(c.ComponentType), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 6, c.TotalQuantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6, "$"+c.UnitCost.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4], 6, "$"+c.TotalCost.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if len(sheet.Components) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 6, "No components.", "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW-cols[4], 7, "TOTAL COST:", "", 0, "L", false, 0, "")
	pdf.CellFormat(cols[4], 7, "$"+sheet.TotalCost.StringFixed(2), "", 1, "R", false, 0, "")

	if p := sheet.Assembly.PackagingInstructions; p != nil && *p != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "Packaging", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, tr(*p), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write bom sheet: %w", err)
	}
	return nil
}

func typeLabel(t model.ComponentType) string {
	switch t {
	case model.ComponentFinishedUnit:
		return "Baked"
	case model.ComponentMaterialUnit:
		return "Material"
	}
	return string(t)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
