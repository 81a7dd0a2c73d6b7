package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/sumrai/internal/pricing"
)

const yenFormat = "#,##0"

// Sheet describes the workbook header block.
type Sheet struct {
	Title string
	Date  time.Time
}

// XLSX renders est as a single-sheet workbook and returns its bytes.
func XLSX(sheet Sheet, est pricing.Estimate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	title := sheet.Title
	if title == "" {
		title = defaultTitle
	}
	name := sheetName(title)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]
	widths := []float64{24, 48, 10, 8, 16, 16, 16}
	for i, col := range columns {
		if err := f.SetColWidth(name, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	yen := yenFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{
		Border:       thinBorders(),
		CustomNumFmt: &yen,
	})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	textStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create text style: %w", err)
	}
	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary style: %w", err)
	}

	if err := f.MergeCell(name, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(name, "A1", sanitizeCell(title))
	f.SetCellStyle(name, "A1", lastCol+"1", titleStyle)
	if !sheet.Date.IsZero() {
		f.SetCellValue(name, "A2", sheet.Date.Format("2006-01-02"))
	}

	for i, h := range Headers {
		f.SetCellValue(name, fmt.Sprintf("%s4", columns[i]), h)
	}
	f.SetCellStyle(name, "A4", lastCol+"4", headerStyle)

	row := 5
	for _, item := range est.Items {
		r := fmt.Sprint(row)
		f.SetCellValue(name, "A"+r, sanitizeCell(item.Name))
		f.SetCellValue(name, "B"+r, sanitizeCell(item.Spec))
		f.SetCellValue(name, "C"+r, item.Quantity)
		f.SetCellValue(name, "D"+r, sanitizeCell(item.Unit))
		f.SetCellValue(name, "E"+r, math.Round(item.Cost))
		f.SetCellValue(name, "F"+r, math.Round(item.Price))
		f.SetCellValue(name, "G"+r, math.Round(item.Subtotal))
		f.SetCellStyle(name, "A"+r, "D"+r, textStyle)
		f.SetCellStyle(name, "E"+r, "G"+r, moneyStyle)
		row++
	}

	row++
	summary := []struct {
		label string
		value any
	}{
		{LabelTotalCost, math.Round(est.Totals.Cost)},
		{LabelProfit, math.Round(est.Totals.Profit)},
		{LabelProfitMargin, formatMargin(est.Totals.ProfitMargin)},
		{LabelTotalPrice, math.Round(est.Totals.Price)},
	}
	for _, s := range summary {
		r := fmt.Sprint(row)
		f.SetCellValue(name, "F"+r, s.label)
		f.SetCellStyle(name, "F"+r, "F"+r, summaryLabelStyle)
		f.SetCellValue(name, "G"+r, s.value)
		f.SetCellStyle(name, "G"+r, "G"+r, moneyStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims title to the 31 characters a sheet name may hold and
// replaces the characters sheet names reject.
func sheetName(title string) string {
	runes := []rune(title)
	for i, r := range runes {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			runes[i] = '_'
		}
	}
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
