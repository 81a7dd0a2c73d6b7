package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Simplici0/sumrai/internal/pricing"
)

const utf8BOM = "\ufeff"

// WriteCSV writes est as a UTF-8 CSV document with a byte-order mark so that
// spreadsheet programs detect the encoding. Line items are followed by a
// blank row and the summary rows.
func WriteCSV(w io.Writer, est pricing.Estimate) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, item := range est.Items {
		if err := cw.Write(itemRow(item)); err != nil {
			return fmt.Errorf("write item %s: %w", item.ID, err)
		}
	}

	summary := [][]string{
		{""},
		{LabelTotalCost, formatYen(est.Totals.Cost)},
		{LabelProfit, formatYen(est.Totals.Profit)},
		{LabelProfitMargin, formatMargin(est.Totals.ProfitMargin)},
		{LabelTotalPrice, formatYen(est.Totals.Price)},
	}
	if err := cw.WriteAll(summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
