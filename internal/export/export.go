// Package export renders estimates into downloadable documents.
package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/sumrai/internal/pricing"
)

const defaultTitle = "見積り"

// Headers are the column titles of a line-item table.
var Headers = []string{"項目", "仕様", "数量", "単位", "原価", "単価", "小計"}

// Summary labels, in output order.
const (
	LabelTotalCost    = "原価合計"
	LabelProfit       = "利益"
	LabelProfitMargin = "利益率"
	LabelTotalPrice   = "合計 (税抜)"
)

// Filename returns "<project>_<date>.<ext>", falling back to 見積り when the
// project has no name. Path separators are stripped from the name.
func Filename(project string, date time.Time, ext string) string {
	name := strings.TrimSpace(project)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\r', '\n':
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = defaultTitle
	}
	return fmt.Sprintf("%s_%s.%s", name, date.Format("2006-01-02"), ext)
}

func formatYen(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMargin(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

func itemRow(item pricing.LineItem) []string {
	return []string{
		sanitizeCell(item.Name),
		sanitizeCell(item.Spec),
		formatQuantity(item.Quantity),
		sanitizeCell(item.Unit),
		formatYen(item.Cost),
		formatYen(item.Price),
		formatYen(item.Subtotal),
	}
}

// sanitizeCell keeps spreadsheet programs from reading a text cell as a
// formula. The bare "-" placeholder is left alone.
func sanitizeCell(s string) string {
	if len(s) < 2 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}
