package pricing

import "github.com/Simplici0/sumrai/internal/catalog"

// ResolveAdjustment returns the signed price delta of the selected option in
// category. Unknown options and unknown area types contribute 0.
func ResolveAdjustment(category catalog.SpecCategory, selectedOptionID string, m Measurements) float64 {
	option, ok := category.Option(selectedOptionID)
	if !ok {
		return 0
	}

	adj := option.Adjustment
	switch adj.Kind {
	case catalog.Fixed:
		return adj.Value
	case catalog.PerArea:
		area, _ := m.Area(adj.AreaType)
		return adj.Value * area
	}
	return 0
}
