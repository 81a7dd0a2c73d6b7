package pricing

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/Simplici0/sumrai/internal/catalog"
)

const (
	// PanelCapacityKW is the output of one solar panel.
	PanelCapacityKW = 0.51
	// MaxSolarPanels caps the panel count so absurd kW inputs stay positive.
	MaxSolarPanels = 1_000_000

	deepFoundationRate  = 50000
	deepFoundationSlope = 0.05
	deepFoundationLow   = 0.2
	deepFoundationHigh  = 0.3

	unitSet     = "式"
	unitPanel   = "枚"
	unitTatami  = "帖"
	noSpecLabel = "-"
)

// FurnitureType is the construction type of a custom furniture item.
type FurnitureType string

const (
	FurnitureOpen   FurnitureType = "open"
	FurnitureHinged FurnitureType = "hinged"
	FurnitureDrawer FurnitureType = "drawer"
)

// PricePerCubicMeter returns the yen price per m³ of the type, 0 if unknown.
func (t FurnitureType) PricePerCubicMeter() float64 {
	switch t {
	case FurnitureOpen:
		return 100000
	case FurnitureHinged:
		return 200000
	case FurnitureDrawer:
		return 300000
	}
	return 0
}

// FurnitureItem is one user-added piece of built-in furniture, in meters.
type FurnitureItem struct {
	ID     string        `json:"id"`
	Type   FurnitureType `json:"type"`
	Width  float64       `json:"width"`
	Depth  float64       `json:"depth"`
	Height float64       `json:"height"`
}

// NewFurnitureItem returns an item with the standard starting dimensions.
func NewFurnitureItem(t FurnitureType) FurnitureItem {
	return FurnitureItem{
		ID:     "cf-" + uuid.NewString(),
		Type:   t,
		Width:  1.5,
		Depth:  0.45,
		Height: 0.85,
	}
}

// Volume returns the item volume in m³; negative dimensions count as 0.
func (f FurnitureItem) Volume() float64 {
	return max(f.Width, 0) * max(f.Depth, 0) * max(f.Height, 0)
}

// Cost returns volume × type price.
func (f FurnitureItem) Cost() float64 {
	return f.Volume() * f.Type.PricePerCubicMeter()
}

// CustomFurnitureCost sums the cost of every item.
func CustomFurnitureCost(items []FurnitureItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Cost()
	}
	return total
}

// DeepFoundation holds the deep-foundation sub-form: lengths A, B, C in
// meters and whether landscaping mitigates a marginal height difference.
type DeepFoundation struct {
	A           float64 `json:"a"`
	B           float64 `json:"b"`
	C           float64 `json:"c"`
	Landscaping bool    `json:"landscaping"`
}

// HeightDifference returns X = A − 0.05·B.
func (d DeepFoundation) HeightDifference() float64 {
	return d.A - d.B*deepFoundationSlope
}

// Required reports whether deep foundation work is needed for X.
func (d DeepFoundation) Required() bool {
	x := d.HeightDifference()
	switch {
	case x >= deepFoundationHigh:
		return true
	case x > deepFoundationLow:
		return !d.Landscaping
	}
	return false
}

// DeepFoundationCost returns X·C·50000 when the work is required and every
// length is positive, otherwise 0.
func DeepFoundationCost(d DeepFoundation) float64 {
	if d.A <= 0 || d.B <= 0 || d.C <= 0 || !d.Required() {
		return 0
	}
	return max(d.HeightDifference()*d.C*deepFoundationRate, 0)
}

// SolarPanels returns the number of panels needed to reach kw, rounded up
// and capped at MaxSolarPanels.
func SolarPanels(kw float64) int {
	if kw <= 0 || math.IsNaN(kw) {
		return 0
	}
	n := math.Ceil(kw / PanelCapacityKW)
	if n >= MaxSolarPanels {
		return MaxSolarPanels
	}
	return int(n)
}

// Params are the side-channel inputs some options read.
type Params struct {
	AtticSize      float64
	SolarKW        float64
	Furniture      []FurnitureItem
	DeepFoundation DeepFoundation
}

// OptionPrice is the priced form of one toggled option.
type OptionPrice struct {
	Cost     float64
	Spec     string
	Quantity float64
	Unit     string
}

// PriceOption prices a single option. Untoggled options cost nothing.
func PriceOption(o catalog.Option, toggled bool, m Measurements, p Params) OptionPrice {
	if !toggled {
		return OptionPrice{Spec: noSpecLabel, Unit: unitSet}
	}

	switch o.Kind {
	case catalog.KindDeepFoundation:
		d := p.DeepFoundation
		cost := DeepFoundationCost(d)
		spec := noSpecLabel
		if cost > 0 {
			spec = fmt.Sprintf("H差:%.3fm L:%sm", d.HeightDifference(), strconv.FormatFloat(d.C, 'f', -1, 64))
		}
		return OptionPrice{Cost: cost, Spec: spec, Quantity: 1, Unit: unitSet}

	case catalog.KindSolar:
		panels := SolarPanels(p.SolarKW)
		if panels == 0 {
			return OptionPrice{Spec: noSpecLabel, Unit: unitSet}
		}
		return OptionPrice{
			Cost:     o.Cost.Value * float64(panels),
			Spec:     fmt.Sprintf("%.2fkW", float64(panels)*PanelCapacityKW),
			Quantity: float64(panels),
			Unit:     unitPanel,
		}

	case catalog.KindAttic:
		size := max(p.AtticSize, 0)
		return OptionPrice{Cost: o.Cost.Value * size, Spec: noSpecLabel, Quantity: size, Unit: unitTatami}

	case catalog.KindCustomFurniture:
		return OptionPrice{
			Cost:     CustomFurnitureCost(p.Furniture),
			Spec:     fmt.Sprintf("%d 点", len(p.Furniture)),
			Quantity: 1,
			Unit:     unitSet,
		}
	}

	return OptionPrice{Cost: genericCost(o.Cost, m), Spec: noSpecLabel, Quantity: 1, Unit: unitSet}
}

func genericCost(c catalog.Amount, m Measurements) float64 {
	switch c.Kind {
	case catalog.Fixed:
		return c.Value
	case catalog.PerArea:
		if c.AreaType == catalog.AreaTotalFloor {
			return c.Value * m.TotalFloorArea
		}
	}
	return 0
}
