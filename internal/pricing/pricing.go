// Package pricing turns extracted building facts, specification choices and
// toggled options into a priced line-item estimate.
package pricing

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/sumrai/internal/catalog"
	"github.com/Simplici0/sumrai/internal/formula"
)

const customFurnitureName = "造作家具工事"

// Request groups every input of a single estimate.
type Request struct {
	Record Record `json:"record"`
	// Specs maps specification category id to the chosen option id.
	Specs   map[string]string `json:"specifications"`
	Options Toggles           `json:"options"`
	// Exclusive maps exclusive group id to the chosen option id ("" for none)
	// and is applied over Options.
	Exclusive      map[string]string `json:"exclusive,omitempty"`
	AtticSize      float64           `json:"attic_storage_size"`
	SolarKW        float64           `json:"solar_power_kw"`
	Furniture      []FurnitureItem   `json:"custom_furniture"`
	DeepFoundation DeepFoundation    `json:"deep_foundation"`
}

// Params returns the side-channel option parameters of the request.
func (r Request) Params() Params {
	return Params{
		AtticSize:      r.AtticSize,
		SolarKW:        r.SolarKW,
		Furniture:      r.Furniture,
		DeepFoundation: r.DeepFoundation,
	}
}

// LineItem is one priced row of an estimate.
type LineItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Spec         string  `json:"spec"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	Cost         float64 `json:"cost"`
	ProfitMargin float64 `json:"profit_margin"`
	Price        float64 `json:"price"`
	Subtotal     float64 `json:"subtotal"`
}

// Totals contains roll-up values of an estimate.
type Totals struct {
	Cost         float64 `json:"total_cost"`
	Price        float64 `json:"total_price"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
}

// Estimate is the full engine output. Warnings records recovered failures
// such as a catalog formula that could not be evaluated.
type Estimate struct {
	Items    []LineItem `json:"items"`
	Totals   Totals     `json:"totals"`
	Warnings []string   `json:"warnings,omitempty"`
}

// PriceOf derives the sell price from cost and a profit margin.
func PriceOf(cost, margin float64) float64 {
	if margin < 1 {
		return cost / (1 - margin)
	}
	return cost
}

// Engine computes estimates. It keeps no state between calls.
type Engine struct {
	log *zap.Logger
}

// New returns an Engine that reports recovered failures to log.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Calculate computes an estimate with a silent engine.
func Calculate(c *catalog.Catalog, req Request) Estimate {
	return New(nil).Calculate(c, req)
}

type draft struct {
	id       string
	name     string
	spec     string
	quantity float64
	unit     string
	cost     float64
	margin   float64
}

// Calculate prices req against c. It never fails: formula errors, missing
// selections and invalid numbers degrade to zero-valued output.
func (e *Engine) Calculate(c *catalog.Catalog, req Request) Estimate {
	m := req.Record.Measurements()
	vars := m.Vars()
	toggles := e.resolveToggles(c, req)
	params := req.Params()

	var warnings []string

	hasFurniture := len(req.Furniture) > 0

	base := make([]draft, 0, len(c.CostItems))
	index := make(map[string]int, len(c.CostItems))
	for _, item := range c.CostItems {
		if hasFurniture && item.ID == c.FurnitureReplaces {
			continue
		}

		cost, err := formula.Evaluate(item.Formula, vars)
		if err != nil {
			e.log.Warn("formula evaluation failed",
				zap.String("item", item.ID),
				zap.String("formula", item.Formula),
				zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("%s: %v", item.Name, err))
			cost = 0
		}

		quantity := 1.0
		if item.QuantityVar != "" {
			quantity = vars[item.QuantityVar]
		}

		index[item.ID] = len(base)
		base = append(base, draft{
			id:       item.ID,
			name:     item.Name,
			spec:     specLabel(c, item, req.Specs),
			quantity: quantity,
			unit:     item.Unit,
			cost:     cost,
			margin:   item.ProfitMargin,
		})
	}

	for _, category := range c.SpecCategories {
		targets := c.Adjusts[category.ID]
		if len(targets) == 0 {
			continue
		}

		selected := req.Specs[category.ID]
		if _, ok := category.Option(selected); !ok && selected != "" {
			e.log.Warn("unknown specification option",
				zap.String("category", category.ID),
				zap.String("option", selected))
			warnings = append(warnings, fmt.Sprintf("%s: unknown option %q", category.Name, selected))
		}

		adjustment := ResolveAdjustment(category, selected, m)
		for _, target := range targets {
			if i, ok := index[target]; ok {
				base[i].cost += adjustment
			}
		}
	}

	options := make([]draft, 0)
	for _, category := range c.OptionCategories {
		for _, o := range category.Options {
			if !toggles[o.ID] {
				continue
			}

			switch o.Kind {
			case catalog.KindCustomFurniture:
				continue
			case catalog.KindMerge:
				i, ok := index[o.MergeInto]
				if !ok {
					continue
				}
				base[i].cost += PriceOption(o, true, m, params).Cost
				if o.MergeLabel != "" {
					base[i].spec += " / " + o.MergeLabel
				}
				continue
			}

			priced := PriceOption(o, true, m, params)
			options = append(options, draft{
				id:       o.ID,
				name:     o.Name,
				spec:     priced.Spec,
				quantity: priced.Quantity,
				unit:     priced.Unit,
				cost:     priced.Cost,
				margin:   c.OptionProfitMargin,
			})
		}
	}

	if hasFurniture {
		if d, ok := customFurnitureDraft(c, req.Furniture); ok {
			options = append(options, d)
		}
	}

	return finalize(append(base, options...), warnings)
}

func (e *Engine) resolveToggles(c *catalog.Catalog, req Request) Toggles {
	toggles := req.Options.Normalize(c)

	groupIDs := make([]string, 0, len(req.Exclusive))
	for id := range req.Exclusive {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	for _, id := range groupIDs {
		g, ok := c.LookupGroup(id)
		if !ok {
			e.log.Warn("unknown exclusive group", zap.String("group", id))
			continue
		}
		toggles = toggles.Choose(g, req.Exclusive[id])
	}
	return toggles
}

func customFurnitureDraft(c *catalog.Catalog, items []FurnitureItem) (draft, bool) {
	cost := CustomFurnitureCost(items)
	if cost <= 0 {
		return draft{}, false
	}

	d := draft{
		id:       catalog.OptionCustomFurniture,
		name:     customFurnitureName,
		spec:     fmt.Sprintf("%d 点", len(items)),
		quantity: 1,
		unit:     unitSet,
		cost:     cost,
		margin:   c.OptionProfitMargin,
	}
	for _, category := range c.OptionCategories {
		for _, o := range category.Options {
			if o.Kind == catalog.KindCustomFurniture {
				d.id, d.name = o.ID, o.Name
			}
		}
	}
	if replaced, ok := c.LookupCostItem(c.FurnitureReplaces); ok {
		d.margin = replaced.ProfitMargin
	}
	return d, true
}

func finalize(drafts []draft, warnings []string) Estimate {
	est := Estimate{Items: make([]LineItem, 0, len(drafts)), Warnings: warnings}

	for _, d := range drafts {
		if d.cost == 0 {
			continue
		}
		price := PriceOf(d.cost, d.margin)
		est.Items = append(est.Items, LineItem{
			ID:           d.id,
			Name:         d.name,
			Spec:         d.spec,
			Quantity:     d.quantity,
			Unit:         d.unit,
			Cost:         d.cost,
			ProfitMargin: d.margin,
			Price:        price,
			Subtotal:     price,
		})
		est.Totals.Cost += d.cost
		est.Totals.Price += price
	}

	est.Totals.Profit = est.Totals.Price - est.Totals.Cost
	if est.Totals.Price != 0 {
		est.Totals.ProfitMargin = est.Totals.Profit / est.Totals.Price
	}
	return est
}

func specLabel(c *catalog.Catalog, item catalog.CostItem, specs map[string]string) string {
	if len(item.LabelParts) > 0 {
		parts := make([]string, 0, len(item.LabelParts))
		for _, part := range item.LabelParts {
			name := selectedName(c, part.Category, specs)
			if part.Prefix == "" {
				if name != "" {
					parts = append(parts, name)
				}
				continue
			}
			parts = append(parts, part.Prefix+name)
		}
		if len(parts) == 0 {
			return noSpecLabel
		}
		return strings.Join(parts, " / ")
	}

	if item.SpecCategory == "" {
		return noSpecLabel
	}
	name := selectedName(c, item.SpecCategory, specs)
	if name == "" || (item.SpecMatch != "" && !strings.Contains(name, item.SpecMatch)) {
		return noSpecLabel
	}
	return name
}

func selectedName(c *catalog.Catalog, categoryID string, specs map[string]string) string {
	category, ok := c.LookupSpecCategory(categoryID)
	if !ok {
		return ""
	}
	option, ok := category.Option(specs[categoryID])
	if !ok {
		return ""
	}
	return option.Name
}
