package catalog

import (
	"errors"
	"fmt"

	"github.com/Simplici0/sumrai/internal/formula"
)

// ErrInvalid wraps every catalog integrity problem reported by Validate.
var ErrInvalid = errors.New("invalid catalog")

// Validate checks referential integrity: formulas parse and only read known
// variables, every mapping target exists, margins are usable, exclusive
// groups reference real options. All problems are reported together.
func (c *Catalog) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	allowedVars := make(map[string]bool, len(FormulaVars))
	for _, v := range FormulaVars {
		allowedVars[v] = true
	}

	specIDs := make(map[string]bool, len(c.SpecCategories))
	for _, cat := range c.SpecCategories {
		if cat.ID == "" {
			add("specification category %q has no id", cat.Name)
			continue
		}
		if specIDs[cat.ID] {
			add("duplicate specification category %q", cat.ID)
		}
		specIDs[cat.ID] = true

		if len(cat.Options) == 0 {
			add("specification category %q has no options", cat.ID)
		}
		seen := make(map[string]bool, len(cat.Options))
		for _, o := range cat.Options {
			if o.ID == "" || seen[o.ID] {
				add("specification category %q has a missing or duplicate option id %q", cat.ID, o.ID)
			}
			seen[o.ID] = true
			if err := validateAmount(o.Adjustment, false); err != nil {
				add("specification option %s/%s: %v", cat.ID, o.ID, err)
			}
		}
	}

	itemIDs := make(map[string]bool, len(c.CostItems))
	for _, item := range c.CostItems {
		if item.ID == "" {
			add("cost item %q has no id", item.Name)
			continue
		}
		if itemIDs[item.ID] {
			add("duplicate cost item %q", item.ID)
		}
		itemIDs[item.ID] = true

		expr, err := formula.Parse(item.Formula)
		if err != nil {
			add("cost item %q: %v", item.ID, err)
		} else {
			for _, v := range expr.Vars() {
				if !allowedVars[v] {
					add("cost item %q: formula reads unknown variable %q", item.ID, v)
				}
			}
		}

		if item.ProfitMargin < 0 || item.ProfitMargin >= 1 {
			add("cost item %q: profit margin %v outside [0,1)", item.ID, item.ProfitMargin)
		}
		if item.SpecCategory != "" && !specIDs[item.SpecCategory] {
			add("cost item %q links unknown specification category %q", item.ID, item.SpecCategory)
		}
		for _, part := range item.LabelParts {
			if !specIDs[part.Category] {
				add("cost item %q label reads unknown specification category %q", item.ID, part.Category)
			}
		}
		if item.QuantityVar != "" && !allowedVars[item.QuantityVar] {
			add("cost item %q: unknown quantity variable %q", item.ID, item.QuantityVar)
		}
	}

	for catID, targets := range c.Adjusts {
		if !specIDs[catID] {
			add("adjustment mapping names unknown specification category %q", catID)
		}
		for _, target := range targets {
			if !itemIDs[target] {
				add("specification category %q adjusts unknown cost item %q", catID, target)
			}
		}
	}

	optionIDs := make(map[string]bool)
	for _, cat := range c.OptionCategories {
		for _, o := range cat.Options {
			if o.ID == "" || optionIDs[o.ID] {
				add("option category %q has a missing or duplicate option id %q", cat.ID, o.ID)
			}
			optionIDs[o.ID] = true

			if err := validateAmount(o.Cost, true); err != nil {
				add("option %q: %v", o.ID, err)
			}
			switch o.Kind {
			case KindStandard, KindDeepFoundation, KindSolar, KindAttic, KindCustomFurniture:
			case KindMerge:
				if !itemIDs[o.MergeInto] {
					add("option %q merges into unknown cost item %q", o.ID, o.MergeInto)
				}
			default:
				add("option %q has unknown kind %q", o.ID, o.Kind)
			}
		}
	}

	grouped := make(map[string]string)
	for _, g := range c.ExclusiveGroups {
		if len(g.OptionIDs) < 2 {
			add("exclusive group %q needs at least two options", g.ID)
		}
		for _, id := range g.OptionIDs {
			if !optionIDs[id] {
				add("exclusive group %q references unknown option %q", g.ID, id)
			}
			if other, ok := grouped[id]; ok && other != g.ID {
				add("option %q belongs to exclusive groups %q and %q", id, other, g.ID)
			}
			grouped[id] = g.ID
		}
	}

	if c.OptionProfitMargin < 0 || c.OptionProfitMargin >= 1 {
		add("option profit margin %v outside [0,1)", c.OptionProfitMargin)
	}
	if c.FurnitureReplaces != "" && !itemIDs[c.FurnitureReplaces] {
		add("custom furniture replaces unknown cost item %q", c.FurnitureReplaces)
	}

	return errors.Join(errs...)
}

func validateAmount(a Amount, optionCost bool) error {
	switch a.Kind {
	case Fixed:
		return nil
	case PerArea:
		if optionCost {
			if a.AreaType != AreaTotalFloor {
				return fmt.Errorf("per-area option cost must use %s, got %q", AreaTotalFloor, a.AreaType)
			}
			return nil
		}
		switch a.AreaType {
		case AreaBuilding, AreaTotalFloor, AreaExteriorWall, AreaWesternFloor, AreaWetFloor:
			return nil
		}
		return fmt.Errorf("unknown area type %q", a.AreaType)
	default:
		return fmt.Errorf("unknown amount type %q", a.Kind)
	}
}
