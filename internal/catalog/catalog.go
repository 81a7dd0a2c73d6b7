// Package catalog holds the editable pricing data the estimation engine reads:
// base cost items with their formulas, specification categories with
// radio-style choices, and option categories with checkbox-style add-ons.
package catalog

// Variables a cost item formula may reference.
const (
	VarBuildingArea     = "buildingArea"
	VarTotalFloorArea   = "totalFloorArea"
	VarExteriorWallArea = "exteriorWallArea"
	VarToiletCount      = "toiletCount"
	VarWashStandCount   = "washStandCount"
	VarWesternFloorArea = "westernFloorArea"
	VarWetFloorArea     = "wetFloorArea"
)

// FormulaVars lists every variable name the engine supplies to formulas.
var FormulaVars = []string{
	VarBuildingArea,
	VarTotalFloorArea,
	VarExteriorWallArea,
	VarToiletCount,
	VarWashStandCount,
	VarWesternFloorArea,
	VarWetFloorArea,
}

// AreaType names the area a per-area amount is multiplied by.
type AreaType string

const (
	AreaBuilding     AreaType = "建築面積"
	AreaTotalFloor   AreaType = "延床面積"
	AreaExteriorWall AreaType = "外壁面積"
	AreaWesternFloor AreaType = "洋室床面積"
	AreaWetFloor     AreaType = "水廻り床面積"
)

// AmountKind distinguishes flat amounts from per-area rates.
type AmountKind string

const (
	Fixed   AmountKind = "fixed"
	PerArea AmountKind = "per_area"
)

// Amount is a signed yen value, either flat or per unit of an area.
type Amount struct {
	Kind     AmountKind `json:"type" yaml:"type"`
	AreaType AreaType   `json:"area_type,omitempty" yaml:"area_type,omitempty"`
	Value    float64    `json:"value" yaml:"value"`
}

// CostItem is a base trade/work package priced by formula.
type CostItem struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Formula string `json:"formula" yaml:"formula"`
	Unit    string `json:"unit" yaml:"unit"`
	// SpecCategory links the line item's spec label to a specification category.
	SpecCategory string `json:"spec_category,omitempty" yaml:"spec_category,omitempty"`
	// SpecMatch, when set, shows the linked spec name only if it contains this text.
	SpecMatch string `json:"spec_match,omitempty" yaml:"spec_match,omitempty"`
	// LabelParts builds a composite spec label from several categories.
	LabelParts []LabelPart `json:"label_parts,omitempty" yaml:"label_parts,omitempty"`
	// QuantityVar names a formula variable used as the line item quantity.
	QuantityVar  string  `json:"quantity_var,omitempty" yaml:"quantity_var,omitempty"`
	ProfitMargin float64 `json:"profit_margin" yaml:"profit_margin"`
}

// LabelPart contributes one selected spec name to a composite label. Parts
// without a prefix are skipped when nothing is selected.
type LabelPart struct {
	Category string `json:"category" yaml:"category"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// SpecOption is one choice within a specification category.
type SpecOption struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	AdjustmentText string `json:"adjustment_text,omitempty" yaml:"adjustment_text,omitempty"`
	Adjustment     Amount `json:"adjustment" yaml:"adjustment"`
}

// SpecCategory is a decision point with mutually exclusive options.
type SpecCategory struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Options []SpecOption `json:"options" yaml:"options"`
}

// Option returns the category option with the given id.
func (c SpecCategory) Option(id string) (SpecOption, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return SpecOption{}, false
}

// OptionKind selects how a toggled option is priced.
type OptionKind string

const (
	KindStandard        OptionKind = ""
	KindMerge           OptionKind = "merge"
	KindDeepFoundation  OptionKind = "deep_foundation"
	KindSolar           OptionKind = "solar"
	KindAttic           OptionKind = "attic"
	KindCustomFurniture OptionKind = "custom_furniture"
)

// Option is a toggleable add-on.
type Option struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	CostText string     `json:"cost_text,omitempty" yaml:"cost_text,omitempty"`
	Cost     Amount     `json:"cost" yaml:"cost"`
	Kind     OptionKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	// MergeInto and MergeLabel apply to KindMerge: the cost is folded into
	// the named cost item and the label is appended to its spec.
	MergeInto  string `json:"merge_into,omitempty" yaml:"merge_into,omitempty"`
	MergeLabel string `json:"merge_label,omitempty" yaml:"merge_label,omitempty"`
}

// OptionCategory groups independently toggleable options.
type OptionCategory struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Options []Option `json:"options" yaml:"options"`
}

// ExclusiveGroup is a set of option ids of which at most one may be active.
type ExclusiveGroup struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	OptionIDs []string `json:"option_ids" yaml:"option_ids"`
}

// Has reports whether optionID belongs to the group.
func (g ExclusiveGroup) Has(optionID string) bool {
	for _, id := range g.OptionIDs {
		if id == optionID {
			return true
		}
	}
	return false
}

// Catalog is a complete pricing configuration. A Catalog handed to the engine
// is treated as read-only; edits produce a new value.
type Catalog struct {
	CostItems        []CostItem       `json:"cost_items" yaml:"cost_items"`
	SpecCategories   []SpecCategory   `json:"spec_categories" yaml:"spec_categories"`
	OptionCategories []OptionCategory `json:"option_categories" yaml:"option_categories"`
	// Adjusts maps a specification category id to the cost item ids whose
	// cost receives that category's adjustment.
	Adjusts         map[string][]string `json:"adjusts" yaml:"adjusts"`
	ExclusiveGroups []ExclusiveGroup    `json:"exclusive_groups,omitempty" yaml:"exclusive_groups,omitempty"`
	// OptionProfitMargin applies to option line items.
	OptionProfitMargin float64 `json:"option_profit_margin" yaml:"option_profit_margin"`
	// FurnitureReplaces is the cost item suppressed by custom furniture.
	FurnitureReplaces string `json:"furniture_replaces,omitempty" yaml:"furniture_replaces,omitempty"`
}

// LookupCostItem returns the cost item with the given id.
func (c *Catalog) LookupCostItem(id string) (CostItem, bool) {
	for _, item := range c.CostItems {
		if item.ID == id {
			return item, true
		}
	}
	return CostItem{}, false
}

// LookupSpecCategory returns the specification category with the given id.
func (c *Catalog) LookupSpecCategory(id string) (SpecCategory, bool) {
	for _, cat := range c.SpecCategories {
		if cat.ID == id {
			return cat, true
		}
	}
	return SpecCategory{}, false
}

// LookupOption returns the option with the given id from any option category.
func (c *Catalog) LookupOption(id string) (Option, bool) {
	for _, cat := range c.OptionCategories {
		for _, o := range cat.Options {
			if o.ID == id {
				return o, true
			}
		}
	}
	return Option{}, false
}

// LookupGroup returns the exclusive group with the given id.
func (c *Catalog) LookupGroup(id string) (ExclusiveGroup, bool) {
	for _, g := range c.ExclusiveGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ExclusiveGroup{}, false
}

// GroupOf returns the exclusive group optionID belongs to, if any.
func (c *Catalog) GroupOf(optionID string) (ExclusiveGroup, bool) {
	for _, g := range c.ExclusiveGroups {
		if g.Has(optionID) {
			return g, true
		}
	}
	return ExclusiveGroup{}, false
}

// DefaultSelections returns the baseline selection: the first option of every
// specification category and every option switched off.
func (c *Catalog) DefaultSelections() (map[string]string, map[string]bool) {
	specs := make(map[string]string, len(c.SpecCategories))
	for _, cat := range c.SpecCategories {
		if len(cat.Options) > 0 {
			specs[cat.ID] = cat.Options[0].ID
		}
	}

	options := make(map[string]bool)
	for _, cat := range c.OptionCategories {
		for _, o := range cat.Options {
			options[o.ID] = false
		}
	}

	return specs, options
}

// Clone returns a deep copy that shares no slices or maps with c.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		CostItems:          make([]CostItem, len(c.CostItems)),
		SpecCategories:     make([]SpecCategory, len(c.SpecCategories)),
		OptionCategories:   make([]OptionCategory, len(c.OptionCategories)),
		Adjusts:            make(map[string][]string, len(c.Adjusts)),
		ExclusiveGroups:    make([]ExclusiveGroup, len(c.ExclusiveGroups)),
		OptionProfitMargin: c.OptionProfitMargin,
		FurnitureReplaces:  c.FurnitureReplaces,
	}

	for i, item := range c.CostItems {
		item.LabelParts = append([]LabelPart(nil), item.LabelParts...)
		out.CostItems[i] = item
	}
	for i, cat := range c.SpecCategories {
		cat.Options = append([]SpecOption(nil), cat.Options...)
		out.SpecCategories[i] = cat
	}
	for i, cat := range c.OptionCategories {
		cat.Options = append([]Option(nil), cat.Options...)
		out.OptionCategories[i] = cat
	}
	for k, v := range c.Adjusts {
		out.Adjusts[k] = append([]string(nil), v...)
	}
	for i, g := range c.ExclusiveGroups {
		g.OptionIDs = append([]string(nil), g.OptionIDs...)
		out.ExclusiveGroups[i] = g
	}

	return out
}
