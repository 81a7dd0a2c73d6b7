package pricing

import (
	"math"
	"strings"
	"testing"

	"github.com/Simplici0/sumrai/internal/catalog"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func sampleRecord() Record {
	return Record{
		ProjectName:      "テスト邸",
		Floors:           "2階",
		BuildingArea:     "100㎡",
		TotalFloorArea:   "150㎡",
		ExteriorWallArea: "200㎡",
		ToiletCount:      "2",
		WashStandCount:   "1",
	}
}

func baselineRequest(c *catalog.Catalog) Request {
	specs, options := c.DefaultSelections()
	return Request{Record: sampleRecord(), Specs: specs, Options: options}
}

func findItem(est Estimate, id string) (LineItem, bool) {
	for _, item := range est.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

func mustItem(t *testing.T, est Estimate, id string) LineItem {
	t.Helper()
	item, ok := findItem(est, id)
	if !ok {
		t.Fatalf("item %q missing from estimate", id)
	}
	return item
}

func TestCalculate_Baseline(t *testing.T) {
	c := catalog.Default()
	est := Calculate(c, baselineRequest(c))

	if len(est.Items) != 23 {
		t.Fatalf("items = %d, want 23", len(est.Items))
	}
	if len(est.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", est.Warnings)
	}

	for i, item := range c.CostItems {
		if est.Items[i].ID != item.ID {
			t.Fatalf("item %d = %q, want %q", i, est.Items[i].ID, item.ID)
		}
	}

	nearlyEqual(t, "foundation", mustItem(t, est, "foundation_work").Cost, 2673500)
	nearlyEqual(t, "roof", mustItem(t, est, catalog.ItemRoofWork).Cost, 620000)
	nearlyEqual(t, "totalCost", est.Totals.Cost, 23400500)
	nearlyEqual(t, "totalPrice", est.Totals.Price, 23400500/0.65)
	nearlyEqual(t, "profit", est.Totals.Profit, 23400500/0.65-23400500)
	nearlyEqual(t, "margin", est.Totals.ProfitMargin, 0.35)
}

func TestCalculate_SpecLabels(t *testing.T) {
	c := catalog.Default()
	est := Calculate(c, baselineRequest(c))

	if got := mustItem(t, est, catalog.ItemRoofWork).Spec; got != "ガルバリウム鋼板" {
		t.Fatalf("roof spec = %q", got)
	}
	if got := mustItem(t, est, catalog.ItemInteriorFinishing).Spec; got != "ビニールクロス / 洋室 三層フローリング / 水廻り 塩ビタイル" {
		t.Fatalf("interior spec = %q", got)
	}
	if got := mustItem(t, est, "unit_bath_equipment").Spec; got != "-" {
		t.Fatalf("unit bath spec = %q, want -", got)
	}

	painting := mustItem(t, est, "painting_work")
	if painting.Spec != "-" {
		t.Fatalf("painting spec = %q, want - for cloth walls", painting.Spec)
	}
	nearlyEqual(t, "painting quantity", painting.Quantity, 150)

	req := baselineRequest(c)
	req.Specs["wall_ceiling"] = "paint"
	est = Calculate(c, req)
	if got := mustItem(t, est, "painting_work").Spec; got != "塗装" {
		t.Fatalf("painting spec = %q, want 塗装", got)
	}
	nearlyEqual(t, "toilet quantity", mustItem(t, est, "toilet_equipment").Quantity, 2)
}

func TestCalculate_Adjustments(t *testing.T) {
	c := catalog.Default()

	tests := []struct {
		name     string
		category string
		option   string
		item     string
		want     float64
	}{
		{name: "kawara per building area", category: "roof", option: "kawara", item: catalog.ItemRoofWork, want: 1020000},
		{name: "slate discount", category: "roof", option: "slate", item: catalog.ItemRoofWork, want: 420000},
		{name: "western floor tile", category: "floor_material_western", option: "tile_600_floor_western", item: catalog.ItemInteriorFinishing, want: 950000 + 15000*140},
		{name: "wet floor tile", category: "floor_material_wet", option: "tile_600_floor_wet", item: catalog.ItemInteriorFinishing, want: 950000 + 15000*10},
		{name: "fixed kitchen", category: "kitchen", option: "graftect", item: "kitchen_equipment", want: 1100000},
		{name: "entrance door shares joinery", category: "entrance_door", option: "ykk_remote", item: "exterior_joinery", want: 1620000},
		{name: "ventilation discount", category: "ventilation", option: "type3", item: "electrical_work", want: 800000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := baselineRequest(c)
			req.Specs[tc.category] = tc.option
			est := Calculate(c, req)
			nearlyEqual(t, tc.item, mustItem(t, est, tc.item).Cost, tc.want)
		})
	}
}

func TestCalculate_UnknownSelectionContributesNothing(t *testing.T) {
	c := catalog.Default()
	req := baselineRequest(c)
	req.Specs["roof"] = "thatch"
	delete(req.Specs, "kitchen")

	est := Calculate(c, req)

	roof := mustItem(t, est, catalog.ItemRoofWork)
	nearlyEqual(t, "roof", roof.Cost, 620000)
	if roof.Spec != "-" {
		t.Fatalf("roof spec = %q, want -", roof.Spec)
	}
	nearlyEqual(t, "totalCost", est.Totals.Cost, 23400500)
	if len(est.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one for unknown roof option", est.Warnings)
	}
}

func TestCalculate_SnowGuardMergesIntoRoof(t *testing.T) {
	c := catalog.Default()
	req := baselineRequest(c)
	req.Options[catalog.OptionSnowGuard] = true

	est := Calculate(c, req)

	roof := mustItem(t, est, catalog.ItemRoofWork)
	nearlyEqual(t, "roof", roof.Cost, 670000)
	if roof.Spec != "ガルバリウム鋼板 / 雪止め金物あり" {
		t.Fatalf("roof spec = %q", roof.Spec)
	}
	if _, ok := findItem(est, catalog.OptionSnowGuard); ok {
		t.Fatalf("snow guard must not appear as its own line")
	}
	if len(est.Items) != 23 {
		t.Fatalf("items = %d, want 23", len(est.Items))
	}
}

func TestCalculate_CustomFurnitureReplacesFurnitureWork(t *testing.T) {
	c := catalog.Default()
	req := baselineRequest(c)
	req.Furniture = []FurnitureItem{{ID: "cf-1", Type: FurnitureDrawer, Width: 2, Depth: 0.5, Height: 0.9}}

	est := Calculate(c, req)

	if _, ok := findItem(est, catalog.ItemFurnitureWork); ok {
		t.Fatalf("家具工事 must be suppressed when custom furniture is present")
	}
	line := mustItem(t, est, catalog.OptionCustomFurniture)
	nearlyEqual(t, "furniture", line.Cost, 270000)
	if line.Name != "造作家具工事" || line.Spec != "1 点" {
		t.Fatalf("furniture line = %+v", line)
	}
	nearlyEqual(t, "totalCost", est.Totals.Cost, 23400500-100000+270000)

	if last := est.Items[len(est.Items)-1]; last.ID != catalog.OptionCustomFurniture {
		t.Fatalf("last item = %q, want custom furniture", last.ID)
	}
}

func TestCalculate_ZeroVolumeFurnitureStillSuppressesFurnitureWork(t *testing.T) {
	c := catalog.Default()
	req := baselineRequest(c)
	req.Furniture = []FurnitureItem{{ID: "cf-1", Type: FurnitureOpen, Width: 0, Depth: 0.45, Height: 0.85}}

	est := Calculate(c, req)

	if _, ok := findItem(est, catalog.ItemFurnitureWork); ok {
		t.Fatalf("家具工事 must be suppressed")
	}
	if _, ok := findItem(est, catalog.OptionCustomFurniture); ok {
		t.Fatalf("zero-cost furniture line must be dropped")
	}
}

func TestCalculate_DeepFoundation(t *testing.T) {
	c := catalog.Default()

	tests := []struct {
		name     string
		input    DeepFoundation
		wantCost float64
		wantSpec string
	}{
		{name: "required", input: DeepFoundation{A: 0.5, B: 2, C: 3}, wantCost: 60000, wantSpec: "H差:0.400m L:3m"},
		{name: "marginal without landscaping", input: DeepFoundation{A: 0.35, B: 2, C: 4}, wantCost: 50000, wantSpec: "H差:0.250m L:4m"},
		{name: "marginal with landscaping", input: DeepFoundation{A: 0.35, B: 2, C: 4, Landscaping: true}},
		{name: "below threshold", input: DeepFoundation{A: 0.25, B: 2, C: 4}},
		{name: "missing length", input: DeepFoundation{A: 0.5, B: 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := baselineRequest(c)
			req.Options[catalog.OptionDeepFoundation] = true
			req.DeepFoundation = tc.input

			est := Calculate(c, req)

			line, ok := findItem(est, catalog.OptionDeepFoundation)
			if tc.wantCost == 0 {
				if ok {
					t.Fatalf("unexpected deep foundation line %+v", line)
				}
				return
			}
			if !ok {
				t.Fatalf("deep foundation line missing")
			}
			nearlyEqual(t, "cost", line.Cost, tc.wantCost)
			if line.Spec != tc.wantSpec {
				t.Fatalf("spec = %q, want %q", line.Spec, tc.wantSpec)
			}
			nearlyEqual(t, "margin", line.ProfitMargin, c.OptionProfitMargin)
		})
	}
}

func TestCalculate_SolarAndAttic(t *testing.T) {
	c := catalog.Default()
	req := baselineRequest(c)
	req.Options[catalog.OptionSolarPower] = true
	req.Options[catalog.OptionAtticStorage] = true
	req.SolarKW = 5
	req.AtticSize = 6

	est := Calculate(c, req)

	solar := mustItem(t, est, catalog.OptionSolarPower)
	nearlyEqual(t, "panels", solar.Quantity, 10)
	nearlyEqual(t, "solar", solar.Cost, 1200000)
	if solar.Spec != "5.10kW" || solar.Unit != "枚" {
		t.Fatalf("solar line = %+v", solar)
	}

	attic := mustItem(t, est, catalog.OptionAtticStorage)
	nearlyEqual(t, "attic", attic.Cost, 180000)
	if attic.Unit != "帖" {
		t.Fatalf("attic unit = %q", attic.Unit)
	}
}

func TestCalculate_SolarIsMonotonic(t *testing.T) {
	c := catalog.Default()
	prev := 0.0
	for kw := 0.0; kw <= 10; kw += 0.25 {
		req := baselineRequest(c)
		req.Options[catalog.OptionSolarPower] = true
		req.SolarKW = kw

		cost := 0.0
		if line, ok := findItem(Calculate(c, req), catalog.OptionSolarPower); ok {
			cost = line.Cost
		}
		if cost < prev {
			t.Fatalf("solar cost decreased at %.2f kW: %v < %v", kw, cost, prev)
		}
		prev = cost
	}

	for _, kw := range []float64{1e3, 5e5, 1e18, 1e20, 1e300} {
		req := baselineRequest(c)
		req.Options[catalog.OptionSolarPower] = true
		req.SolarKW = kw

		line := mustItem(t, Calculate(c, req), catalog.OptionSolarPower)
		if line.Cost < prev || line.Quantity <= 0 || line.Quantity > MaxSolarPanels {
			t.Fatalf("solar at %g kW: quantity %v cost %v (previous cost %v)", kw, line.Quantity, line.Cost, prev)
		}
		prev = line.Cost
	}
}

func TestCalculate_GenericOptions(t *testing.T) {
	c := catalog.Default()
	req := baselineRequest(c)
	req.Options["long_term_housing"] = true
	req.Options["fire_resistant"] = true

	est := Calculate(c, req)

	nearlyEqual(t, "long term", mustItem(t, est, "long_term_housing").Cost, 250000)
	fire := mustItem(t, est, "fire_resistant")
	nearlyEqual(t, "fire resistant", fire.Cost, 450000)
	nearlyEqual(t, "fire resistant price", fire.Price, 450000/0.65)
	if fire.Spec != "-" || fire.Unit != "式" {
		t.Fatalf("fire resistant line = %+v", fire)
	}

	// options follow base items in catalog order
	n := len(est.Items)
	if est.Items[n-2].ID != "long_term_housing" || est.Items[n-1].ID != "fire_resistant" {
		t.Fatalf("option order = %q, %q", est.Items[n-2].ID, est.Items[n-1].ID)
	}
}

func TestCalculate_ExclusiveGroups(t *testing.T) {
	c := catalog.Default()

	req := baselineRequest(c)
	req.Options["bosch_45"] = true
	req.Options["miele_60"] = true
	est := Calculate(c, req)
	if _, ok := findItem(est, "miele_60"); ok {
		t.Fatalf("only one dishwasher may be priced")
	}
	mustItem(t, est, "bosch_45")

	req.Exclusive = map[string]string{catalog.GroupDishwasher: "miele_60"}
	est = Calculate(c, req)
	if _, ok := findItem(est, "bosch_45"); ok {
		t.Fatalf("bosch_45 must be cleared by the group choice")
	}
	nearlyEqual(t, "miele", mustItem(t, est, "miele_60").Cost, 350000)

	req.Exclusive = map[string]string{catalog.GroupDishwasher: ""}
	est = Calculate(c, req)
	for _, id := range []string{"bosch_45", "bosch_60", "miele_45", "miele_60"} {
		if _, ok := findItem(est, id); ok {
			t.Fatalf("%s must be off", id)
		}
	}
}

func TestCalculate_FormulaFailureDegradesToZero(t *testing.T) {
	c := catalog.Default()
	c.CostItems[0].Formula = "storeyCount * 2"
	c.CostItems[1].Formula = "1 / 0"

	est := New(nil).Calculate(c, baselineRequest(c))

	if _, ok := findItem(est, c.CostItems[0].ID); ok {
		t.Fatalf("failed formula item must be dropped")
	}
	if _, ok := findItem(est, c.CostItems[1].ID); ok {
		t.Fatalf("non-finite formula item must be dropped")
	}
	if len(est.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2", est.Warnings)
	}
	if !strings.Contains(est.Warnings[0], c.CostItems[0].Name) {
		t.Fatalf("warning %q does not name the item", est.Warnings[0])
	}
	nearlyEqual(t, "totalCost", est.Totals.Cost, 23400500-665000-2673500)
}

func TestCalculate_EmptyRecord(t *testing.T) {
	c := catalog.Default()
	specs, options := c.DefaultSelections()
	est := Calculate(c, Request{Specs: specs, Options: options})

	if _, ok := findItem(est, "exterior_wall_work"); ok {
		t.Fatalf("zero-area exterior wall must be dropped")
	}
	nearlyEqual(t, "toilet", mustItem(t, est, "toilet_equipment").Cost, 100000)
	nearlyEqual(t, "foundation", mustItem(t, est, "foundation_work").Cost, 173500)
}

func TestCalculate_Invariants(t *testing.T) {
	c := catalog.Default()
	req := baselineRequest(c)
	req.Specs["kitchen"] = "lixil_az"
	req.Specs["ventilation"] = "type3"
	req.Options[catalog.OptionSnowGuard] = true
	req.Options["central_ac"] = true
	req.Options["cupboard_1690"] = true

	est := Calculate(c, req)

	cost, price := 0.0, 0.0
	for _, item := range est.Items {
		if item.Cost == 0 {
			t.Fatalf("zero-cost item %q kept", item.ID)
		}
		nearlyEqual(t, item.ID+" price", item.Price, PriceOf(item.Cost, item.ProfitMargin))
		if item.Subtotal != item.Price {
			t.Fatalf("%s subtotal %v != price %v", item.ID, item.Subtotal, item.Price)
		}
		if item.Cost > 0 && item.Price < item.Cost {
			t.Fatalf("%s price %v below cost %v", item.ID, item.Price, item.Cost)
		}
		cost += item.Cost
		price += item.Price
	}
	nearlyEqual(t, "totalCost", est.Totals.Cost, cost)
	nearlyEqual(t, "totalPrice", est.Totals.Price, price)
	nearlyEqual(t, "profit", est.Totals.Profit, price-cost)
	nearlyEqual(t, "margin", est.Totals.ProfitMargin, (price-cost)/price)
}

func TestCalculate_DoesNotMutateInputs(t *testing.T) {
	c := catalog.Default()
	req := baselineRequest(c)
	req.Options["bosch_45"] = true
	req.Options["bosch_60"] = true

	Calculate(c, req)

	if !req.Options["bosch_60"] {
		t.Fatalf("request toggles were modified")
	}
	if c.CostItems[4].ID != catalog.ItemRoofWork {
		t.Fatalf("catalog was modified")
	}
}

func TestPriceOf(t *testing.T) {
	nearlyEqual(t, "35%", PriceOf(650, 0.35), 1000)
	nearlyEqual(t, "zero margin", PriceOf(500, 0), 500)
	nearlyEqual(t, "full margin", PriceOf(500, 1), 500)
	nearlyEqual(t, "negative", PriceOf(-650, 0.35), -1000)
}
