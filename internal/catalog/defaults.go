package catalog

const defaultMargin = 0.35

// Cost item and option ids the default catalog declares.
const (
	ItemRoofWork          = "roof_work"
	ItemInteriorFinishing = "interior_finishing_work"
	ItemFurnitureWork     = "furniture_work"

	OptionSnowGuard       = "snow_guard"
	OptionDeepFoundation  = "deep_foundation"
	OptionSolarPower      = "solar_power"
	OptionAtticStorage    = "attic_storage"
	OptionCustomFurniture = "custom_furniture"

	GroupDishwasher = "dishwasher"
	GroupCupboard   = "cupboard"
)

// Default returns a fresh copy of the built-in residential catalog.
func Default() *Catalog {
	return &Catalog{
		CostItems:          defaultCostItems(),
		SpecCategories:     defaultSpecCategories(),
		OptionCategories:   defaultOptionCategories(),
		Adjusts:            defaultAdjusts(),
		ExclusiveGroups:    defaultExclusiveGroups(),
		OptionProfitMargin: defaultMargin,
		FurnitureReplaces:  ItemFurnitureWork,
	}
}

func defaultCostItems() []CostItem {
	return []CostItem{
		{ID: "temporary_work", Name: "仮設工事", Formula: "totalFloorArea * 3500 + 140000", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "foundation_work", Name: "基礎工事", Formula: "buildingArea * 25000 + 173500", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "insulation_work", Name: "断熱工事", Formula: "exteriorWallArea * 3000 + 100000", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "carpentry_work", Name: "木工事", Formula: "totalFloorArea * 13800 + 3350000", Unit: "式", ProfitMargin: defaultMargin},
		{ID: ItemRoofWork, Name: "屋根工事", Formula: "buildingArea * 6000 + 20000", Unit: "式", SpecCategory: "roof", ProfitMargin: defaultMargin},
		{ID: "exterior_wall_work", Name: "外壁", Formula: "exteriorWallArea * 6000", Unit: "式", SpecCategory: "exterior_wall", ProfitMargin: defaultMargin},
		{ID: "waterproofing_work", Name: "防水工事", Formula: "exteriorWallArea * 1000 + 100000", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "plastering_tile_work", Name: "左官・タイル工事", Formula: "totalFloorArea * 1200 + 122000", Unit: "式", SpecCategory: "entrance_porch", ProfitMargin: defaultMargin},
		{ID: "building_materials_work", Name: "建材工事", Formula: "totalFloorArea * 6500 + 1000000", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "exterior_joinery", Name: "外部建具", Formula: "totalFloorArea * 10000 + 70000", Unit: "式", SpecCategory: "sash", ProfitMargin: defaultMargin},
		{
			ID:      ItemInteriorFinishing,
			Name:    "内装・塗装・畳工事",
			Formula: "totalFloorArea * 6000 + 50000",
			Unit:    "式",
			LabelParts: []LabelPart{
				{Category: "wall_ceiling"},
				{Category: "floor_material_western", Prefix: "洋室 "},
				{Category: "floor_material_wet", Prefix: "水廻り "},
			},
			ProfitMargin: defaultMargin,
		},
		{ID: "interior_joinery", Name: "内部建具", Formula: "totalFloorArea * 6500 + 70000", Unit: "式", SpecCategory: "interior_door", ProfitMargin: defaultMargin},
		{ID: "kitchen_equipment", Name: "住宅設備 キッチン", Formula: "900000", Unit: "式", SpecCategory: "kitchen", ProfitMargin: defaultMargin},
		{ID: "wash_stand_equipment", Name: "住宅設備 洗面台", Formula: "300000 * washStandCount", Unit: "台", SpecCategory: "wash_stand", QuantityVar: VarWashStandCount, ProfitMargin: defaultMargin},
		{ID: "toilet_equipment", Name: "住宅設備 トイレ", Formula: "100000 * toiletCount", Unit: "台", SpecCategory: "toilet", QuantityVar: VarToiletCount, ProfitMargin: defaultMargin},
		{ID: "unit_bath_equipment", Name: "住宅設備 ユニットバス", Formula: "350000", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "electrical_work", Name: "電気工事", Formula: "totalFloorArea * 3000 + 500000", Unit: "式", SpecCategory: "ventilation", ProfitMargin: defaultMargin},
		{ID: "plumbing_work", Name: "給排水工事", Formula: "totalFloorArea * 6000", Unit: "式", SpecCategory: "water_heater", ProfitMargin: defaultMargin},
		{ID: ItemFurnitureWork, Name: "家具工事", Formula: "100000", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "painting_work", Name: "塗装工事", Formula: "4000 * totalFloorArea", Unit: "㎡", SpecCategory: "wall_ceiling", SpecMatch: "塗装", QuantityVar: VarTotalFloorArea, ProfitMargin: defaultMargin},
		{ID: "hardware_work", Name: "金物工事", Formula: "totalFloorArea * 1200", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "site_management_fee", Name: "現場管理費", Formula: "totalFloorArea * 8000", Unit: "式", ProfitMargin: defaultMargin},
		{ID: "overhead_expenses", Name: "諸経費", Formula: "300000", Unit: "式", ProfitMargin: defaultMargin},
	}
}

func fixed(v float64) Amount {
	return Amount{Kind: Fixed, Value: v}
}

func perArea(area AreaType, v float64) Amount {
	return Amount{Kind: PerArea, AreaType: area, Value: v}
}

func defaultSpecCategories() []SpecCategory {
	return []SpecCategory{
		{ID: "entrance_porch", Name: "玄関ポーチ", Options: []SpecOption{
			{ID: "tile_600", Name: "600角タイル", Adjustment: fixed(0)},
			{ID: "mortar", Name: "モルタル", Adjustment: fixed(-10000)},
		}},
		{ID: "roof", Name: "屋根", Options: []SpecOption{
			{ID: "galvalume", Name: "ガルバリウム鋼板", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "kawara", Name: "瓦", AdjustmentText: "+4,000円/㎡", Adjustment: perArea(AreaBuilding, 4000)},
			{ID: "slate", Name: "スレート瓦", AdjustmentText: "-2,000円/㎡", Adjustment: perArea(AreaBuilding, -2000)},
		}},
		{ID: "exterior_wall", Name: "外壁材", Options: []SpecOption{
			{ID: "siding_blow", Name: "サイディング上吹付け", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "ancient_brick", Name: "大壁工法エンシェントブリック柄", AdjustmentText: "+4,000円/㎡", Adjustment: perArea(AreaExteriorWall, 4000)},
			{ID: "ceramic_siding", Name: "窯業系サイディング", AdjustmentText: "-1,000円/㎡", Adjustment: perArea(AreaExteriorWall, -1000)},
			{ID: "nucool", Name: "ヌクール（付加断熱）", AdjustmentText: "+5,000円/㎡", Adjustment: perArea(AreaExteriorWall, 5000)},
		}},
		{ID: "sash", Name: "サッシ", Options: []SpecOption{
			{ID: "ykk_apw330", Name: "YKK APW330", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "ykk_apw430", Name: "YKK APW430", AdjustmentText: "+7,000円/㎡", Adjustment: perArea(AreaTotalFloor, 7000)},
			{ID: "lixil_thermos2h", Name: "LIXIL サーモスⅡH", AdjustmentText: "+1,000円/㎡", Adjustment: perArea(AreaTotalFloor, 1000)},
			{ID: "lixil_tw", Name: "LIXIL TW", AdjustmentText: "+4,000円/㎡", Adjustment: perArea(AreaTotalFloor, 4000)},
		}},
		{ID: "entrance_door", Name: "玄関ドア", Options: []SpecOption{
			{ID: "ykk", Name: "YKK", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "ykk_remote", Name: "YKK リモコンキー", AdjustmentText: "+50,000円", Adjustment: fixed(50000)},
		}},
		{ID: "floor_material_western", Name: "床材① 洋室", Options: []SpecOption{
			{ID: "tri_layer_flooring", Name: "三層フローリング", AdjustmentText: "標準", Adjustment: perArea(AreaWesternFloor, 0)},
			{ID: "pvc_tile", Name: "塩ビタイル", AdjustmentText: "±0円/㎡", Adjustment: perArea(AreaWesternFloor, 0)},
			{ID: "tile_600_floor_western", Name: "タイル600角", AdjustmentText: "+15,000円/㎡", Adjustment: perArea(AreaWesternFloor, 15000)},
		}},
		{ID: "floor_material_wet", Name: "床材② 水廻り", Options: []SpecOption{
			{ID: "pvc_tile_wet", Name: "塩ビタイル", AdjustmentText: "標準", Adjustment: perArea(AreaWetFloor, 0)},
			{ID: "tile_600_floor_wet", Name: "タイル600角", AdjustmentText: "+15,000円/㎡", Adjustment: perArea(AreaWetFloor, 15000)},
		}},
		{ID: "wall_ceiling", Name: "壁・天井", Options: []SpecOption{
			{ID: "vinyl_cloth", Name: "ビニールクロス", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "accent_cloth", Name: "アクセントクロス", AdjustmentText: "+1,000円/㎡", Adjustment: perArea(AreaTotalFloor, 1000)},
			{ID: "tile_wall", Name: "タイル張り", AdjustmentText: "+20,000円/㎡", Adjustment: perArea(AreaTotalFloor, 20000)},
			{ID: "paint", Name: "塗装", AdjustmentText: "+3,000円/㎡", Adjustment: perArea(AreaTotalFloor, 3000)},
			{ID: "shikkui", Name: "漆喰", AdjustmentText: "+6,000円/㎡", Adjustment: perArea(AreaTotalFloor, 6000)},
			{ID: "keisodo", Name: "珪藻土", AdjustmentText: "+6,000円/㎡", Adjustment: perArea(AreaTotalFloor, 6000)},
		}},
		{ID: "interior_door", Name: "内部建具", Options: []SpecOption{
			{ID: "kashiwamokko", Name: "柏木工", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "kamiya", Name: "KAMIYA", AdjustmentText: "+2,000円/㎡", Adjustment: perArea(AreaTotalFloor, 2000)},
			{ID: "lixil_lasissa", Name: "LIXIL ラシッサ", Adjustment: fixed(-50000)},
			{ID: "lixil_rafis", Name: "LIXIL ラフィスH2400", AdjustmentText: "+1,000円/㎡", Adjustment: perArea(AreaTotalFloor, 1000)},
		}},
		{ID: "ventilation", Name: "換気システム", Options: []SpecOption{
			{ID: "type1", Name: "第1種換気（ローヤル電機）", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "type3", Name: "第3種換気", AdjustmentText: "-150,000円", Adjustment: fixed(-150000)},
		}},
		{ID: "water_heater", Name: "給湯器", Options: []SpecOption{
			{ID: "eco_cute", Name: "エコキュート", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "eco_cute_thin", Name: "エコキュート薄型", AdjustmentText: "+30,000円", Adjustment: fixed(30000)},
			{ID: "gas_24_city", Name: "ガス給湯器24号都市ガス", AdjustmentText: "-50,000円", Adjustment: fixed(-50000)},
			{ID: "gas_24_propane", Name: "ガス給湯器24号プロパン", AdjustmentText: "-100,000円", Adjustment: fixed(-100000)},
		}},
		{ID: "kitchen", Name: "キッチン", Options: []SpecOption{
			{ID: "line_peninsula", Name: "LINEキッチン ペニンシュラ型", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "line_island", Name: "LINEキッチン アイランド型", AdjustmentText: "+30,000円", Adjustment: fixed(30000)},
			{ID: "line_type2", Name: "LINEキッチン Ⅱ型", AdjustmentText: "+80,000円", Adjustment: fixed(80000)},
			{ID: "line_typeI", Name: "LINEキッチン I型", AdjustmentText: "-50,000円", Adjustment: fixed(-50000)},
			{ID: "graftect", Name: "GRAFTECT", AdjustmentText: "+200,000円", Adjustment: fixed(200000)},
			{ID: "lixil_az", Name: "LIXIL AZ", AdjustmentText: "-200,000円", Adjustment: fixed(-200000)},
		}},
		{ID: "wash_stand", Name: "洗面台", Options: []SpecOption{
			{ID: "smart_sanitary_open", Name: "スマートサニタリー（下部オープン）", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "smart_sanitary_closed", Name: "スマートサニタリー(下部収納）", AdjustmentText: "+50,000円", Adjustment: fixed(50000)},
		}},
		{ID: "toilet", Name: "トイレ", Options: []SpecOption{
			{ID: "lixil_becia", Name: "LIXIL ベーシア", AdjustmentText: "標準", Adjustment: fixed(0)},
			{ID: "toto", Name: "TOTO", AdjustmentText: "+10,000円", Adjustment: fixed(10000)},
		}},
	}
}

func defaultOptionCategories() []OptionCategory {
	return []OptionCategory{
		{ID: "roof_options", Name: "屋根オプション", Options: []Option{
			{ID: OptionSnowGuard, Name: "雪止め金物", CostText: "+50,000円/一式", Cost: fixed(50000), Kind: KindMerge, MergeInto: ItemRoofWork, MergeLabel: "雪止め金物あり"},
		}},
		{ID: "application", Name: "申請オプション", Options: []Option{
			{ID: "long_term_housing", Name: "長期優良住宅申請", CostText: "250,000円/一式", Cost: fixed(250000)},
			{ID: "fire_resistant", Name: "省令準耐火構造", CostText: "3,000円/㎡", Cost: perArea(AreaTotalFloor, 3000)},
			{ID: "semi_fire_proof", Name: "準防火仕様", CostText: "6,000円/㎡", Cost: perArea(AreaTotalFloor, 6000)},
		}},
		{ID: "other", Name: "その他オプション", Options: []Option{
			{ID: OptionDeepFoundation, Name: "深基礎工事", CostText: "詳細入力", Cost: fixed(0), Kind: KindDeepFoundation},
			{ID: OptionSolarPower, Name: "太陽光発電", CostText: "120,000円/枚", Cost: fixed(120000), Kind: KindSolar},
			{ID: "storage_battery", Name: "蓄電池", CostText: "1,200,000円/一式", Cost: fixed(1200000)},
			{ID: "bosch_45", Name: "BOSCH食洗機 45cm", CostText: "180,000円/一式", Cost: fixed(180000)},
			{ID: "bosch_60", Name: "BOSCH食洗機 60cm", CostText: "300,000円/一式", Cost: fixed(300000)},
			{ID: "miele_45", Name: "ミーレ食洗機 45cm", CostText: "250,000円/一式", Cost: fixed(250000)},
			{ID: "miele_60", Name: "ミーレ食洗機 60cm", CostText: "350,000円/一式", Cost: fixed(350000)},
			{ID: "cupboard_940", Name: "カップボード 940mm", CostText: "200,000円/一式", Cost: fixed(200000)},
			{ID: "cupboard_1690", Name: "カップボード 1690mm", CostText: "300,000円/一式", Cost: fixed(300000)},
			{ID: "cupboard_2550", Name: "カップボード 2550mm", CostText: "400,000円/一式", Cost: fixed(400000)},
			{ID: "evoltz", Name: "evoltz", CostText: "300,000円/一式", Cost: fixed(300000)},
			{ID: "central_ac", Name: "全館空調システム", CostText: "1,200,000円/一式", Cost: fixed(1200000)},
			{ID: "steel_stairs", Name: "鉄骨階段", CostText: "500,000円/一式", Cost: fixed(500000)},
			{ID: OptionAtticStorage, Name: "小屋裏収納", CostText: "30,000円/帖", Cost: fixed(30000), Kind: KindAttic},
			{ID: OptionCustomFurniture, Name: "造作家具工事", CostText: "詳細入力", Cost: fixed(0), Kind: KindCustomFurniture},
		}},
	}
}

func defaultAdjusts() map[string][]string {
	return map[string][]string{
		"entrance_porch":         {"plastering_tile_work"},
		"roof":                   {ItemRoofWork},
		"exterior_wall":          {"exterior_wall_work"},
		"sash":                   {"exterior_joinery"},
		"entrance_door":          {"exterior_joinery"},
		"floor_material_western": {ItemInteriorFinishing},
		"floor_material_wet":     {ItemInteriorFinishing},
		"wall_ceiling":           {ItemInteriorFinishing},
		"interior_door":          {"interior_joinery"},
		"ventilation":            {"electrical_work"},
		"water_heater":           {"plumbing_work"},
		"kitchen":                {"kitchen_equipment"},
		"wash_stand":             {"wash_stand_equipment"},
		"toilet":                 {"toilet_equipment"},
	}
}

func defaultExclusiveGroups() []ExclusiveGroup {
	return []ExclusiveGroup{
		{ID: GroupDishwasher, Name: "海外製食洗機", OptionIDs: []string{"bosch_45", "bosch_60", "miele_45", "miele_60"}},
		{ID: GroupCupboard, Name: "カップボード", OptionIDs: []string{"cupboard_940", "cupboard_1690", "cupboard_2550"}},
	}
}
