package pricing

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/text/width"

	"github.com/Simplici0/sumrai/internal/catalog"
	"github.com/Simplici0/sumrai/internal/formula"
)

// Value is a raw extracted field. Extraction may produce "120.5㎡", a bare
// number, or nothing; JSON numbers and strings both decode into it.
type Value string

// UnmarshalJSON accepts a JSON string, number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	*v = Value(data)
	return nil
}

// Record is the flat set of building facts produced by plan extraction.
type Record struct {
	ProjectName      Value `json:"物件名"`
	Floors           Value `json:"階数"`
	FloorHeight      Value `json:"階高,omitempty"`
	BuildingArea     Value `json:"建築面積"`
	TotalFloorArea   Value `json:"延床面積"`
	ExteriorWallArea Value `json:"外壁面積"`
	KitchenCount     Value `json:"キッチン数"`
	WashStandCount   Value `json:"洗面台数"`
	ToiletCount      Value `json:"トイレ数"`
}

// Normalize fills the floor height from the storey count when extraction
// left it empty.
func (r Record) Normalize() Record {
	if r.FloorHeight != "" {
		return r
	}
	floors := string(r.Floors)
	switch {
	case strings.Contains(floors, "2階"):
		r.FloorHeight = "１階3000㎜, 2階2850㎜"
	case strings.Contains(floors, "平屋"), strings.Contains(floors, "1階"):
		r.FloorHeight = "3000㎜"
	}
	return r
}

// ParseValue returns the leading non-negative decimal number in s, or 0.
// Full-width digits are folded to ASCII first. Leading whitespace is not
// skipped, so " 120" parses as 0.
func ParseValue(s Value) float64 {
	text := width.Fold.String(string(s))

	end := 0
	dot := false
	for end < len(text) {
		c := text[end]
		if c == '.' {
			if dot {
				break
			}
			dot = true
		} else if c < '0' || c > '9' {
			break
		}
		end++
	}

	v, err := strconv.ParseFloat(text[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// Measurements are the parsed numeric facts plus the derived floor areas.
type Measurements struct {
	BuildingArea     float64 `json:"building_area"`
	TotalFloorArea   float64 `json:"total_floor_area"`
	ExteriorWallArea float64 `json:"exterior_wall_area"`
	ToiletCount      float64 `json:"toilet_count"`
	WashStandCount   float64 `json:"wash_stand_count"`
	WetFloorArea     float64 `json:"wet_floor_area"`
	WesternFloorArea float64 `json:"western_floor_area"`
}

// Measurements parses the record. Fixture counts that parse to 0 become 1.
func (r Record) Measurements() Measurements {
	m := Measurements{
		BuildingArea:     ParseValue(r.BuildingArea),
		TotalFloorArea:   ParseValue(r.TotalFloorArea),
		ExteriorWallArea: ParseValue(r.ExteriorWallArea),
		ToiletCount:      ParseValue(r.ToiletCount),
		WashStandCount:   ParseValue(r.WashStandCount),
	}
	if m.ToiletCount == 0 {
		m.ToiletCount = 1
	}
	if m.WashStandCount == 0 {
		m.WashStandCount = 1
	}

	m.WetFloorArea = m.ToiletCount*2 + 6
	m.WesternFloorArea = max(m.TotalFloorArea-m.WetFloorArea, 0)
	return m
}

// Vars returns the formula context.
func (m Measurements) Vars() formula.Vars {
	return formula.Vars{
		catalog.VarBuildingArea:     m.BuildingArea,
		catalog.VarTotalFloorArea:   m.TotalFloorArea,
		catalog.VarExteriorWallArea: m.ExteriorWallArea,
		catalog.VarToiletCount:      m.ToiletCount,
		catalog.VarWashStandCount:   m.WashStandCount,
		catalog.VarWesternFloorArea: m.WesternFloorArea,
		catalog.VarWetFloorArea:     m.WetFloorArea,
	}
}

// Area returns the area named by t.
func (m Measurements) Area(t catalog.AreaType) (float64, bool) {
	switch t {
	case catalog.AreaBuilding:
		return m.BuildingArea, true
	case catalog.AreaTotalFloor:
		return m.TotalFloorArea, true
	case catalog.AreaExteriorWall:
		return m.ExteriorWallArea, true
	case catalog.AreaWesternFloor:
		return m.WesternFloorArea, true
	case catalog.AreaWetFloor:
		return m.WetFloorArea, true
	}
	return 0, false
}
