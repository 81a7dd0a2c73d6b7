// Package project reads and writes saved estimating sessions.
package project

import (
	"errors"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Simplici0/sumrai/internal/catalog"
	"github.com/Simplici0/sumrai/internal/pricing"
)

// Version is the only save-file version this package reads and writes.
const Version = 1

// Extension is the file extension of a saved session.
const Extension = ".sumrai"

// DefaultCompanyName is filled in when a saved session has none.
const DefaultCompanyName = "株式会社トランスワークス"

var (
	ErrUnsupportedVersion = errors.New("unsupported save file version")
	ErrMalformed          = errors.New("malformed save file")
)

// PlanFile is the uploaded plan document, base64 encoded.
type PlanFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// DeepFoundation is the deep-foundation form as typed by the user.
type DeepFoundation struct {
	A           pricing.Value `json:"A"`
	B           pricing.Value `json:"B"`
	C           pricing.Value `json:"C"`
	Landscaping bool          `json:"landscaping"`
}

// Furniture is a custom furniture row as typed. Dimensions may be stored as
// numbers or as the raw input text.
type Furniture struct {
	ID     string                `json:"id"`
	Type   pricing.FurnitureType `json:"type"`
	Width  pricing.Value         `json:"width"`
	Depth  pricing.Value         `json:"depth"`
	Height pricing.Value         `json:"height"`
}

// Item returns the priced form of f.
func (f Furniture) Item() pricing.FurnitureItem {
	return pricing.FurnitureItem{
		ID:     f.ID,
		Type:   f.Type,
		Width:  pricing.ParseValue(f.Width),
		Depth:  pricing.ParseValue(f.Depth),
		Height: pricing.ParseValue(f.Height),
	}
}

// State is one saved session. Keys follow the version 1 file layout, so files
// written by earlier releases of the estimating app load unchanged.
type State struct {
	Version          int               `json:"version"`
	PlanFile         *PlanFile         `json:"planFile"`
	PreviewImageURL  string            `json:"previewImageUrl,omitempty"`
	Analysis         *pricing.Record   `json:"analysis"`
	Specifications   map[string]string `json:"specifications"`
	Options          map[string]bool   `json:"options"`
	AtticStorageSize pricing.Value     `json:"atticStorageSize"`
	SolarPowerKW     pricing.Value     `json:"solarPowerKw"`
	// ForeignDishwasher and Cupboard hold the chosen option of the two
	// built-in exclusive groups, "" for none.
	ForeignDishwasher string `json:"foreignDishwasher"`
	Cupboard          string `json:"cupboard"`
	// Exclusive carries choices for any other catalog exclusive group.
	Exclusive        map[string]string `json:"exclusive,omitempty"`
	CustomFurniture  []Furniture       `json:"customFurnitureItems"`
	CompanyName      string            `json:"companyName"`
	ContactLastName  string            `json:"contactLastName"`
	ContactFirstName string            `json:"contactFirstName"`
	DeepFoundation   *DeepFoundation   `json:"deepFoundation,omitempty"`
}

// Name returns the project name from the analysis, or "" when unknown.
func (s *State) Name() string {
	if s.Analysis == nil {
		return ""
	}
	return strings.TrimSpace(string(s.Analysis.ProjectName))
}

// Filename returns the download name of the session.
func (s *State) Filename() string {
	name := s.Name()
	if name == "" {
		name = "無題"
	}
	return name + "_積算データ" + Extension
}

// Request builds the engine input for the saved session.
func (s *State) Request() pricing.Request {
	req := pricing.Request{
		Specs:     s.Specifications,
		Options:   pricing.Toggles(s.Options),
		Exclusive: s.exclusive(),
		AtticSize: pricing.ParseValue(s.AtticStorageSize),
		SolarKW:   pricing.ParseValue(s.SolarPowerKW),
	}
	for _, f := range s.CustomFurniture {
		req.Furniture = append(req.Furniture, f.Item())
	}
	if s.Analysis != nil {
		req.Record = s.Analysis.Normalize()
	}
	if d := s.DeepFoundation; d != nil {
		req.DeepFoundation = pricing.DeepFoundation{
			A:           pricing.ParseValue(d.A),
			B:           pricing.ParseValue(d.B),
			C:           pricing.ParseValue(d.C),
			Landscaping: d.Landscaping,
		}
	}
	return req
}

// exclusive merges the named group fields over Exclusive.
func (s *State) exclusive() map[string]string {
	out := make(map[string]string, len(s.Exclusive)+2)
	for g, id := range s.Exclusive {
		out[g] = id
	}
	if s.ForeignDishwasher != "" {
		out[catalog.GroupDishwasher] = s.ForeignDishwasher
	}
	if s.Cupboard != "" {
		out[catalog.GroupCupboard] = s.Cupboard
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate checks the fields a loader relies on.
func (s *State) Validate() error {
	if s.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	if s.Specifications == nil {
		return fmt.Errorf("%w: specifications missing", ErrMalformed)
	}
	return nil
}

// Encode writes s as indented JSON. The version is always stamped.
func Encode(w io.Writer, s *State) error {
	out := *s
	out.Version = Version
	if out.ForeignDishwasher == "" {
		out.ForeignDishwasher = s.Exclusive[catalog.GroupDishwasher]
	}
	if out.Cupboard == "" {
		out.Cupboard = s.Exclusive[catalog.GroupCupboard]
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode save file: %w", err)
	}
	return nil
}

// Decode reads and validates a saved session, filling defaults for fields
// older files may omit.
func Decode(r io.Reader) (*State, error) {
	var s State
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if s.Options == nil {
		s.Options = map[string]bool{}
	}
	if s.CompanyName == "" {
		s.CompanyName = DefaultCompanyName
	}
	if s.DeepFoundation == nil {
		s.DeepFoundation = &DeepFoundation{}
	}
	return &s, nil
}
