package catalog

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// DecodeJSON reads a catalog document and validates it. Unknown fields are
// rejected.
func DecodeJSON(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	if c.Adjusts == nil {
		c.Adjusts = map[string][]string{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// MarshalJSONBytes returns the compact JSON form of c.
func MarshalJSONBytes(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode catalog json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
