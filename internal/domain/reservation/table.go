package reservation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Table is a table defined in restaurant configuration.
type Table struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seats int    `json:"seats"`
}

// TableRef is the table recorded on a reservation: either Configured or Manual.
// A nil TableRef means no table was recorded.
type TableRef interface {
	DisplayName() string
	isTableRef()
}

// Configured points at a table from restaurant configuration. The id may no
// longer exist once the table has been deleted or recreated.
type Configured struct {
	TableID string
	Name    string
	Seats   int
}

// Manual is a free-text table entered by staff, with no stable identity.
type Manual struct {
	Name  string
	Seats int
}

func (c Configured) DisplayName() string { return c.Name }
func (Configured) isTableRef() {}

func (m Manual) DisplayName() string { return m.Name }
func (Manual) isTableRef() {}

// Ref returns the Configured reference for t.
func (t Table) Ref() Configured {
	return Configured{TableID: t.ID, Name: t.Name, Seats: t.Seats}
}

const (
	KindConfigured = "configured"
	KindManual     = "manual"
)

// tableRefJSON is the wire form of a TableRef.
type tableRefJSON struct {
	Kind    string `json:"kind"`
	TableID string `json:"tableId,omitempty"`
	Name    string `json:"name"`
	Seats   int    `json:"seats"`
}

func (c Configured) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableRefJSON{Kind: KindConfigured, TableID: c.TableID, Name: c.Name, Seats: c.Seats})
}

func (m Manual) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableRefJSON{Kind: KindManual, Name: m.Name, Seats: m.Seats})
}

// DecodeTableRef parses the wire form. JSON null yields a nil TableRef.
func DecodeTableRef(b []byte) (TableRef, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var v tableRefJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return NewTableRef(v.Kind, v.TableID, v.Name, v.Seats)
}

// NewTableRef builds a TableRef from its flattened columns. An empty kind yields nil.
func NewTableRef(kind, tableID, name string, seats int) (TableRef, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return nil, nil
	case KindConfigured:
		if tableID == "" {
			return nil, fmt.Errorf("configured table requires tableId")
		}
		return Configured{TableID: tableID, Name: name, Seats: seats}, nil
	case KindManual:
		return Manual{Name: name, Seats: seats}, nil
	default:
		return nil, fmt.Errorf("unknown table kind %q", kind)
	}
}

// FlattenTableRef is the inverse of NewTableRef.
func FlattenTableRef(t TableRef) (kind, tableID, name string, seats int) {
	switch v := t.(type) {
	case Configured:
		return KindConfigured, v.TableID, v.Name, v.Seats
	case Manual:
		return KindManual, "", v.Name, v.Seats
	default:
		return "", "", "", 0
	}
}

// SameName compares table names case-insensitively, ignoring surrounding space.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
