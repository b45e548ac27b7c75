// Package catalogue holds static reference records and the queries run over them.
package catalogue

// Category groups records by installation type.
type Category string

const (
	Domestic   Category = "domestic"
	Commercial Category = "commercial"
	Industrial Category = "industrial"
)

// Categories lists every known category in display order.
var Categories = []Category{Domestic, Commercial, Industrial}

// ParseCategory returns the category named by s.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Record is a read-only catalogue entry.
type Record interface {
	RecordID() string
	RecordCategory() Category
	// SearchFields returns the text matched by Search.
	SearchFields() []string
}

// CircuitTemplate describes a reference electrical circuit.
type CircuitTemplate struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Category    Category `yaml:"category" json:"category"`
	CableSize   string   `yaml:"cable_size" json:"cableSize,omitempty"`
	Protection  string   `yaml:"protection" json:"protection,omitempty"`
	MaxLengthM  float64  `yaml:"max_length_m" json:"maxLengthM,omitempty"`
	Notes       []string `yaml:"notes" json:"notes,omitempty"`
}

func (t CircuitTemplate) RecordID() string         { return t.ID }
func (t CircuitTemplate) RecordCategory() Category { return t.Category }
func (t CircuitTemplate) SearchFields() []string   { return []string{t.Name, t.Description} }
