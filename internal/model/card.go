// Package model defines the core data types flowing through the pipeline.
package model

// Card is one card record: a mapping from field name to value (string,
// float64, bool, []interface{} or nested map). Stages never mutate a Card in
// place across component boundaries; each stage works on its own copy.
type Card map[string]interface{}

// Required field names every card must carry.
const (
	FieldName = "name"
	FieldType = "type"
)

// Name returns the card's name, or "unknown" when absent or not a string.
func (c Card) Name() string {
	if n, ok := c[FieldName].(string); ok && n != "" {
		return n
	}
	return "unknown"
}

// MissingRequired reports which of the required fields are absent.
func (c Card) MissingRequired() []string {
	var missing []string
	for _, f := range []string{FieldName, FieldType} {
		if _, ok := c[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Clone returns a shallow copy of the card. Field values are shared; stages
// that replace a field assign a new value rather than mutating the old one.
func (c Card) Clone() Card {
	out := make(Card, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
