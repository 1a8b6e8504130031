// Package card implements per-record filtering and schema projection.
//
// Processing a card runs in a fixed order: required-field validation,
// default normalization, filter evaluation, foreign-language sub-selection,
// schema projection. The stages are kept separate because their error
// semantics differ: validation and operator problems are typed errors,
// while a failed filter match is an ordinary nil result.
package card

import (
	"github.com/cardflow/cardflow/internal/model"
	cferrors "github.com/cardflow/cardflow/pkg/errors"
	"github.com/cardflow/cardflow/pkg/filter"
)

// fieldLanguage is the internal language marker stripped by the default
// projection.
const fieldLanguage = "language"

// fieldForeignData carries per-language card translations.
const fieldForeignData = "foreignData"

// defaults is the normalization table applied to every card before
// filtering. Values are produced by factories so no two cards share a slice.
var defaults = []struct {
	field string
	value func() interface{}
}{
	{"colors", func() interface{} { return []interface{}{} }},
	{"colorIdentity", func() interface{} { return []interface{}{} }},
	{"convertedManaCost", func() interface{} { return float64(0) }},
	{"text", func() interface{} { return "" }},
	{"edhrecSaltiness", func() interface{} { return float64(0) }},
	{fieldLanguage, func() interface{} { return "English" }},
	{fieldForeignData, func() interface{} { return []interface{}{} }},
	{"availability", func() interface{} { return []interface{}{} }},
}

// Processor applies filters, language selection and schema projection to
// single cards.
type Processor struct{}

// NewProcessor creates a card processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Process runs the full pipeline for one card. It returns the projected
// card, or nil when the card does not match the filter conditions. The
// input card is never mutated.
//
// Errors are typed: a missing required field, an unknown operator and a
// numeric coercion failure all abort processing; a non-matching filter does
// not.
func (p *Processor) Process(
	cardData model.Card,
	filters filter.Conditions,
	schema []string,
	additionalLanguages []string,
) (model.Card, error) {
	if missing := cardData.MissingRequired(); len(missing) > 0 {
		return nil, cferrors.MissingFields(cardData.Name(), missing)
	}

	working := Normalize(cardData)

	matched, err := p.EvaluateFilters(working, filters)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, nil
	}

	foreign := p.applyLanguages(working, cardData, additionalLanguages)

	return p.applySchema(working, schema, foreign), nil
}

// Normalize returns a copy of the card with the default-value table applied.
// Applying it twice is the same as applying it once.
func Normalize(cardData model.Card) model.Card {
	out := cardData.Clone()
	for _, d := range defaults {
		if _, ok := out[d.field]; !ok {
			out[d.field] = d.value()
		}
	}
	return out
}

// EvaluateFilters reports whether the card matches every condition. A field
// absent from the card is a non-match, not an error; an unknown operator or
// an uncoercible value for a numeric operator is a typed error.
func (p *Processor) EvaluateFilters(c model.Card, filters filter.Conditions) (bool, error) {
	for field, ops := range filters {
		cardValue, present := c[field]
		if !present {
			return false, nil
		}

		for op, filterValue := range ops {
			fn, known := filter.Operator(op)
			if !known {
				return false, cferrors.InvalidOperator(op)
			}

			if filter.NumericOperators[op] {
				if _, ok := filter.ToFloat(cardValue); !ok {
					return false, cferrors.InvalidValueType(op, cardValue)
				}
				if _, ok := filter.ToFloat(filterValue); !ok {
					return false, cferrors.InvalidValueType(op, filterValue)
				}
			}

			if !fn(cardValue, filterValue) {
				return false, nil
			}
		}
	}
	return true, nil
}

// FilterForeignData returns the foreignData entries whose language is one of
// the requested languages, preserving input order. No languages means no
// entries.
func FilterForeignData(cardData model.Card, additionalLanguages []string) []interface{} {
	if len(additionalLanguages) == 0 {
		return []interface{}{}
	}

	requested := make(map[string]bool, len(additionalLanguages))
	for _, lang := range additionalLanguages {
		requested[lang] = true
	}

	entries, _ := cardData[fieldForeignData].([]interface{})
	filtered := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if lang, ok := m[fieldLanguage].(string); ok && requested[lang] {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// applyLanguages replaces foreignData with the requested-language subset, or
// removes the field entirely when no languages were requested. It returns
// the filtered value so projection can force-include it when the schema
// names foreignData explicitly.
func (p *Processor) applyLanguages(working, original model.Card, additionalLanguages []string) []interface{} {
	if len(additionalLanguages) > 0 {
		filtered := FilterForeignData(original, additionalLanguages)
		working[fieldForeignData] = filtered
		return filtered
	}
	delete(working, fieldForeignData)
	return []interface{}{}
}

// applySchema projects the card onto the schema field list. A nil schema
// keeps everything but the language marker; an empty schema keeps nothing.
// When the schema names foreignData, the filtered value from the language
// stage is force-included even though the field may have been removed.
func (p *Processor) applySchema(working model.Card, schema []string, foreign []interface{}) model.Card {
	if schema == nil {
		out := working.Clone()
		delete(out, fieldLanguage)
		return out
	}

	out := make(model.Card, len(schema))
	for _, field := range schema {
		if v, ok := working[field]; ok {
			out[field] = v
		}
	}
	for _, field := range schema {
		if field == fieldForeignData {
			out[fieldForeignData] = foreign
			break
		}
	}
	return out
}
