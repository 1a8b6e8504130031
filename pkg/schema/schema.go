// Package schema reads and writes card field lists in the archive's
// JSON-Schema shape, where the card field list lives under
// properties.data.patternProperties.<pattern>.properties.cards.items.required.
package schema

import (
	"encoding/json"
	"os"
	"sort"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

// Fields extracts the card field list from a schema file.
func Fields(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cferrors.FileNotFound(path)
		}
		return nil, cferrors.Wrap(err, cferrors.CodeFileNotFound, "cannot read schema file").
			WithContext("path", path)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeInvalidFormat, "schema file is not valid JSON").
			WithContext("path", path)
	}

	items := dig(doc, "properties", "data", "patternProperties")
	if items == nil {
		return nil, malformed(path)
	}

	// Any pattern key works; take the first in sorted order so the result is
	// stable.
	patterns := make([]string, 0, len(items))
	for k := range items {
		patterns = append(patterns, k)
	}
	if len(patterns) == 0 {
		return nil, malformed(path)
	}
	sort.Strings(patterns)

	pattern, ok := items[patterns[0]].(map[string]interface{})
	if !ok {
		return nil, malformed(path)
	}
	cardItems := dig(pattern, "properties", "cards", "items")
	if cardItems == nil {
		return nil, malformed(path)
	}

	required, ok := cardItems["required"].([]interface{})
	if !ok {
		return nil, malformed(path)
	}
	fields := make([]string, 0, len(required))
	for _, f := range required {
		s, ok := f.(string)
		if !ok {
			return nil, malformed(path)
		}
		fields = append(fields, s)
	}
	return fields, nil
}

// Dump writes fields to path in the same shape Fields reads, so a dumped
// schema loads back unchanged.
func Dump(path string, fields []string) error {
	doc := map[string]interface{}{
		"properties": map[string]interface{}{
			"data": map[string]interface{}{
				"patternProperties": map[string]interface{}{
					".*": map[string]interface{}{
						"properties": map[string]interface{}{
							"cards": map[string]interface{}{
								"items": map[string]interface{}{
									"required": fields,
								},
							},
						},
					},
				},
			},
		},
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot encode schema")
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot write schema file").
			WithContext("path", path)
	}
	return nil
}

func dig(m map[string]interface{}, keys ...string) map[string]interface{} {
	for _, k := range keys {
		next, ok := m[k].(map[string]interface{})
		if !ok {
			return nil
		}
		m = next
	}
	return m
}

func malformed(path string) *cferrors.CardflowError {
	return cferrors.New(cferrors.CodeInvalidFormat, "schema file has no card field list").
		WithContext("path", path)
}
