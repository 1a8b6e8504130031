package filter

import (
	"encoding/json"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

// Parse parses a CLI filter string into Conditions. The input is a JSON
// object mapping field name to either an operator mapping or a bare value:
// bare scalars are sugar for {"eq": value}, bare lists for {"in": value}.
//
//	{"colors":{"contains":"R"},"rarity":"rare","setCode":["LEA","LEB"]}
func Parse(filterStr string) (Conditions, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(filterStr), &raw); err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeInvalidFormat, "invalid filter JSON")
	}

	conditions := make(Conditions, len(raw))
	for field, value := range raw {
		switch v := value.(type) {
		case map[string]interface{}:
			conditions[field] = v
		case []interface{}:
			conditions[field] = map[string]interface{}{"in": v}
		default:
			conditions[field] = map[string]interface{}{"eq": v}
		}
	}
	return conditions, nil
}

// Validate checks that every operator in the condition set is known,
// without evaluating anything.
func (c Conditions) Validate() error {
	for _, ops := range c {
		for op := range ops {
			if _, ok := Operator(op); !ok {
				return cferrors.InvalidOperator(op)
			}
		}
	}
	return nil
}
