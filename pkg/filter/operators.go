// Package filter implements the card filter condition model: the operator
// functions, the condition set type and the CLI filter-string parser.
package filter

import (
	"reflect"
	"strconv"
	"strings"
)

// Conditions maps field name to a set of operator/value checks. A card
// matches iff every operator of every field passes.
type Conditions map[string]map[string]interface{}

// OperatorFunc compares a card value against a filter value.
type OperatorFunc func(a, b interface{}) bool

// NumericOperators are the operators that coerce both operands to float64.
var NumericOperators = map[string]bool{
	"gt": true, "lt": true, "gte": true, "lte": true,
}

// operators maps operator names to their fail-safe implementations. Every
// function is total: incompatible operands yield false, never a panic. The
// caller-facing evaluator in pkg/card is responsible for turning coercion
// failures into typed errors before reaching this table.
var operators = map[string]OperatorFunc{
	"eq":       opEq,
	"gt":       numericOp(func(a, b float64) bool { return a > b }),
	"lt":       numericOp(func(a, b float64) bool { return a < b }),
	"gte":      numericOp(func(a, b float64) bool { return a >= b }),
	"lte":      numericOp(func(a, b float64) bool { return a <= b }),
	"contains": opContains,
	"in":       opIn,
}

// Operator returns the function for an operator name, or false when the
// name is unknown. Callers must treat an unknown operator as an error, not
// as a false match.
func Operator(name string) (OperatorFunc, bool) {
	fn, ok := operators[name]
	return fn, ok
}

// ToFloat coerces a value to float64. Accepted inputs are Go numeric types,
// numeric strings and bools; everything else fails.
func ToFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// numericOp builds a fail-safe numeric comparison from a float64 predicate.
func numericOp(cmp func(a, b float64) bool) OperatorFunc {
	return func(a, b interface{}) bool {
		af, ok := ToFloat(a)
		if !ok {
			return false
		}
		bf, ok := ToFloat(b)
		if !ok {
			return false
		}
		return cmp(af, bf)
	}
}

// opEq is structural equality. Non-string numeric values of different Go
// types compare by value so a card's 3 matches a filter's 3.0, while "3"
// never equals 3.
func opEq(a, b interface{}) bool {
	_, aIsStr := a.(string)
	_, bIsStr := b.(string)
	if !aIsStr && !bIsStr {
		if af, ok := ToFloat(a); ok {
			if bf, ok := ToFloat(b); ok {
				return af == bf
			}
		}
	}
	return reflect.DeepEqual(a, b)
}

// opContains reports whether b is a member of container a. Strings check for
// substrings, slices for element membership, maps for key membership.
func opContains(a, b interface{}) bool {
	switch container := a.(type) {
	case string:
		probe, ok := b.(string)
		if !ok {
			return false
		}
		return strings.Contains(container, probe)
	case []interface{}:
		for _, elem := range container {
			if reflect.DeepEqual(elem, b) {
				return true
			}
		}
		return false
	case []string:
		probe, ok := b.(string)
		if !ok {
			return false
		}
		for _, elem := range container {
			if elem == probe {
				return true
			}
		}
		return false
	case map[string]interface{}:
		key, ok := b.(string)
		if !ok {
			return false
		}
		_, found := container[key]
		return found
	default:
		return false
	}
}

// opIn mirrors opContains with the operand order reversed: a is the probe,
// b the container.
func opIn(a, b interface{}) bool {
	return opContains(b, a)
}
