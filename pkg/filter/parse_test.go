package filter

import (
	"reflect"
	"testing"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

func TestParse_Sugar(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Conditions
	}{
		{
			"explicit operator",
			`{"colors":{"contains":"R"}}`,
			Conditions{"colors": {"contains": "R"}},
		},
		{
			"bare scalar becomes eq",
			`{"rarity":"rare"}`,
			Conditions{"rarity": {"eq": "rare"}},
		},
		{
			"bare number becomes eq",
			`{"convertedManaCost":3}`,
			Conditions{"convertedManaCost": {"eq": 3.0}},
		},
		{
			"bare list becomes in",
			`{"setCode":["LEA","LEB"]}`,
			Conditions{"setCode": {"in": []interface{}{"LEA", "LEB"}}},
		},
		{
			"mixed",
			`{"rarity":"rare","convertedManaCost":{"lte":2}}`,
			Conditions{
				"rarity":            {"eq": "rare"},
				"convertedManaCost": {"lte": 2.0},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse(`{"colors":`)
	if !cferrors.IsCode(err, cferrors.CodeInvalidFormat) {
		t.Errorf("expected invalid format error, got %v", err)
	}
}

func TestConditions_Validate(t *testing.T) {
	good := Conditions{"colors": {"contains": "R"}, "cmc": {"lte": 2.0}}
	if err := good.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := Conditions{"colors": {"matches": "R"}}
	err := bad.Validate()
	if !cferrors.IsCode(err, cferrors.CodeInvalidOperator) {
		t.Errorf("expected invalid operator error, got %v", err)
	}
}
