package filter

import "testing"

func TestOperator_Lookup(t *testing.T) {
	for _, name := range []string{"eq", "gt", "lt", "gte", "lte", "contains", "in"} {
		if _, ok := Operator(name); !ok {
			t.Errorf("Operator(%q) not found", name)
		}
	}
	if _, ok := Operator("regex"); ok {
		t.Error("Operator(\"regex\") should not exist")
	}
}

func TestOpEq(t *testing.T) {
	tests := []struct {
		name string
		a, b interface{}
		want bool
	}{
		{"equal strings", "rare", "rare", true},
		{"different strings", "rare", "mythic", false},
		{"equal numbers", 3.0, 3.0, true},
		{"int vs float same value", 3, 3.0, true},
		{"different numbers", 3.0, 4.0, false},
		{"numeric string vs number", "3", 3.0, false},
		{"numeric string vs numeric string", "3.0", "3", false},
		{"bools", true, true, true},
		{"nil vs nil", nil, nil, true},
		{"equal lists", []interface{}{"R", "G"}, []interface{}{"R", "G"}, true},
		{"different lists", []interface{}{"R"}, []interface{}{"G"}, false},
	}
	eq, _ := Operator("eq")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eq(tt.a, tt.b); got != tt.want {
				t.Errorf("eq(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNumericOperators(t *testing.T) {
	tests := []struct {
		op   string
		a, b interface{}
		want bool
	}{
		{"gt", 5.0, 3.0, true},
		{"gt", 3.0, 5.0, false},
		{"gt", 3.0, 3.0, false},
		{"lt", 2.0, 3.0, true},
		{"gte", 3.0, 3.0, true},
		{"lte", 3.0, 3.0, true},
		{"lte", 4.0, 3.0, false},
		{"gt", "5", 3.0, true},
		{"gt", "5", "3", true},
		{"gt", []interface{}{}, 3.0, false},
		{"lt", 2.0, "not a number", false},
	}
	for _, tt := range tests {
		fn, ok := Operator(tt.op)
		if !ok {
			t.Fatalf("missing operator %q", tt.op)
		}
		if got := fn(tt.a, tt.b); got != tt.want {
			t.Errorf("%s(%v, %v) = %v, want %v", tt.op, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestOpContains(t *testing.T) {
	tests := []struct {
		name string
		a, b interface{}
		want bool
	}{
		{"substring", "Flying, vigilance", "Flying", true},
		{"missing substring", "Flying", "Trample", false},
		{"list member", []interface{}{"R", "G"}, "R", true},
		{"list non-member", []interface{}{"R", "G"}, "B", false},
		{"numeric list member", []interface{}{1.0, 2.0}, 2.0, true},
		{"string slice member", []string{"paper", "mtgo"}, "paper", true},
		{"map key", map[string]interface{}{"en": "x"}, "en", true},
		{"map missing key", map[string]interface{}{"en": "x"}, "de", false},
		{"non-container", 42.0, "4", false},
		{"non-string probe in string", "abc", 1.0, false},
	}
	contains, _ := Operator("contains")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contains(tt.a, tt.b); got != tt.want {
				t.Errorf("contains(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOpIn(t *testing.T) {
	in, _ := Operator("in")
	if !in("rare", []interface{}{"rare", "mythic"}) {
		t.Error("in should find member")
	}
	if in("common", []interface{}{"rare", "mythic"}) {
		t.Error("in should reject non-member")
	}
	if !in("R", "RG") {
		t.Error("in should fall back to substring for string container")
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{3.5, 3.5, true},
		{3, 3, true},
		{int64(7), 7, true},
		{"2.5", 2.5, true},
		{" 4 ", 4, true},
		{true, 1, true},
		{false, 0, true},
		{"abc", 0, false},
		{[]interface{}{1.0}, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ToFloat(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
