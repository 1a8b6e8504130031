package schema

import (
	"os"
	"path/filepath"
	"testing"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

func TestDumpAndFieldsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	want := []string{"name", "type", "colors", "convertedManaCost"}

	if err := Dump(path, want); err != nil {
		t.Fatal(err)
	}

	got, err := Fields(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFields_MissingFile(t *testing.T) {
	_, err := Fields(filepath.Join(t.TempDir(), "absent.json"))
	if !cferrors.IsCode(err, cferrors.CodeFileNotFound) {
		t.Errorf("expected file not found, got %v", err)
	}
}

func TestFields_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{{{`},
		{"empty object", `{}`},
		{"missing card items", `{"properties":{"data":{"patternProperties":{".*":{}}}}}`},
		{"required not a list", `{"properties":{"data":{"patternProperties":{".*":{"properties":{"cards":{"items":{"required":"name"}}}}}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Fields(path)
			if !cferrors.IsCode(err, cferrors.CodeInvalidFormat) {
				t.Errorf("expected invalid format, got %v", err)
			}
		})
	}
}
