package archive

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

const sample = `{
  "meta": {"version": "5.2.0"},
  "data": {
    "LEA": {"block": "Core", "cards": [{"name": "Bolt", "type": "Instant"}]},
    "ARN": {"block": null, "cards": [{"name": "Dragon", "type": "Creature"}, {"name": "Djinn", "type": "Creature"}]}
  }
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	a, err := Load(writeTemp(t, "a.json", sample), 10)
	if err != nil {
		t.Fatal(err)
	}

	if a.Meta["version"] != "5.2.0" {
		t.Errorf("meta not loaded: %v", a.Meta)
	}
	if len(a.Data) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(a.Data))
	}
	codes := a.SetCodes()
	if codes[0] != "ARN" || codes[1] != "LEA" {
		t.Errorf("SetCodes not sorted: %v", codes)
	}
	if a.CardCount() != 3 {
		t.Errorf("CardCount = %d, want 3", a.CardCount())
	}
}

func TestLoad_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	zw.Write([]byte(sample))
	zw.Close()
	f.Close()

	a, err := Load(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if a.CardCount() != 3 {
		t.Errorf("CardCount = %d, want 3", a.CardCount())
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), 10)
	if !cferrors.IsCode(err, cferrors.CodeFileNotFound) {
		t.Errorf("expected file not found, got %v", err)
	}

	_, err = Load(writeTemp(t, "bad.json", `not json`), 10)
	if !cferrors.IsCode(err, cferrors.CodeInvalidFormat) {
		t.Errorf("expected invalid format, got %v", err)
	}

	_, err = Load(writeTemp(t, "nodata.json", `{"meta":{}}`), 10)
	if !cferrors.IsCode(err, cferrors.CodeInvalidFormat) {
		t.Errorf("expected invalid format for missing data, got %v", err)
	}
}
