// Package archive loads a card archive whole. The streaming pipeline never
// uses this; it exists for the paths that need random access to sets and
// cards (deck extraction, exports, info).
package archive

import (
	"encoding/json"
	"sort"

	"github.com/cardflow/cardflow/internal/model"
	cferrors "github.com/cardflow/cardflow/pkg/errors"
	"github.com/cardflow/cardflow/pkg/util"
)

// Set is one card set: its block and card list. Other per-set fields are not
// needed by any in-memory path and are dropped on load.
type Set struct {
	Block interface{}  `json:"block"`
	Cards []model.Card `json:"cards"`
}

// Archive is a fully loaded card archive.
type Archive struct {
	Meta map[string]interface{} `json:"meta"`
	Data map[string]Set         `json:"data"`
}

// Load reads and validates an archive file. Gzip files decompress
// transparently; maxSizeMB <= 0 disables the size ceiling.
func Load(path string, maxSizeMB int) (*Archive, error) {
	if err := util.ValidateInputFile(path, maxSizeMB); err != nil {
		return nil, err
	}

	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeFileNotFound, "cannot open archive").
			WithContext("path", path)
	}
	defer cleanup()

	var a Archive
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeInvalidFormat, "archive is not valid JSON").
			WithContext("path", path)
	}
	if a.Data == nil {
		return nil, cferrors.New(cferrors.CodeInvalidFormat, "archive has no data object").
			WithContext("path", path)
	}
	return &a, nil
}

// SetCodes returns the archive's set codes in sorted order.
func (a *Archive) SetCodes() []string {
	codes := make([]string, 0, len(a.Data))
	for code := range a.Data {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// CardCount returns the total number of cards across all sets.
func (a *Archive) CardCount() int {
	n := 0
	for _, set := range a.Data {
		n += len(set.Cards)
	}
	return n
}
