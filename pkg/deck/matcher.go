package deck

import (
	"strings"

	"github.com/cardflow/cardflow/internal/model"
	"github.com/cardflow/cardflow/pkg/archive"
)

// Matcher resolves deck list entries against a loaded archive.
type Matcher struct {
	archive *archive.Archive
}

// NewMatcher creates a matcher over a loaded archive.
func NewMatcher(a *archive.Archive) *Matcher {
	return &Matcher{archive: a}
}

// Find resolves one entry. It first looks for an exact name + collector
// number match in the entry's own set, then falls back to the first card
// with a matching name anywhere in the archive (sorted set order, so the
// fallback is deterministic). The second result reports whether the match
// came from the fallback.
func (m *Matcher) Find(e Entry) (model.Card, bool, bool) {
	if set, ok := m.archive.Data[e.SetCode]; ok {
		for _, c := range set.Cards {
			if nameMatches(c, e.Name) && cardNumber(c) == e.Number {
				return c, false, true
			}
		}
	}

	for _, code := range m.archive.SetCodes() {
		for _, c := range m.archive.Data[code].Cards {
			if nameMatches(c, e.Name) {
				return c, true, true
			}
		}
	}
	return nil, false, false
}

// nameMatches compares a card's name against a deck list name. A split card
// ("Fire // Ice") matches when the deck list names either the full card or
// its front face.
func nameMatches(c model.Card, want string) bool {
	name, ok := c[model.FieldName].(string)
	if !ok {
		return false
	}
	return name == want || strings.HasPrefix(name, want+" //")
}

func cardNumber(c model.Card) string {
	n, _ := c["number"].(string)
	return n
}
