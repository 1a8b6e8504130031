package deck

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cardflow/cardflow/internal/batch"
	"github.com/cardflow/cardflow/pkg/archive"
	"github.com/cardflow/cardflow/pkg/config"
	cferrors "github.com/cardflow/cardflow/pkg/errors"
	"github.com/cardflow/cardflow/pkg/logging"
)

// Stats summarizes one extraction.
type Stats struct {
	Total        int
	Found        int
	Missing      int
	Fallbacks    int
	MissingNames []string
}

// SuccessRate is the found percentage, 0 for an empty deck.
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Found) / float64(s.Total) * 100
}

// Extractor resolves a deck list against an archive and produces a deck
// document in the archive's own shape: one synthetic "deck" set whose cards
// carry an injected quantity.
type Extractor struct {
	matcher  *Matcher
	executor *batch.Executor
	log      logging.Logger
}

// NewExtractor creates an extractor. schema, when non-nil, projects each
// resolved card before the quantity is injected.
func NewExtractor(a *archive.Archive, schema []string, log logging.Logger) *Extractor {
	if log == nil {
		log = logging.Nop{}
	}
	return &Extractor{
		matcher: NewMatcher(a),
		executor: batch.NewExecutor(batch.Options{
			Schema: schema,
			Logger: log,
		}),
		log: log,
	}
}

// Extract resolves every entry and builds the deck document. Missing cards
// are reported in the statistics, not fatal; an extraction where nothing
// resolved is an error.
func (e *Extractor) Extract(entries []Entry) (map[string]interface{}, Stats, error) {
	stats := Stats{Total: len(entries)}
	cards := make([]interface{}, 0, len(entries))

	for _, entry := range entries {
		found, fallback, ok := e.matcher.Find(entry)
		if !ok {
			stats.Missing++
			stats.MissingNames = append(stats.MissingNames, entry.Name)
			e.log.Warning(fmt.Sprintf("card not found: %s (%s) %s", entry.Name, entry.SetCode, entry.Number))
			continue
		}
		if fallback {
			stats.Fallbacks++
			e.log.Info(fmt.Sprintf("card %s not in %s, using printing from another set", entry.Name, entry.SetCode))
		}

		processed, _, err := e.executor.ProcessSingle(found)
		if err != nil {
			stats.Missing++
			stats.MissingNames = append(stats.MissingNames, entry.Name)
			continue
		}
		processed["quantity"] = float64(entry.Quantity)

		stats.Found++
		cards = append(cards, map[string]interface{}(processed))
	}

	if stats.Found == 0 {
		return nil, stats, cferrors.New(cferrors.CodeEmptyDeck, "no deck list entries resolved against the archive")
	}

	doc := map[string]interface{}{
		"meta": map[string]interface{}{
			"date":    time.Now().Format("2006-01-02"),
			"version": config.CurrentVersion.String(),
		},
		"data": map[string]interface{}{
			"deck": map[string]interface{}{
				"block": nil,
				"cards": cards,
			},
		},
	}
	return doc, stats, nil
}

// SaveDocument writes a deck document as indented JSON.
func SaveDocument(path string, doc map[string]interface{}) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot encode deck document")
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot write deck document").
			WithContext("path", path)
	}
	return nil
}
