package batch

import (
	"testing"

	"github.com/cardflow/cardflow/internal/model"
	"github.com/cardflow/cardflow/pkg/filter"
)

func mkCards(n int) []model.Card {
	cards := make([]model.Card, n)
	for i := range cards {
		cards[i] = model.Card{
			"name": "Card",
			"type": "Instant",
			"idx":  float64(i),
		}
	}
	return cards
}

func TestProcessSingle(t *testing.T) {
	e := NewExecutor(Options{})

	out, filtered, err := e.ProcessSingle(model.Card{"name": "A", "type": "Instant"})
	if err != nil || filtered || out == nil {
		t.Errorf("valid card: out=%v filtered=%v err=%v", out, filtered, err)
	}

	out, filtered, err = e.ProcessSingle(model.Card{"name": "A"})
	if err == nil || filtered || out != nil {
		t.Errorf("invalid card must error: out=%v filtered=%v err=%v", out, filtered, err)
	}

	e = NewExecutor(Options{Filters: filter.Conditions{"idx": {"gt": 100.0}}})
	out, filtered, err = e.ProcessSingle(model.Card{"name": "A", "type": "Instant", "idx": 1.0})
	if err != nil || !filtered || out != nil {
		t.Errorf("non-match must be filtered: out=%v filtered=%v err=%v", out, filtered, err)
	}
}

func TestProcessBatch_ChunksAndStats(t *testing.T) {
	cards := mkCards(7)
	// One record with a missing required field fails in isolation.
	cards[4] = model.Card{"name": "Broken"}

	e := NewExecutor(Options{ChunkSize: 3})

	var chunkSizes []int
	var last Statistics
	for kept, stats := range e.ProcessBatch(cards) {
		chunkSizes = append(chunkSizes, len(kept))
		last = stats
	}

	if len(chunkSizes) != 3 {
		t.Fatalf("expected 3 chunks for 7 records at chunk size 3, got %d", len(chunkSizes))
	}
	if last.Total != 7 || last.Failed != 1 {
		t.Errorf("unexpected stats: %+v", last)
	}
	if last.Processed+last.Filtered+last.Failed != last.Total {
		t.Errorf("conservation violated: %+v", last)
	}
	if last.Processed != 6 {
		t.Errorf("expected 6 processed, got %d", last.Processed)
	}
}

func TestProcessBatch_FilteredCounted(t *testing.T) {
	e := NewExecutor(Options{
		ChunkSize: 4,
		Filters:   filter.Conditions{"idx": {"lt": 3.0}},
	})

	var kept int
	var last Statistics
	for chunk, stats := range e.ProcessBatch(mkCards(10)) {
		kept += len(chunk)
		last = stats
	}

	if last.Processed != 3 || last.Filtered != 7 || last.Failed != 0 {
		t.Errorf("unexpected stats: %+v", last)
	}
	if kept != 3 {
		t.Errorf("kept %d cards, want 3", kept)
	}
}

// Chunks above the sequential threshold take the worker pool path; the
// observable behavior must not change.
func TestProcessBatch_ParallelMatchesSequential(t *testing.T) {
	cards := mkCards(50)
	cards[13] = model.Card{"type": "Broken"}

	seq := NewExecutor(Options{ChunkSize: 5, Filters: filter.Conditions{"idx": {"gte": 10.0}}})
	par := NewExecutor(Options{ChunkSize: 25, Filters: filter.Conditions{"idx": {"gte": 10.0}}})

	seqKept, seqStats := seq.CollectBatch(cards)
	parKept, parStats := par.CollectBatch(cards)

	if seqStats != parStats {
		t.Errorf("stats differ: sequential %+v, parallel %+v", seqStats, parStats)
	}
	if len(seqKept) != len(parKept) {
		t.Fatalf("kept counts differ: %d vs %d", len(seqKept), len(parKept))
	}
	for i := range seqKept {
		if seqKept[i]["idx"] != parKept[i]["idx"] {
			t.Errorf("order differs at %d: %v vs %v", i, seqKept[i]["idx"], parKept[i]["idx"])
		}
	}
}

// The running statistics must satisfy Processed+Filtered+Failed ==
// cards-consumed-so-far at every yield, including runs with failing cards,
// so a chunk can never contribute both partial counts and a whole-chunk
// failure.
func TestProcessBatch_RunningConservation(t *testing.T) {
	cards := mkCards(12)
	cards[2] = model.Card{"name": "Broken"}
	cards[9] = model.Card{"name": "Broken"}

	e := NewExecutor(Options{ChunkSize: 4, Filters: filter.Conditions{"idx": {"lt": 6.0}}})

	consumed := 0
	var last Statistics
	for _, stats := range e.ProcessBatch(cards) {
		consumed += 4
		if got := stats.Processed + stats.Filtered + stats.Failed; got != consumed {
			t.Errorf("after %d cards: counted %d (%+v)", consumed, got, stats)
		}
		last = stats
	}
	if last.Failed != 2 || last.Processed+last.Filtered+last.Failed != last.Total {
		t.Errorf("final stats inconsistent: %+v", last)
	}
}

func TestProcessBatch_Lazy(t *testing.T) {
	e := NewExecutor(Options{ChunkSize: 2})

	var seen int
	for range e.ProcessBatch(mkCards(10)) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("expected to stop after 2 chunks, saw %d", seen)
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	e := NewExecutor(Options{})
	count := 0
	for range e.ProcessBatch(nil) {
		count++
	}
	if count != 0 {
		t.Errorf("empty input yielded %d chunks", count)
	}
}

func TestProcessBatch_SchemaApplied(t *testing.T) {
	e := NewExecutor(Options{Schema: []string{"name"}})
	kept, stats := e.CollectBatch(mkCards(3))
	if stats.Processed != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	for _, c := range kept {
		if len(c) != 1 {
			t.Errorf("schema not applied: %#v", c)
		}
	}
}
