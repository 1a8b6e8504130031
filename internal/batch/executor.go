// Package batch processes in-memory card slices in chunks, in parallel when
// a chunk is large enough to pay for the goroutines. It serves callers that
// already hold their cards (deck extraction, exports) rather than the
// streaming pipeline.
package batch

import (
	"context"
	"fmt"
	"iter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cardflow/cardflow/internal/model"
	"github.com/cardflow/cardflow/pkg/card"
	cferrors "github.com/cardflow/cardflow/pkg/errors"
	"github.com/cardflow/cardflow/pkg/filter"
	"github.com/cardflow/cardflow/pkg/logging"
)

// Statistics counts batch outcomes. Processed + Filtered + Failed equals
// Total once every chunk has been consumed.
type Statistics struct {
	Total     int
	Processed int
	Filtered  int
	Failed    int
}

const (
	// DefaultChunkSize is the chunk size used when none is configured.
	DefaultChunkSize = 100
	// DefaultTimeout bounds the wall-clock time of one parallel chunk.
	DefaultTimeout = 5 * time.Second

	// Chunks at or below this size run sequentially.
	sequentialThreshold = 5
	maxWorkers          = 10
)

// Options configures an executor.
type Options struct {
	Filters             filter.Conditions
	Schema              []string
	AdditionalLanguages []string
	ChunkSize           int
	Timeout             time.Duration
	Logger              logging.Logger
}

// Executor filters and projects card slices chunk by chunk.
type Executor struct {
	processor *card.Processor
	opts      Options
}

// NewExecutor creates an executor, filling in defaults for zero options.
func NewExecutor(opts Options) *Executor {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	return &Executor{processor: card.NewProcessor(), opts: opts}
}

// ProcessSingle runs one card through the processor. The three results are
// mutually exclusive: a projected card, filtered=true for a non-match, or an
// error. Panics in processing are trapped and surfaced as errors.
func (e *Executor) ProcessSingle(c model.Card) (out model.Card, filtered bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, filtered = nil, false
			err = cferrors.Newf(cferrors.CodeProcessFailed, "panic processing card: %v", r).
				WithContext("card", c.Name())
		}
	}()

	processed, perr := e.processor.Process(c, e.opts.Filters, e.opts.Schema, e.opts.AdditionalLanguages)
	if perr != nil {
		e.opts.Logger.Error(fmt.Sprintf("card %s: %v", c.Name(), perr))
		return nil, false, perr
	}
	if processed == nil {
		return nil, true, nil
	}
	return processed, false, nil
}

// ProcessBatch returns a lazy sequence of (kept cards, running statistics),
// one element per chunk. Nothing is processed until the caller iterates, and
// abandoning the iteration stops further work. The statistics value yielded
// with the last chunk is final.
func (e *Executor) ProcessBatch(cards []model.Card) iter.Seq2[[]model.Card, Statistics] {
	return func(yield func([]model.Card, Statistics) bool) {
		stats := Statistics{Total: len(cards)}
		for start := 0; start < len(cards); start += e.opts.ChunkSize {
			end := min(start+e.opts.ChunkSize, len(cards))
			chunk := cards[start:end]

			// Tallied chunk-locally so a chunk that errors out mid-way
			// contributes exactly len(chunk) to Failed, never a mix of
			// partial counts plus the whole chunk.
			var local Statistics
			kept, err := e.runChunk(chunk, &local)
			if err != nil {
				stats.Failed += len(chunk)
				e.opts.Logger.Error(fmt.Sprintf("chunk of %d cards failed: %v", len(chunk), err))
				kept = nil
			} else {
				stats.Processed += local.Processed
				stats.Filtered += local.Filtered
				stats.Failed += local.Failed
			}
			if !yield(kept, stats) {
				return
			}
		}
	}
}

// CollectBatch drains ProcessBatch into one slice, for callers that want the
// whole result at once.
func (e *Executor) CollectBatch(cards []model.Card) ([]model.Card, Statistics) {
	var out []model.Card
	var stats Statistics
	for kept, s := range e.ProcessBatch(cards) {
		out = append(out, kept...)
		stats = s
	}
	stats.Total = len(cards)
	return out, stats
}

// runChunk dispatches a chunk sequentially or to the worker pool. A panic
// outside per-card processing fails the whole chunk.
func (e *Executor) runChunk(chunk []model.Card, stats *Statistics) (kept []model.Card, err error) {
	defer func() {
		if r := recover(); r != nil {
			kept = nil
			err = cferrors.Newf(cferrors.CodeBatchFailed, "chunk processing panicked: %v", r)
		}
	}()

	if len(chunk) <= sequentialThreshold {
		return e.runSequential(chunk, stats), nil
	}
	return e.runParallel(chunk, stats), nil
}

func (e *Executor) runSequential(chunk []model.Card, stats *Statistics) []model.Card {
	kept := make([]model.Card, 0, len(chunk))
	for _, c := range chunk {
		out, filtered, err := e.ProcessSingle(c)
		switch {
		case err != nil:
			stats.Failed++
		case filtered:
			stats.Filtered++
		default:
			stats.Processed++
			kept = append(kept, out)
		}
	}
	return kept
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeFiltered
	outcomeFailed
	outcomeTimeout
)

// runParallel fans a chunk out to at most maxWorkers goroutines under a
// single wall-clock deadline. Cards not started before the deadline count as
// failed; input order of the kept cards is preserved.
func (e *Executor) runParallel(chunk []model.Card, stats *Statistics) []model.Card {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.Timeout)
	defer cancel()

	results := make([]model.Card, len(chunk))
	outcomes := make([]outcome, len(chunk))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(chunk), maxWorkers))
	for i := range chunk {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				outcomes[i] = outcomeTimeout
				return nil
			default:
			}

			out, filtered, err := e.ProcessSingle(chunk[i])
			switch {
			case err != nil:
				outcomes[i] = outcomeFailed
			case filtered:
				outcomes[i] = outcomeFiltered
			default:
				outcomes[i] = outcomeProcessed
				results[i] = out
			}
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]model.Card, 0, len(chunk))
	timedOut := 0
	for i, o := range outcomes {
		switch o {
		case outcomeProcessed:
			stats.Processed++
			kept = append(kept, results[i])
		case outcomeFiltered:
			stats.Filtered++
		case outcomeFailed:
			stats.Failed++
		case outcomeTimeout:
			stats.Failed++
			timedOut++
		}
	}
	if timedOut > 0 {
		e.opts.Logger.Warning(fmt.Sprintf("%d cards timed out in a batch chunk", timedOut))
	}
	return kept
}
