// Package writer implements the incremental card-set writer: a small state
// machine that serializes streamed cards into one well-formed JSON document
// while holding at most one flush buffer of fragments in memory.
package writer

import (
	"encoding/json"
	"io"

	"github.com/cardflow/cardflow/internal/model"
	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

// State tracks the writer lifecycle.
type State int

const (
	// StateInitial is the state before any set has been opened.
	StateInitial State = iota
	// StateSetOpen means a set is open and cards may be written.
	StateSetOpen
	// StateSetClosed is the terminal state after Close.
	StateSetClosed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "INITIAL"
	case StateSetOpen:
		return "SET_OPEN"
	case StateSetClosed:
		return "SET_CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Stats is a snapshot of writer counters.
type Stats struct {
	CardsWritten      int
	SetsProcessed     int
	ErrorsEncountered int
}

// DefaultBufferSize is the flush threshold used when none is configured.
const DefaultBufferSize = 1000

// CardSetWriter writes cards grouped into named sets. Sets appear in the
// output in first-transition order; a closed set is never reopened. The
// writer owns its portion of the sink for its whole lifetime and must be
// closed to emit the trailing set terminator.
type CardSetWriter struct {
	out        io.Writer
	bufferSize int

	state           State
	currentSet      string
	haveSet         bool
	firstSetWritten bool
	isFirstCard     bool

	buffer [][]byte
	stats  Stats
}

// NewCardSetWriter creates a writer over out flushing every bufferSize
// buffered card fragments.
func NewCardSetWriter(out io.Writer, bufferSize int) *CardSetWriter {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &CardSetWriter{
		out:        out,
		bufferSize: bufferSize,
		state:      StateInitial,
	}
}

// TransitionToSet closes the currently open set (if any) and opens setName.
// Transitioning to the already-open set is a no-op.
func (w *CardSetWriter) TransitionToSet(setName string) error {
	if w.haveSet && setName == w.currentSet {
		return nil
	}

	if w.haveSet {
		if err := w.flush(); err != nil {
			return err
		}
		if err := w.write([]byte("]}")); err != nil {
			return err
		}
	}

	if w.firstSetWritten {
		if err := w.write([]byte(",")); err != nil {
			return err
		}
	}

	opening, err := json.Marshal(setName)
	if err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot encode set name")
	}
	opening = append(opening, []byte(`:{"block":null,"cards":[`)...)
	if err := w.write(opening); err != nil {
		return err
	}

	w.currentSet = setName
	w.haveSet = true
	w.firstSetWritten = true
	w.isFirstCard = true
	w.state = StateSetOpen
	w.stats.SetsProcessed++
	return nil
}

// WriteCard validates and buffers one card. A nil card is ignored. Writing
// outside SET_OPEN is a state error; a card without name/type is a
// validation error. The buffer is flushed to the sink once it reaches the
// configured threshold.
func (w *CardSetWriter) WriteCard(c model.Card) error {
	if c == nil {
		return nil
	}

	if w.state != StateSetOpen {
		return cferrors.WriterStateError(StateSetOpen.String(), w.state.String())
	}

	if missing := c.MissingRequired(); len(missing) > 0 {
		w.stats.ErrorsEncountered++
		return cferrors.MissingFields(c.Name(), missing)
	}

	fragment, err := json.Marshal(c)
	if err != nil {
		w.stats.ErrorsEncountered++
		return cferrors.Wrapf(err, cferrors.CodeWriteFailed, "cannot serialize card %s", c.Name())
	}

	if w.isFirstCard {
		w.isFirstCard = false
		w.buffer = append(w.buffer, fragment)
	} else {
		w.buffer = append(w.buffer, append([]byte(","), fragment...))
	}

	if len(w.buffer) >= w.bufferSize {
		if err := w.flush(); err != nil {
			return err
		}
	}

	w.stats.CardsWritten++
	return nil
}

// Close flushes remaining fragments and writes the final set terminator.
// Idempotent when no set was ever opened.
func (w *CardSetWriter) Close() error {
	if !w.haveSet || w.state == StateSetClosed {
		return nil
	}
	if err := w.flush(); err != nil {
		return err
	}
	if err := w.write([]byte("]}")); err != nil {
		return err
	}
	w.state = StateSetClosed
	return nil
}

// Stats returns a snapshot of the writer counters.
func (w *CardSetWriter) Stats() Stats {
	return w.stats
}

// State returns the current writer state.
func (w *CardSetWriter) State() State {
	return w.state
}

// flush concatenates buffered fragments into a single sink write.
func (w *CardSetWriter) flush() error {
	if len(w.buffer) == 0 {
		return nil
	}

	total := 0
	for _, f := range w.buffer {
		total += len(f)
	}
	joined := make([]byte, 0, total)
	for _, f := range w.buffer {
		joined = append(joined, f...)
	}
	w.buffer = w.buffer[:0]
	return w.write(joined)
}

func (w *CardSetWriter) write(p []byte) error {
	if _, err := w.out.Write(p); err != nil {
		w.stats.ErrorsEncountered++
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "sink write failed")
	}
	return nil
}
