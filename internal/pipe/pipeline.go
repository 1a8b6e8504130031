// Package pipe runs the streaming filter pipeline: a two-pass walk over a
// card archive that copies the metadata block, then filters and projects
// every card into an incrementally written output document.
package pipe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/cardflow/cardflow/internal/model"
	"github.com/cardflow/cardflow/pkg/card"
	cferrors "github.com/cardflow/cardflow/pkg/errors"
	"github.com/cardflow/cardflow/pkg/filter"
	"github.com/cardflow/cardflow/pkg/logging"
	"github.com/cardflow/cardflow/pkg/parser"
	"github.com/cardflow/cardflow/pkg/util"
	"github.com/cardflow/cardflow/pkg/writer"
)

// Options configures a pipeline run.
type Options struct {
	Filters             filter.Conditions
	Schema              []string
	AdditionalLanguages []string
	BufferSize          int
	ShowProgress        bool
	Logger              logging.Logger
}

// Result summarizes one pipeline run.
type Result struct {
	RunID             string
	Duration          time.Duration
	CardsWritten      int
	SetsProcessed     int
	CardsFiltered     int
	ErrorsEncountered int
}

// Pipeline streams an archive through the card processor into a card-set
// writer. A card that cannot be processed aborts the run with a stream
// error; non-matching cards are just counted.
type Pipeline struct {
	processor *card.Processor
	opts      Options
}

// New creates a pipeline. A nil logger is replaced with a no-op one.
func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	return &Pipeline{processor: card.NewProcessor(), opts: opts}
}

// ProcessFile filters inputPath into outputPath. The input is read twice:
// once to lift the top-level metadata block, once to walk the card data.
// Gzip inputs are decompressed transparently on both passes.
func (p *Pipeline) ProcessFile(inputPath, outputPath string) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	p.opts.Logger.Info(fmt.Sprintf("run %s: filtering %s into %s", runID, inputPath, outputPath))

	meta, err := readMetaFromFile(inputPath)
	if err != nil {
		return nil, err
	}

	body, cleanup, err := util.OpenFile(inputPath)
	if err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeFileNotFound, "cannot open input").
			WithContext("path", inputPath)
	}
	defer cleanup()

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot create output").
			WithContext("path", outputPath)
	}
	defer out.Close()

	// Progress is byte-based and only meaningful for plain files; a gzip
	// stream's decompressed size is unknown up front.
	var size int64 = -1
	if !util.IsGzipFile(inputPath) {
		if info, statErr := os.Stat(inputPath); statErr == nil {
			size = info.Size()
		}
	}

	result, err := p.Run(body, out, meta, size)
	if err != nil {
		return nil, err
	}
	result.RunID = runID
	result.Duration = time.Since(start)
	p.opts.Logger.Info(fmt.Sprintf("run %s: wrote %d cards across %d sets in %s",
		runID, result.CardsWritten, result.SetsProcessed, result.Duration))
	return result, nil
}

// Run streams body into out. meta is copied into the output header; nil
// becomes an empty object so the output shape is stable. size is the input
// byte count for progress reporting, or -1 when unknown.
func (p *Pipeline) Run(body io.Reader, out io.Writer, meta map[string]interface{}, size int64) (*Result, error) {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeMetadata, "cannot encode metadata")
	}
	header := append(append([]byte(`{"meta":`), metaBytes...), `,"data":{`...)
	if _, err := out.Write(header); err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot write document header")
	}

	w := writer.NewCardSetWriter(out, p.opts.BufferSize)
	sp := parser.NewStreamParser(body)

	var bar *progressbar.ProgressBar
	if p.opts.ShowProgress {
		bar = newProgressBar(size)
	}

	result := &Result{}
	var asm *assembler
	currentSet := ""
	cardCount := 0

	for {
		ev, err := sp.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if asm != nil {
			if asm.feed(ev) {
				if err := p.handleCard(currentSet, asm.result, w, result); err != nil {
					return nil, err
				}
				asm = nil
				cardCount++
				if bar != nil && cardCount%256 == 0 {
					_ = bar.Set64(sp.InputOffset())
				}
			}
			continue
		}

		switch ev.Kind {
		case parser.EventStartArray:
			if set, ok := cardsArrayPath(ev.Path); ok {
				if err := w.TransitionToSet(set); err != nil {
					return nil, err
				}
				currentSet = set
			}
		case parser.EventStartMap:
			if isCardPath(ev.Path) {
				asm = &assembler{}
				asm.feed(ev)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	if _, err := out.Write([]byte("}}")); err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot write document terminator")
	}
	if bar != nil {
		_ = bar.Finish()
	}

	stats := w.Stats()
	result.CardsWritten = stats.CardsWritten
	result.SetsProcessed = stats.SetsProcessed
	result.ErrorsEncountered = stats.ErrorsEncountered
	return result, nil
}

// handleCard processes one assembled card. Any processor or writer error is
// fatal: the output document is already partially written, so a card that
// cannot be processed means the run cannot produce a trustworthy archive.
// The error is wrapped with the card's stream path and name.
func (p *Pipeline) handleCard(set string, c model.Card, w *writer.CardSetWriter, result *Result) error {
	path := "data." + set + ".cards.item"

	processed, err := p.processor.Process(c, p.opts.Filters, p.opts.Schema, p.opts.AdditionalLanguages)
	if err != nil {
		p.opts.Logger.Error(fmt.Sprintf("card %s: %v", c.Name(), err))
		return cferrors.StreamError(path, err).WithContext("card", c.Name())
	}
	if processed == nil {
		result.CardsFiltered++
		return nil
	}

	if err := w.WriteCard(processed); err != nil {
		p.opts.Logger.Error(fmt.Sprintf("card %s: %v", c.Name(), err))
		return cferrors.StreamError(path, err).WithContext("card", c.Name())
	}
	return nil
}

// cardsArrayPath reports whether path is a set's cards array and returns the
// set name.
func cardsArrayPath(path string) (string, bool) {
	segs := strings.Split(path, ".")
	if len(segs) == 3 && segs[0] == "data" && segs[2] == "cards" {
		return segs[1], true
	}
	return "", false
}

// isCardPath reports whether path is a single card inside a set's cards
// array.
func isCardPath(path string) bool {
	segs := strings.Split(path, ".")
	return len(segs) == 4 && segs[0] == "data" && segs[2] == "cards" && segs[3] == "item"
}

// readMetaFromFile lifts the top-level "meta" object without materializing
// anything else. Returns nil when the document has no metadata block.
func readMetaFromFile(path string) (map[string]interface{}, error) {
	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeFileNotFound, "cannot open input").
			WithContext("path", path)
	}
	defer cleanup()
	return ReadMeta(r)
}

// ReadMeta scans the top level of a card archive for its "meta" object.
// Other top-level values are skipped token by token, so a multi-gigabyte
// data block costs no memory.
func ReadMeta(r io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeMetadata, "cannot read document start")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, cferrors.New(cferrors.CodeMetadata, "document root is not an object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, cferrors.Wrap(err, cferrors.CodeMetadata, "cannot read top-level key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, cferrors.New(cferrors.CodeMetadata, "malformed top-level key")
		}

		if key == "meta" {
			var meta map[string]interface{}
			if err := dec.Decode(&meta); err != nil {
				return nil, cferrors.Wrap(err, cferrors.CodeMetadata, "cannot decode metadata block")
			}
			return meta, nil
		}
		if err := skipValue(dec); err != nil {
			return nil, cferrors.Wrap(err, cferrors.CodeMetadata, "cannot skip top-level value")
		}
	}
	return nil, nil
}

// skipValue consumes exactly one JSON value from the decoder.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

func newProgressBar(size int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetDescription("filtering"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
