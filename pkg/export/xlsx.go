// Package export writes filtered card lists to spreadsheets. This is the
// bulk path: the whole archive is loaded, run through the batch executor and
// written out, no streaming involved.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cardflow/cardflow/internal/batch"
	"github.com/cardflow/cardflow/internal/model"
	"github.com/cardflow/cardflow/pkg/archive"
	cferrors "github.com/cardflow/cardflow/pkg/errors"
	"github.com/cardflow/cardflow/pkg/logging"
)

// Result summarizes one export.
type Result struct {
	Stats    batch.Statistics
	Rows     int
	Duration time.Duration
}

// Exporter filters an archive through the batch executor and writes the
// kept cards to an .xlsx workbook.
type Exporter struct {
	executor *batch.Executor
	schema   []string
	log      logging.Logger
}

// NewExporter creates an exporter running the batch executor with opts.
func NewExporter(opts batch.Options) *Exporter {
	log := opts.Logger
	if log == nil {
		log = logging.Nop{}
	}
	return &Exporter{
		executor: batch.NewExecutor(opts),
		schema:   opts.Schema,
		log:      log,
	}
}

// ExportFile loads archivePath, filters its cards and writes outputPath.
// Cards are tagged with their set code before filtering so the spreadsheet
// keeps the set association.
func (e *Exporter) ExportFile(archivePath, outputPath string, maxSizeMB int) (*Result, error) {
	start := time.Now()

	a, err := archive.Load(archivePath, maxSizeMB)
	if err != nil {
		return nil, err
	}

	cards := flatten(a)
	e.log.Info(fmt.Sprintf("exporting %d cards from %d sets", len(cards), len(a.Data)))

	kept, stats := e.executor.CollectBatch(cards)

	if err := e.writeWorkbook(outputPath, kept); err != nil {
		return nil, err
	}

	return &Result{
		Stats:    stats,
		Rows:     len(kept),
		Duration: time.Since(start),
	}, nil
}

// flatten collects every card in sorted set order, injecting setCode where
// a card does not carry it.
func flatten(a *archive.Archive) []model.Card {
	var cards []model.Card
	for _, code := range a.SetCodes() {
		for _, c := range a.Data[code].Cards {
			cc := c.Clone()
			if _, ok := cc["setCode"]; !ok {
				cc["setCode"] = code
			}
			cards = append(cards, cc)
		}
	}
	return cards
}

func (e *Exporter) writeWorkbook(path string, cards []model.Card) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot create sheet writer")
	}

	columns := e.columns(cards)

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := setRow(sw, 1, header); err != nil {
		return err
	}

	for i, c := range cards {
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			row[j] = cellValue(c[col])
		}
		if err := setRow(sw, i+2, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot flush sheet")
	}
	if err := f.SaveAs(path); err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot save workbook").
			WithContext("path", path)
	}
	return nil
}

// columns picks the spreadsheet column order: the schema when one is set,
// otherwise name and type first and the remaining fields sorted.
func (e *Exporter) columns(cards []model.Card) []string {
	if e.schema != nil {
		return e.schema
	}

	seen := map[string]bool{model.FieldName: true, model.FieldType: true}
	var rest []string
	for _, c := range cards {
		for k := range c {
			if !seen[k] {
				seen[k] = true
				rest = append(rest, k)
			}
		}
	}
	sort.Strings(rest)
	return append([]string{model.FieldName, model.FieldType}, rest...)
}

func setRow(sw *excelize.StreamWriter, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot address row")
	}
	if err := sw.SetRow(cell, values); err != nil {
		return cferrors.Wrap(err, cferrors.CodeWriteFailed, "cannot write row")
	}
	return nil
}

// cellValue renders a card field as a spreadsheet cell. Containers are
// embedded as compact JSON.
func cellValue(v interface{}) interface{} {
	switch v.(type) {
	case nil, string, float64, bool, int, int64:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
