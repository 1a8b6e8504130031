package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardflow/cardflow/internal/batch"
	"github.com/cardflow/cardflow/internal/pipe"
	"github.com/cardflow/cardflow/pkg/archive"
	"github.com/cardflow/cardflow/pkg/config"
	"github.com/cardflow/cardflow/pkg/deck"
	"github.com/cardflow/cardflow/pkg/export"
	"github.com/cardflow/cardflow/pkg/filter"
	"github.com/cardflow/cardflow/pkg/logging"
	"github.com/cardflow/cardflow/pkg/parser"
	"github.com/cardflow/cardflow/pkg/schema"
	"github.com/cardflow/cardflow/pkg/tui"
	"github.com/cardflow/cardflow/pkg/util"
	"github.com/cardflow/cardflow/pkg/watch"
)

// loadConfig loads the layered configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	mgr := config.NewManager()
	if err := mgr.Load(configFile); err != nil {
		return nil, err
	}
	return mgr.Get(), nil
}

// makeLogger opens the configured log file. Verbose and debug flags lower
// the threshold.
func makeLogger(cfg *config.Config) (logging.Logger, func() error, error) {
	level := logging.ParseLevel(cfg.Log.Level)
	if verbose {
		level = logging.LevelInfo
	}
	if debugFlag {
		level = logging.LevelDebug
	}
	return logging.FileLogger(cfg.Log.File, level)
}

// filterArgs allows a bare --dump-schema invocation; otherwise filter needs
// input and output.
func filterArgs(cmd *cobra.Command, args []string) error {
	if dumpSchemaFile != "" && len(args) == 0 {
		return nil
	}
	return cobra.ExactArgs(2)(cmd, args)
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if dumpSchemaFile != "" {
		if err := schema.Dump(dumpSchemaFile, cfg.Filter.DefaultSchema); err != nil {
			return err
		}
		fmt.Printf("wrote default schema to %s\n", dumpSchemaFile)
		if len(args) == 0 {
			return nil
		}
	}

	inputPath, outputPath := args[0], args[1]

	log, closeLog, err := makeLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := util.ValidateInputFile(inputPath, cfg.Files.MaxFileSizeMB); err != nil {
		return err
	}

	var conditions filter.Conditions
	if filtersFlag != "" {
		conditions, err = filter.Parse(filtersFlag)
		if err != nil {
			return err
		}
		if err := conditions.Validate(); err != nil {
			return err
		}
	}

	var fields []string
	if schemaFile != "" {
		fields, err = schema.Fields(schemaFile)
		if err != nil {
			return err
		}
	}

	pipeline := pipe.New(pipe.Options{
		Filters:             conditions,
		Schema:              fields,
		AdditionalLanguages: languages,
		BufferSize:          cfg.Filter.BufferSize,
		ShowProgress:        true,
		Logger:              log,
	})

	runOnce := func() error {
		result, err := pipeline.ProcessFile(inputPath, outputPath)
		if err != nil {
			return err
		}
		tui.PrintFilterReport(result)
		return nil
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	return watchAndRerun(inputPath, log, runOnce)
}

// watchAndRerun blocks re-running fn whenever path changes, until
// interrupted.
func watchAndRerun(path string, log logging.Logger, fn func() error) error {
	watcher, err := watch.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watcher.OnChange = func(string) error { return fn() }
	watcher.OnError = func(p string, err error) {
		log.Error(fmt.Sprintf("watch %s: %v", p, err))
		fmt.Fprintln(os.Stderr, err)
	}
	if err := watcher.Watch(path); err != nil {
		return err
	}

	tui.PrintWatching(path)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runExtractDeck(cmd *cobra.Command, args []string) error {
	archivePath, deckPath, outputPath := args[0], args[1], args[2]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closeLog, err := makeLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var fields []string
	if schemaFile != "" {
		fields, err = schema.Fields(schemaFile)
		if err != nil {
			return err
		}
	}

	a, err := archive.Load(archivePath, cfg.Files.MaxFileSizeMB)
	if err != nil {
		return err
	}

	entries, err := deck.ParseFile(deckPath, log)
	if err != nil {
		return err
	}

	extractor := deck.NewExtractor(a, fields, log)
	doc, stats, err := extractor.Extract(entries)
	if err != nil {
		tui.PrintDeckReport(stats)
		return err
	}

	if err := deck.SaveDocument(outputPath, doc); err != nil {
		return err
	}
	tui.PrintDeckReport(stats)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closeLog, err := makeLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var conditions filter.Conditions
	if filtersFlag != "" {
		conditions, err = filter.Parse(filtersFlag)
		if err != nil {
			return err
		}
		if err := conditions.Validate(); err != nil {
			return err
		}
	}

	var fields []string
	if schemaFile != "" {
		fields, err = schema.Fields(schemaFile)
		if err != nil {
			return err
		}
	}

	chunkSize := cfg.Batch.ChunkSize
	if chunkSizeFlag > 0 {
		chunkSize = chunkSizeFlag
	}
	timeout := cfg.Batch.Timeout
	if timeoutFlag != "" {
		timeout, err = time.ParseDuration(timeoutFlag)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
	}

	exporter := export.NewExporter(batch.Options{
		Filters:   conditions,
		Schema:    fields,
		ChunkSize: chunkSize,
		Timeout:   timeout,
		Logger:    log,
	})

	result, err := exporter.ExportFile(inputPath, outputPath, cfg.Files.MaxFileSizeMB)
	if err != nil {
		return err
	}
	tui.PrintBatchReport(result.Stats, result.Duration)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}

	meta, err := readMeta(inputPath)
	if err != nil {
		return err
	}

	sets, cards, err := scanCounts(inputPath)
	if err != nil {
		return err
	}

	format := "JSON"
	if util.IsGzipFile(inputPath) {
		format = "JSON (gzip)"
	}
	tui.PrintInfo(inputPath, format, info.Size(), sets, cards, meta != nil)
	return nil
}

func readMeta(path string) (map[string]interface{}, error) {
	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return pipe.ReadMeta(r)
}

// scanCounts streams the archive counting sets and cards without building
// anything.
func scanCounts(path string) (sets, cards int, err error) {
	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return 0, 0, err
	}
	defer cleanup()

	sp := parser.NewStreamParser(r)
	for {
		ev, err := sp.Next()
		if err == io.EOF {
			return sets, cards, nil
		}
		if err != nil {
			return 0, 0, err
		}
		switch ev.Kind {
		case parser.EventKey:
			if ev.Path == "data" {
				sets++
			}
		case parser.EventStartMap:
			if isCardPath(ev.Path) {
				cards++
			}
		}
	}
}

func isCardPath(path string) bool {
	segs := strings.Split(path, ".")
	return len(segs) == 4 && segs[0] == "data" && segs[2] == "cards" && segs[3] == "item"
}
