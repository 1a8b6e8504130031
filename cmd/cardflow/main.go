// Cardflow - streaming card archive filter.
// Filters, projects and extracts cards from large JSON card archives.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

// CLI flags
var (
	filtersFlag    string
	schemaFile     string
	dumpSchemaFile string
	languages      []string
	configFile     string
	watchMode      bool
	verbose        bool

	// Deck flags
	debugFlag bool

	// Export flags
	chunkSizeFlag int
	timeoutFlag   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cardflow",
	Short: "Cardflow - filter and extract cards from JSON archives",
	Long: `Cardflow streams multi-gigabyte card archives through a filter pipeline
without loading them into memory, and extracts deck lists against them.

Examples:
  cardflow filter AllPrintings.json red.json --filters '{"colors":{"contains":"R"}}'
  cardflow extract-deck AllPrintings.json deck.txt deck.json
  cardflow export AllPrintings.json cards.xlsx --filters '{"rarity":"mythic"}'
  cardflow info AllPrintings.json.gz`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var filterCmd = &cobra.Command{
	Use:   "filter [input] [output]",
	Short: "Stream-filter an archive into a new archive",
	Long: `Filter an archive card by card. The input is streamed, so archives far
larger than memory work; the output is a valid archive document with the
same metadata and set layout.

Examples:
  cardflow filter AllPrintings.json red.json --filters '{"colors":{"contains":"R"}}'
  cardflow filter AllPrintings.json.gz cheap.json --filters '{"convertedManaCost":{"lte":2}}'
  cardflow filter AllPrintings.json out.json --schema fields.json --languages German --languages French
  cardflow filter --dump-schema fields.json`,
	Args: filterArgs,
	RunE: runFilter,
}

var extractDeckCmd = &cobra.Command{
	Use:   "extract-deck [archive] [decklist] [output]",
	Short: "Extract a deck list's cards from an archive",
	Long: `Resolve a deck list ("<qty> <name> (<SET>) <number>" lines) against an
archive and write a standalone deck document with quantities injected.`,
	Args: cobra.ExactArgs(3),
	RunE: runExtractDeck,
}

var exportCmd = &cobra.Command{
	Use:   "export [input] [output.xlsx]",
	Short: "Export filtered cards to a spreadsheet",
	Long: `Load an archive, filter its cards in parallel batches and write the kept
cards to an .xlsx workbook, one row per card.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

var infoCmd = &cobra.Command{
	Use:   "info [input]",
	Short: "Display information about an archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	filterCmd.Flags().StringVarP(&filtersFlag, "filters", "f", "", "filter conditions as JSON")
	filterCmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "schema file restricting output fields")
	filterCmd.Flags().StringVar(&dumpSchemaFile, "dump-schema", "", "write the default schema to a file and exit")
	filterCmd.Flags().StringArrayVarP(&languages, "languages", "l", nil, "foreign languages to keep (repeatable)")
	filterCmd.Flags().StringVarP(&configFile, "config", "c", "", "explicit config file")
	filterCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-run when the input changes")
	filterCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	extractDeckCmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "schema file restricting output fields")
	extractDeckCmd.Flags().StringVarP(&configFile, "config", "c", "", "explicit config file")
	extractDeckCmd.Flags().BoolVar(&debugFlag, "debug", false, "debug logging")

	exportCmd.Flags().StringVarP(&filtersFlag, "filters", "f", "", "filter conditions as JSON")
	exportCmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "schema file restricting output fields")
	exportCmd.Flags().StringVarP(&configFile, "config", "c", "", "explicit config file")
	exportCmd.Flags().IntVar(&chunkSizeFlag, "chunk-size", 0, "batch chunk size")
	exportCmd.Flags().StringVar(&timeoutFlag, "timeout", "", "per-chunk timeout (e.g. 5s)")

	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(extractDeckCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(infoCmd)
}
