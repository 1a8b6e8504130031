// Package tui renders the CLI reports. Simple streaming output - styled
// summaries and progress, no interactive screens.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cardflow/cardflow/internal/batch"
	"github.com/cardflow/cardflow/internal/pipe"
	"github.com/cardflow/cardflow/pkg/deck"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// PrintFilterReport prints the summary after a streaming filter run.
func PrintFilterReport(result *pipe.Result) {
	fmt.Println()
	fmt.Println(successStyle.Render("  ✓ FILTER COMPLETE"))
	fmt.Println()
	fmt.Printf("  %s %s\n", mutedStyle.Render("Run:"), mutedStyle.Render(result.RunID))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Cards written:"), titleStyle.Render(formatNumber(int64(result.CardsWritten))))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Cards filtered:"), titleStyle.Render(formatNumber(int64(result.CardsFiltered))))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Sets:"), titleStyle.Render(fmt.Sprintf("%d", result.SetsProcessed)))
	if result.ErrorsEncountered > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Errors:"), accentStyle.Render(fmt.Sprintf("%d", result.ErrorsEncountered)))
	}
	fmt.Printf("  %s %s\n", mutedStyle.Render("Time:"), titleStyle.Render(formatDuration(result.Duration)))
	fmt.Println()
}

// PrintDeckReport prints the summary after a deck extraction.
func PrintDeckReport(stats deck.Stats) {
	fmt.Println()
	if stats.Missing == 0 {
		fmt.Println(successStyle.Render("  ✓ DECK EXTRACTED"))
	} else {
		fmt.Println(accentStyle.Render("  ▸ DECK EXTRACTED WITH MISSING CARDS"))
	}
	fmt.Println()
	fmt.Printf("  %s %s\n", mutedStyle.Render("Entries:"), titleStyle.Render(fmt.Sprintf("%d", stats.Total)))
	fmt.Printf("  %s %s %s\n", mutedStyle.Render("Found:"),
		titleStyle.Render(fmt.Sprintf("%d", stats.Found)),
		mutedStyle.Render(fmt.Sprintf("(%.1f%%)", stats.SuccessRate())))
	if stats.Fallbacks > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Other printings:"), titleStyle.Render(fmt.Sprintf("%d", stats.Fallbacks)))
	}
	for _, name := range stats.MissingNames {
		fmt.Printf("  %s %s\n", accentStyle.Render("✗"), name)
	}
	fmt.Println()
}

// PrintBatchReport prints the summary after a batch export.
func PrintBatchReport(stats batch.Statistics, duration time.Duration) {
	fmt.Println()
	fmt.Println(successStyle.Render("  ✓ EXPORT COMPLETE"))
	fmt.Println()
	fmt.Printf("  %s %s\n", mutedStyle.Render("Total:"), titleStyle.Render(formatNumber(int64(stats.Total))))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Exported:"), titleStyle.Render(formatNumber(int64(stats.Processed))))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Filtered:"), titleStyle.Render(formatNumber(int64(stats.Filtered))))
	if stats.Failed > 0 {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Failed:"), accentStyle.Render(fmt.Sprintf("%d", stats.Failed)))
	}
	fmt.Printf("  %s %s\n", mutedStyle.Render("Time:"), titleStyle.Render(formatDuration(duration)))
	fmt.Println()
}

// PrintInfo prints the archive summary for the info command.
func PrintInfo(path, format string, sizeBytes int64, sets, cards int, hasMeta bool) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  " + path))
	fmt.Println(mutedStyle.Render("  ─────────────────────────────────────"))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Format:"), titleStyle.Render(format))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Size:"), titleStyle.Render(formatBytes(sizeBytes)))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Sets:"), titleStyle.Render(fmt.Sprintf("%d", sets)))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Cards:"), titleStyle.Render(formatNumber(int64(cards))))
	if hasMeta {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Metadata:"), titleStyle.Render("present"))
	} else {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Metadata:"), mutedStyle.Render("absent"))
	}
	fmt.Println()
}

// PrintWatching prints the watch-mode banner.
func PrintWatching(path string) {
	fmt.Printf("  %s %s\n", accentStyle.Render("⟳"), mutedStyle.Render("watching "+path))
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}
