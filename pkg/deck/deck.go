// Package deck parses deck lists and extracts their cards from a loaded
// archive into a standalone deck document.
package deck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
	"github.com/cardflow/cardflow/pkg/logging"
)

// Entry is one parsed deck list line.
type Entry struct {
	Quantity int
	Name     string
	SetCode  string
	Number   string
	Line     int
}

// Deck list line: "<qty> <name> (<SET>) <number>".
var lineRe = regexp.MustCompile(`^(\d+)\s+(.+?)\s+\(([A-Z0-9]+)\)\s+(\S+)$`)

// Section headers commonly found in exported deck lists.
var sectionHeaders = map[string]bool{
	"deck": true, "sideboard": true, "commander": true,
	"mainboard": true, "maybeboard": true, "companion": true,
}

// ParseList reads deck list entries from r. Blank lines, comments and
// section headers are skipped; lines that match none of those warn and are
// dropped. A list with no valid entries is an error.
func ParseList(r io.Reader, log logging.Logger) ([]Entry, error) {
	if log == nil {
		log = logging.Nop{}
	}

	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if sectionHeaders[strings.ToLower(line)] {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			log.Warning(fmt.Sprintf("line %d: unrecognized deck list line: %q", lineNo, line))
			continue
		}

		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			log.Warning(fmt.Sprintf("line %d: invalid quantity %q", lineNo, m[1]))
			continue
		}

		entries = append(entries, Entry{
			Quantity: qty,
			Name:     strings.TrimSpace(m[2]),
			SetCode:  m[3],
			Number:   m[4],
			Line:     lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, cferrors.Wrap(err, cferrors.CodeDeckFormat, "cannot read deck list")
	}
	if len(entries) == 0 {
		return nil, cferrors.New(cferrors.CodeEmptyDeck, "deck list contains no valid entries")
	}
	return entries, nil
}

// ParseFile reads a deck list from a file.
func ParseFile(path string, log logging.Logger) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cferrors.FileNotFound(path)
		}
		return nil, cferrors.Wrap(err, cferrors.CodeFileNotFound, "cannot open deck list").
			WithContext("path", path)
	}
	defer f.Close()
	return ParseList(f, log)
}
