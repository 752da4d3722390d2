package group

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-subtitle/internal/track"
)

// ErrMalformedTSV indicates a group listing line is not "start_ms<TAB>text".
var ErrMalformedTSV = errors.New("malformed group listing")

// Listing renders cues for the grouping oracle, one per line:
// "<n>. [<start>s-<end>s] <text>" with n 1-based and text flattened.
func Listing(cues []track.Cue) string {
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d. [%.1fs-%.1fs] %s\n", i+1, c.Start, c.End, c.FlatText())
	}
	return b.String()
}

// Entry is one line of the tab-separated group listing.
type Entry struct {
	StartMillis int64
	Text        string
}

// FormatTSV renders one "start_ms<TAB>combined_text" line per group.
// Start is truncated to whole milliseconds. Tabs and line breaks in the
// text become spaces.
func FormatTSV(groups []track.Group) string {
	clean := strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")
	lines := make([]string, len(groups))
	for i, g := range groups {
		lines[i] = strconv.FormatInt(g.StartMillis(), 10) + "\t" + clean.Replace(g.CombinedText)
	}
	return strings.Join(lines, "\n")
}

// ReadTSV parses a listing written by FormatTSV. Blank lines are ignored.
func ReadTSV(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		ms, text, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: missing tab: %w", n, ErrMalformedTSV)
		}
		start, err := strconv.ParseInt(ms, 10, 64)
		if err != nil || start < 0 {
			return nil, fmt.Errorf("line %d: start %q: %w", n, ms, ErrMalformedTSV)
		}
		entries = append(entries, Entry{StartMillis: start, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read group listing: %w", err)
	}
	return entries, nil
}
