package webvtt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-subtitle/internal/track"
)

// Report is the outcome of a structural check. Issues are human-readable
// and collected without stopping the scan.
type Report struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
	Count  int      `json:"count"`
}

func (r *Report) add(format string, args ...any) {
	r.Valid = false
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// block is one blank-line-separated group of lines after the header.
type block struct {
	line  int // 1-based line number of the first line
	lines []string
}

func splitBlocks(content string) (string, []block) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var blocks []block
	var cur *block
	for i, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			cur = nil
			continue
		}
		if cur == nil {
			blocks = append(blocks, block{line: i + 2})
			cur = &blocks[len(blocks)-1]
		}
		cur.lines = append(cur.lines, strings.TrimRight(l, " \t"))
	}
	return lines[0], blocks
}

// isMetadata reports whether b is a NOTE, STYLE or REGION block.
func isMetadata(b block) bool {
	first := b.lines[0]
	for _, kw := range []string{"NOTE", "STYLE", "REGION"} {
		if first == kw || strings.HasPrefix(first, kw+" ") || strings.HasPrefix(first, kw+"\t") {
			return true
		}
	}
	return false
}

// parsedCue is a cue read back from a document, with where it came from.
type parsedCue struct {
	cue    track.Cue
	number int
	timed  bool
}

// Check verifies the structure of a serialized track: the header line, and
// for every cue block a sequence number, a "-->" timing line with valid
// timestamps, a non-empty text, start before end and no overlap with the
// previous cue. It never fails; problems are reported as issues.
func Check(content string) Report {
	r := Report{Valid: true}

	header, blocks := splitBlocks(content)
	if header != Header && !strings.HasPrefix(header, Header+" ") && !strings.HasPrefix(header, Header+"\t") {
		r.add("first line is %q, want %q", truncate(header), Header)
	}

	var prevEnd float64
	havePrev := false
	for _, b := range blocks {
		if isMetadata(b) {
			continue
		}
		r.Count++
		n := r.Count

		pc, issues := parseBlock(b, n)
		for _, issue := range issues {
			r.add("%s", issue)
		}
		if !pc.timed {
			continue
		}
		if havePrev && pc.cue.Start < prevEnd {
			r.add("cue %d (line %d): starts at %s before previous cue ends at %s",
				n, b.line, FormatTimestamp(pc.cue.Start), FormatTimestamp(prevEnd))
		}
		prevEnd, havePrev = pc.cue.End, true
	}

	return r
}

// parseBlock reads one cue block. n is the expected sequence number.
func parseBlock(b block, n int) (parsedCue, []string) {
	var issues []string
	pc := parsedCue{number: n}
	lines := b.lines

	timing := -1
	for i, l := range lines {
		if strings.Contains(l, "-->") {
			timing = i
			break
		}
	}

	if timing == -1 {
		issues = append(issues, fmt.Sprintf("cue %d (line %d): missing \"-->\" timing line", n, b.line))
		return pc, issues
	}

	if timing == 0 {
		issues = append(issues, fmt.Sprintf("cue %d (line %d): missing sequence number", n, b.line))
	} else if seq, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil || seq != n {
		issues = append(issues, fmt.Sprintf("cue %d (line %d): sequence number %q, want %d", n, b.line, truncate(lines[0]), n))
	}

	start, end, err := parseTiming(lines[timing])
	if err != nil {
		issues = append(issues, fmt.Sprintf("cue %d (line %d): %v", n, b.line+timing, err))
	} else {
		pc.cue.Start, pc.cue.End, pc.timed = start, end, true
		if start >= end {
			issues = append(issues, fmt.Sprintf("cue %d (line %d): start %s is not before end %s",
				n, b.line+timing, FormatTimestamp(start), FormatTimestamp(end)))
		}
	}

	text := lines[timing+1:]
	if len(text) == 0 {
		issues = append(issues, fmt.Sprintf("cue %d (line %d): empty text", n, b.line))
	}
	pc.cue.Index = n
	pc.cue.Text = strings.Join(text, "\n")

	return pc, issues
}

// parseTiming reads "start --> end [settings]".
func parseTiming(line string) (float64, float64, error) {
	left, right, _ := strings.Cut(line, "-->")
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("timing line %q has no end time: %w", truncate(line), ErrInvalidTimestamp)
	}
	start, err := ParseTimestamp(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, fmt.Errorf("start time: %w", err)
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("end time: %w", err)
	}
	return start, end, nil
}

// Parse reads cues back from a document, skipping blocks that cannot be
// timed. It is best-effort, like Check.
func Parse(content string) []track.Cue {
	_, blocks := splitBlocks(content)
	var cues []track.Cue
	n := 0
	for _, b := range blocks {
		if isMetadata(b) {
			continue
		}
		n++
		pc, _ := parseBlock(b, n)
		if pc.timed {
			cues = append(cues, pc.cue)
		}
	}
	return cues
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= 40 {
		return s
	}
	return string(r[:40]) + "..."
}
