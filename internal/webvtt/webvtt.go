// Package webvtt serializes timed cues as WebVTT, repairs timing overlaps
// before writing, and structurally checks serialized tracks.
package webvtt

import (
	"strconv"
	"strings"

	"github.com/alnah/go-subtitle/internal/track"
)

// Header is the first line of every WebVTT file.
const Header = "WEBVTT"

// DefaultMinDuration is the shortest duration a repaired cue may have, in seconds.
const DefaultMinDuration = 0.5

// Repair makes cues strictly sequential. Working in milliseconds, in index
// order: a cue shorter than minDuration (including start >= end) is
// extended to start+minDuration; a cue starting before the previous repaired
// end is pulled forward to that end and extended again if needed.
// Repair is idempotent. The input is not modified.
func Repair(cues []track.Cue, minDuration float64) []track.Cue {
	minMs := millis(minDuration)
	out := make([]track.Cue, len(cues))

	var prevEnd int64
	for i, c := range cues {
		start := max(millis(c.Start), 0)
		end := millis(c.End)

		if i > 0 && start < prevEnd {
			start = prevEnd
		}
		if end-start < minMs {
			end = start + minMs
		}

		c.Start, c.End = seconds(start), seconds(end)
		out[i] = c
		prevEnd = end
	}
	return out
}

// Serialize renders cues as a WebVTT document: the header, a blank line,
// then one block per cue holding its 1-based sequence number, the timing
// line and the text, blocks separated by blank lines.
func Serialize(cues []track.Cue) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")

	for i, c := range cues {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n")
		b.WriteString(FormatTimestamp(c.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(c.End))
		b.WriteString("\n")
		b.WriteString(cueText(c.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// cueText drops blank lines, which would end the block early.
func cueText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
