// Package track defines the data shared by every pipeline stage: cues,
// transcription chunks, groups and the JSON documents that carry them
// between stages.
//
// Stage documents are the only contract between stages. They round-trip
// losslessly through ReadJSON and WriteJSON.
package track

import (
	"strings"
	"unicode/utf8"
)

// Confidence tells downstream consumers how a cue's timing was obtained.
type Confidence string

const (
	// ConfidenceEstimated marks timing derived from text length alone.
	ConfidenceEstimated Confidence = "estimated"

	// ConfidenceMeasured marks timing anchored on a matched transcription span.
	ConfidenceMeasured Confidence = "measured"
)

// Cue is one timed caption unit. Index is 1-based.
// Text may hold up to three physical lines separated by "\n".
type Cue struct {
	Index      int        `json:"index"`
	Text       string     `json:"text"`
	Start      float64    `json:"start"`
	End        float64    `json:"end"`
	Confidence Confidence `json:"confidence,omitempty"`
}

// Duration returns End - Start in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// Lines returns the physical lines of the cue text.
func (c Cue) Lines() []string {
	return strings.Split(c.Text, "\n")
}

// FlatText returns the cue text with internal line breaks replaced by spaces.
func (c Cue) FlatText() string {
	return Flatten(c.Text)
}

// Flatten replaces line breaks with single spaces.
func Flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", " ")
}

// CharCount returns the number of characters (runes) in s.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// Chunk is one time-stamped piece of speech-model output.
// Chunks are contiguous, non-overlapping and cover the whole audio.
type Chunk struct {
	Index int     `json:"chunk_index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Group is a contiguous (or reconciled) window of cues sharing one topic.
// SubtitleIndices are 0-based positions into the cue list.
type Group struct {
	GroupID         int     `json:"group_id"`
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	Duration        float64 `json:"duration"`
	SubtitleCount   int     `json:"subtitle_count"`
	SubtitleIndices []int   `json:"subtitle_indices"`
	CombinedText    string  `json:"combined_text"`
	Topic           string  `json:"topic"`
	Synthesized     bool    `json:"synthesized"`
}

// StartMillis returns the group start in whole milliseconds, truncated.
func (g Group) StartMillis() int64 {
	return int64(g.StartTime * 1000)
}

// NewGroup builds a group spanning cues[indices[0]] .. cues[indices[len-1]].
// indices must be non-empty, ascending and in range.
func NewGroup(cues []Cue, indices []int, topic string) Group {
	first := cues[indices[0]]
	last := cues[indices[len(indices)-1]]

	texts := make([]string, 0, len(indices))
	for _, idx := range indices {
		texts = append(texts, cues[idx].FlatText())
	}

	return Group{
		StartTime:       first.Start,
		EndTime:         last.End,
		Duration:        last.End - first.Start,
		SubtitleCount:   len(indices),
		SubtitleIndices: append([]int(nil), indices...),
		CombinedText:    strings.Join(texts, " "),
		Topic:           topic,
	}
}

// TotalDuration returns the end of the last cue, or 0 for an empty track.
func TotalDuration(cues []Cue) float64 {
	if len(cues) == 0 {
		return 0
	}
	return cues[len(cues)-1].End
}

// FromTexts builds untimed cues numbered from 1.
func FromTexts(texts []string) []Cue {
	cues := make([]Cue, len(texts))
	for i, t := range texts {
		cues[i] = Cue{Index: i + 1, Text: t}
	}
	return cues
}
