package pipeline

import (
	"strings"

	"github.com/alnah/go-subtitle/internal/segment"
	"github.com/alnah/go-subtitle/internal/track"
)

// Pieces summarizes the size of caption texts.
type Pieces struct {
	Count    int
	AvgChars float64
	MaxChars int
	MaxLines int
	// OverLimit counts pieces that break the segment limits.
	OverLimit int
}

// SplitStats summarizes a split run.
type SplitStats struct {
	Batches         int
	FallbackBatches int
	Resegmented     int
	Pieces          Pieces
}

// PieceStats measures texts against limits. Characters exclude line breaks.
func PieceStats(texts []string, limits segment.Limits) Pieces {
	var s Pieces
	if len(texts) == 0 {
		return s
	}
	total := 0
	for _, t := range texts {
		chars := track.CharCount(strings.ReplaceAll(t, "\n", ""))
		lines := strings.Count(t, "\n") + 1
		total += chars
		s.MaxChars = max(s.MaxChars, chars)
		s.MaxLines = max(s.MaxLines, lines)
		if !limits.Conforms(t) {
			s.OverLimit++
		}
	}
	s.Count = len(texts)
	s.AvgChars = float64(total) / float64(len(texts))
	return s
}

// TimingStats summarizes timed cues.
type TimingStats struct {
	Cues        int
	Measured    int
	Estimated   int
	Fallback    bool
	AvgDuration float64
	MinDuration float64
	MaxDuration float64
	Total       float64
}

// CueStats measures timed cues.
func CueStats(cues []track.Cue) TimingStats {
	s := TimingStats{Cues: len(cues)}
	if len(cues) == 0 {
		return s
	}
	s.MinDuration = cues[0].Duration()
	var sum float64
	for _, c := range cues {
		d := c.Duration()
		sum += d
		s.MinDuration = min(s.MinDuration, d)
		s.MaxDuration = max(s.MaxDuration, d)
		switch c.Confidence {
		case track.ConfidenceMeasured:
			s.Measured++
		case track.ConfidenceEstimated:
			s.Estimated++
		}
	}
	s.AvgDuration = sum / float64(len(cues))
	s.Total = cues[len(cues)-1].End
	return s
}

// GroupStats summarizes reconciled groups.
type GroupStats struct {
	Groups      int
	Accepted    int
	Synthesized int
	Skipped     int
	ParseSkips  int
	AvgDuration float64
	AvgCues     float64
}

func groupStats(groups []track.Group) GroupStats {
	s := GroupStats{Groups: len(groups)}
	if len(groups) == 0 {
		return s
	}
	var dur float64
	var cues int
	for _, g := range groups {
		dur += g.Duration
		cues += g.SubtitleCount
	}
	s.AvgDuration = dur / float64(len(groups))
	s.AvgCues = float64(cues) / float64(len(groups))
	return s
}
