package timing

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/track"
)

// Default search parameters for matching cue text in the transcription.
const (
	DefaultSimilarityFloor = 0.6
	DefaultSearchStep      = 5
	searchSpanFactor       = 3
	searchSpanCap          = 200
	searchWindowFactor     = 10
)

// Stats summarizes an alignment.
type Stats struct {
	Measured  int
	Estimated int
	// Fallback is set when anchors were found but discarded and the whole
	// track was allocated proportionally.
	Fallback bool
}

// Aligner matches cue text against transcription chunks. Cues whose text is
// found with enough similarity take the interpolated time of the match;
// the rest are allocated proportionally between those anchors.
type Aligner struct {
	policy Policy
	floor  float64
	step   int
	logger *zap.Logger
}

// AlignerOption configures an Aligner.
type AlignerOption func(*Aligner)

// WithPolicy sets the duration clamp bounds.
func WithPolicy(p Policy) AlignerOption {
	return func(a *Aligner) {
		a.policy = p
	}
}

// WithSimilarityFloor sets the minimum similarity a match must reach.
func WithSimilarityFloor(f float64) AlignerOption {
	return func(a *Aligner) {
		if f > 0 && f <= 1 {
			a.floor = f
		}
	}
}

// WithSearchStep sets the stride, in characters, of the match search.
func WithSearchStep(n int) AlignerOption {
	return func(a *Aligner) {
		if n > 0 {
			a.step = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) AlignerOption {
	return func(a *Aligner) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAligner creates an Aligner with default parameters.
func NewAligner(opts ...AlignerOption) *Aligner {
	a := &Aligner{
		policy: DefaultPolicy(),
		floor:  DefaultSimilarityFloor,
		step:   DefaultSearchStep,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// transcript is the concatenated chunk text with each chunk's rune offset.
type transcript struct {
	text    []rune
	offsets []int
	chunks  []track.Chunk
}

func newTranscript(chunks []track.Chunk) transcript {
	var b strings.Builder
	offsets := make([]int, len(chunks))
	pos := 0
	for i, c := range chunks {
		if i > 0 {
			b.WriteByte(' ')
			pos++
		}
		offsets[i] = pos
		b.WriteString(c.Text)
		pos += track.CharCount(c.Text)
	}
	return transcript{text: []rune(b.String()), offsets: offsets, chunks: chunks}
}

// timeAt converts a rune position into seconds by linear interpolation
// inside the chunk that owns it.
func (t transcript) timeAt(pos int) (float64, bool) {
	for i, c := range t.chunks {
		begin := t.offsets[i]
		n := track.CharCount(c.Text)
		if pos < begin || pos > begin+n {
			continue
		}
		if n == 0 {
			return c.Start, true
		}
		return c.Start + (c.End-c.Start)*float64(pos-begin)/float64(n), true
	}
	return 0, false
}

// span converts a rune range into a time range.
func (t transcript) span(begin, end int) (float64, float64, bool) {
	start, ok := t.timeAt(begin)
	if !ok {
		return 0, 0, false
	}
	stop, ok := t.timeAt(end)
	if !ok {
		return 0, 0, false
	}
	return start, stop, true
}

// findSimilar searches text[from:] for the window most similar to target.
// The search covers min(len(target)*3, 200)*10 runes in steps of step runes.
// It returns the matched rune range and whether any window reached floor.
func findSimilar(target, text []rune, from, step int, floor float64) (int, int, bool) {
	if len(target) == 0 || from >= len(text) {
		return 0, 0, false
	}
	window := min(len(target)*searchSpanFactor, searchSpanCap) * searchWindowFactor
	area := text[from:min(from+window, len(text))]

	best := 0.0
	begin, found := 0, false
	for i := 0; i+len(target) <= len(area); i += step {
		r := Ratio(target, area[i:i+len(target)])
		if r >= floor && r > best {
			best, begin, found = r, i, true
		}
	}
	if !found {
		return 0, 0, false
	}
	return from + begin, from + begin + len(target), true
}

var spaces = regexp.MustCompile(`\s+`)

// matchKey normalizes cue text the way the speech model's text is normalized.
func matchKey(s string) []rune {
	return []rune(spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " "))
}

// anchor is a cue whose timing was measured.
type anchor struct {
	start, end float64
}

// Align times cues against chunks over [0, total].
//
// Matching walks the transcript forward: each cue is searched from the end
// of the previous match. A match becomes an anchor only if its duration lies
// within the policy bounds and it does not start before the previous anchor
// ends. Runs of unanchored cues fill the gaps between anchors proportionally.
// With no anchors, or if a gap cannot hold its run, the whole track falls
// back to Allocate, which never fails on a positive total. The last cue
// always ends at total.
func (a *Aligner) Align(cues []track.Cue, chunks []track.Chunk, total float64) ([]track.Cue, Stats, error) {
	if len(cues) == 0 {
		return nil, Stats{}, nil
	}

	anchors := a.anchors(cues, chunks, total)
	if len(anchors) > 0 {
		out, err := a.fill(cues, anchors, total)
		if err == nil {
			return out, countConfidence(out), nil
		}
		a.logger.Warn("anchored alignment rejected, using proportional allocation",
			zap.Int("anchors", len(anchors)), zap.Error(err))
	} else {
		a.logger.Info("no cue matched the transcription, using proportional allocation",
			zap.Float64("similarity_floor", a.floor))
	}

	out, squeezed, err := allocateBetween(cues, 0, total, a.policy)
	if err != nil {
		return nil, Stats{}, err
	}
	if squeezed {
		a.logger.Warn("minimum cue durations exceed the audio, durations left unclamped",
			zap.Int("cues", len(cues)), zap.Float64("total", total),
			zap.Float64("min_duration", a.policy.MinDuration))
	}
	stats := countConfidence(out)
	stats.Fallback = len(anchors) > 0
	return out, stats, nil
}

// anchors returns measured spans keyed by cue position.
func (a *Aligner) anchors(cues []track.Cue, chunks []track.Chunk, total float64) map[int]anchor {
	found := make(map[int]anchor)
	if len(chunks) == 0 {
		return found
	}

	tr := newTranscript(chunks)
	cursor := 0
	lastEnd := 0.0
	for i, c := range cues {
		begin, end, ok := findSimilar(matchKey(c.FlatText()), tr.text, cursor, a.step, a.floor)
		if !ok {
			continue
		}
		cursor = end

		start, stop, ok := tr.span(begin, end)
		d := stop - start
		switch {
		case !ok:
		case start < lastEnd, stop > total:
			a.logger.Debug("match out of order", zap.Int("cue_index", c.Index))
		case d < a.policy.MinDuration, d > a.policy.MaxDuration:
			a.logger.Debug("match duration out of bounds", zap.Int("cue_index", c.Index), zap.Float64("duration", d))
		default:
			found[i] = anchor{start: start, end: stop}
			lastEnd = stop
		}
	}
	return found
}

// fill builds the final track from anchors and proportional gap runs.
func (a *Aligner) fill(cues []track.Cue, anchors map[int]anchor, total float64) ([]track.Cue, error) {
	out := make([]track.Cue, 0, len(cues))
	gapStart := 0.0
	run := []track.Cue{}

	flush := func(gapEnd float64) error {
		if len(run) == 0 {
			return nil
		}
		placed, squeezed, err := allocateBetween(run, gapStart, gapEnd, a.policy)
		if err != nil {
			return err
		}
		if squeezed {
			return fmt.Errorf("%d cues in %.3fs gap: %w", len(run), gapEnd-gapStart, ErrDurationExhausted)
		}
		out = append(out, placed...)
		run = run[:0]
		return nil
	}

	for i, c := range cues {
		an, ok := anchors[i]
		if !ok {
			run = append(run, c)
			continue
		}
		if err := flush(an.start); err != nil {
			return nil, err
		}
		c.Start, c.End = an.start, an.end
		c.Confidence = track.ConfidenceMeasured
		out = append(out, c)
		gapStart = an.end
	}
	if err := flush(total); err != nil {
		return nil, err
	}

	last := &out[len(out)-1]
	if last.Confidence == track.ConfidenceMeasured {
		if total <= last.Start {
			return nil, ErrDurationExhausted
		}
		last.End = total
	}
	return out, nil
}

func countConfidence(cues []track.Cue) Stats {
	var s Stats
	for _, c := range cues {
		if c.Confidence == track.ConfidenceMeasured {
			s.Measured++
		} else {
			s.Estimated++
		}
	}
	return s
}
