// Package timing assigns start and end times to ordered caption cues.
//
// Allocate estimates timing from text length alone. Aligner anchors cues on
// a chunked speech transcription where the text can be found, and falls back
// to Allocate where it cannot.
package timing

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-subtitle/internal/track"
)

// Default clamp bounds for a proportional cue duration, in seconds.
const (
	DefaultMinDuration = 0.5
	DefaultMaxDuration = 5.0
)

// Policy bounds the duration of an estimated cue.
type Policy struct {
	MinDuration float64
	MaxDuration float64
}

// DefaultPolicy returns the standard clamp bounds.
func DefaultPolicy() Policy {
	return Policy{MinDuration: DefaultMinDuration, MaxDuration: DefaultMaxDuration}
}

// clamp bounds d to [MinDuration, MaxDuration].
func (p Policy) clamp(d float64) float64 {
	return max(p.MinDuration, min(d, p.MaxDuration))
}

// weight is the length used for proportional allocation.
func weight(text string) int {
	return track.CharCount(norm.NFC.String(text))
}

// clock is the allocation accumulator: the time at which the next cue starts.
type clock float64

// place assigns [now, now+share clamped] to c and returns the advanced clock.
func (p Policy) place(now clock, c track.Cue, share float64) (track.Cue, clock) {
	c.Start = float64(now)
	c.End = c.Start + p.clamp(share)
	c.Confidence = track.ConfidenceEstimated
	return c, clock(c.End)
}

// Allocate assigns contiguous length-proportional timing to cues over
// [0, total]. Each cue gets len/totalLen*total seconds clamped to the
// policy bounds; the last cue always ends exactly at total. Every cue is
// marked estimated. Index and Text are preserved.
//
// When the clamped durations of the leading cues leave no time for the last
// one, the clamp is dropped and every cue gets its plain proportional share.
// Those cues may run shorter than MinDuration; caption repair reports them.
func Allocate(cues []track.Cue, total float64, p Policy) ([]track.Cue, error) {
	out, _, err := allocateBetween(cues, 0, total, p)
	return out, err
}

// allocateBetween allocates cues over [from, to]; the last cue ends exactly
// at to. squeezed reports that the clamp was dropped to fit the span.
func allocateBetween(cues []track.Cue, from, to float64, p Policy) (out []track.Cue, squeezed bool, err error) {
	if len(cues) == 0 {
		return nil, false, nil
	}
	span := to - from
	if span <= 0 {
		return nil, false, fmt.Errorf("%.3fs: %w", span, ErrInvalidDuration)
	}

	weights := make([]int, len(cues))
	sum := 0
	for i, c := range cues {
		weights[i] = weight(c.Text)
		sum += weights[i]
	}

	share := func(i int) float64 {
		if sum == 0 {
			return span / float64(len(cues))
		}
		return float64(weights[i]) / float64(sum) * span
	}

	out = make([]track.Cue, len(cues))
	now := clock(from)
	for i, c := range cues {
		out[i], now = p.place(now, c, share(i))
	}

	last := &out[len(out)-1]
	last.End = to
	if last.End > last.Start {
		return out, false, nil
	}

	// Every cue gets at least one unit of weight so none collapses to zero.
	sum = 0
	for i := range weights {
		weights[i] = max(weights[i], 1)
		sum += weights[i]
	}
	free := Policy{MinDuration: 0, MaxDuration: span}
	now = clock(from)
	for i, c := range cues {
		out[i], now = free.place(now, c, share(i))
	}
	out[len(out)-1].End = to
	return out, true, nil
}
