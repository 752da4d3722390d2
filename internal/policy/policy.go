// Package policy holds the tunable numeric constants of the pipeline and
// loads overrides from a TOML file.
package policy

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/go-subtitle/internal/group"
	"github.com/alnah/go-subtitle/internal/segment"
	"github.com/alnah/go-subtitle/internal/timing"
	"github.com/alnah/go-subtitle/internal/webvtt"
)

//go:embed sample_policy.toml
var sample []byte

// ErrInvalidPolicy indicates a policy file that cannot be used.
var ErrInvalidPolicy = errors.New("invalid policy")

// Segment bounds caption pieces.
type Segment struct {
	MaxLineChars int  `toml:"max_line_chars"`
	MaxLines     int  `toml:"max_lines"`
	BufferChars  int  `toml:"buffer_chars"`
	Strict       bool `toml:"strict"`
}

// Split configures the oracle split stage.
type Split struct {
	BatchLines int `toml:"batch_lines"`
}

// Timing configures alignment and proportional allocation.
type Timing struct {
	MinDuration     float64 `toml:"min_duration"`
	MaxDuration     float64 `toml:"max_duration"`
	SimilarityFloor float64 `toml:"similarity_floor"`
	SearchStep      int     `toml:"search_step"`
}

// Caption configures WebVTT repair.
type Caption struct {
	MinDuration float64 `toml:"min_duration"`
}

// Group configures oracle grouping and reconciliation.
type Group struct {
	MinDuration    float64 `toml:"min_duration"`
	FillerTopic    string  `toml:"filler_topic"`
	TargetMin      int     `toml:"target_min"`
	TargetMax      int     `toml:"target_max"`
	SpanMinSeconds int     `toml:"span_min_seconds"`
	SpanMaxSeconds int     `toml:"span_max_seconds"`
}

// Audio configures transcription chunking.
type Audio struct {
	ChunkSeconds int `toml:"chunk_seconds"`
	SampleRate   int `toml:"sample_rate"`
}

// Oracle configures calls to remote models.
type Oracle struct {
	MaxRetries int `toml:"max_retries"`
	Parallel   int `toml:"parallel"`
}

// Policy is the full set of tunables.
type Policy struct {
	Segment Segment `toml:"segment"`
	Split   Split   `toml:"split"`
	Timing  Timing  `toml:"timing"`
	Caption Caption `toml:"caption"`
	Group   Group   `toml:"group"`
	Audio   Audio   `toml:"audio"`
	Oracle  Oracle  `toml:"oracle"`
}

// Default returns the built-in policy.
func Default() Policy {
	l := segment.DefaultLimits()
	tp := timing.DefaultPolicy()
	gp := group.DefaultPolicy()
	return Policy{
		Segment: Segment{MaxLineChars: l.MaxLineChars, MaxLines: l.MaxLines, BufferChars: l.BufferChars},
		Split:   Split{BatchLines: 20},
		Timing: Timing{
			MinDuration:     tp.MinDuration,
			MaxDuration:     tp.MaxDuration,
			SimilarityFloor: timing.DefaultSimilarityFloor,
			SearchStep:      timing.DefaultSearchStep,
		},
		Caption: Caption{MinDuration: webvtt.DefaultMinDuration},
		Group: Group{
			MinDuration:    gp.MinDuration,
			FillerTopic:    gp.FillerTopic,
			TargetMin:      12,
			TargetMax:      18,
			SpanMinSeconds: 15,
			SpanMaxSeconds: 45,
		},
		Audio:  Audio{ChunkSeconds: 30, SampleRate: 16000},
		Oracle: Oracle{MaxRetries: 0, Parallel: 3},
	}
}

// Load decodes path over the defaults. An empty path returns Default.
// Unknown keys are rejected so typos do not pass silently.
func Load(path string) (Policy, error) {
	p := Default()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied policy path
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	if err := Decode(data, &p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Decode merges TOML data into p and validates the result.
func Decode(data []byte, p *Policy) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return fmt.Errorf("%w: %s", ErrInvalidPolicy, strictErr.String())
		}
		return fmt.Errorf("%w: parse: %v", ErrInvalidPolicy, err)
	}
	return p.Validate()
}

// Validate checks ranges and cross-field ordering.
func (p Policy) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(p.Segment.MaxLineChars > 0, "segment.max_line_chars must be positive")
	check(p.Segment.MaxLines > 0, "segment.max_lines must be positive")
	check(p.Segment.BufferChars > 0 && p.Segment.BufferChars <= p.Segment.MaxLineChars,
		"segment.buffer_chars must be in 1..max_line_chars")
	check(p.Split.BatchLines > 0, "split.batch_lines must be positive")
	check(p.Timing.MinDuration > 0, "timing.min_duration must be positive")
	check(p.Timing.MaxDuration >= p.Timing.MinDuration, "timing.max_duration must be >= min_duration")
	check(p.Timing.SimilarityFloor > 0 && p.Timing.SimilarityFloor <= 1, "timing.similarity_floor must be in (0, 1]")
	check(p.Timing.SearchStep > 0, "timing.search_step must be positive")
	check(p.Caption.MinDuration >= 0, "caption.min_duration must not be negative")
	check(p.Group.MinDuration >= 0, "group.min_duration must not be negative")
	check(strings.TrimSpace(p.Group.FillerTopic) != "", "group.filler_topic must not be empty")
	check(p.Group.TargetMin > 0 && p.Group.TargetMax >= p.Group.TargetMin, "group.target_min/target_max out of order")
	check(p.Group.SpanMinSeconds > 0 && p.Group.SpanMaxSeconds >= p.Group.SpanMinSeconds,
		"group.span_min_seconds/span_max_seconds out of order")
	check(p.Audio.ChunkSeconds > 0, "audio.chunk_seconds must be positive")
	check(p.Audio.SampleRate > 0, "audio.sample_rate must be positive")
	check(p.Oracle.MaxRetries >= 0, "oracle.max_retries must not be negative")
	check(p.Oracle.Parallel > 0, "oracle.parallel must be positive")

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, errors.Join(errs...))
	}
	return nil
}

// SegmentLimits converts the segment section for the segmenter.
func (p Policy) SegmentLimits() segment.Limits {
	return segment.Limits{
		MaxLineChars: p.Segment.MaxLineChars,
		MaxLines:     p.Segment.MaxLines,
		BufferChars:  p.Segment.BufferChars,
	}
}

// TimingPolicy converts the timing clamp bounds.
func (p Policy) TimingPolicy() timing.Policy {
	return timing.Policy{MinDuration: p.Timing.MinDuration, MaxDuration: p.Timing.MaxDuration}
}

// GroupPolicy converts the group reconciliation settings.
func (p Policy) GroupPolicy() group.Policy {
	return group.Policy{MinDuration: p.Group.MinDuration, FillerTopic: p.Group.FillerTopic}
}

// Sample returns the commented sample policy file.
func Sample() []byte {
	return bytes.Clone(sample)
}

// WriteSample writes the sample policy to path unless it already exists.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("policy file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("create policy directory: %w", err)
	}
	if err := os.WriteFile(path, sample, 0600); err != nil {
		return fmt.Errorf("write sample policy: %w", err)
	}
	return nil
}
