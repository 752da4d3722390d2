// Package pipeline runs the subtitle stages: split a transcript into
// caption pieces, align them against the audio, serialize a WebVTT track
// and group cues into topic windows.
//
// Oracles and the speech model are capabilities passed in as interfaces.
// A nil Splitter means rule-based segmentation only; a nil Grouper means
// the whole track becomes filler groups.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/audio"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/policy"
	"github.com/alnah/go-subtitle/internal/segment"
	"github.com/alnah/go-subtitle/internal/timing"
	"github.com/alnah/go-subtitle/internal/transcribe"
)

// AudioChunker cuts an audio file into transcription chunks.
type AudioChunker interface {
	Chunk(ctx context.Context, audioPath string) ([]audio.Chunk, time.Duration, error)
}

// Pipeline holds the policy and capabilities shared by every stage.
type Pipeline struct {
	policy      policy.Policy
	splitter    oracle.Splitter
	grouper     oracle.Grouper
	transcriber transcribe.Transcriber
	chunker     AudioChunker
	speech      transcribe.Options
	dumpDir     string
	runID       string
	logger      *zap.Logger

	segmenter *segment.Segmenter
	aligner   *timing.Aligner
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSplitter sets the split oracle.
func WithSplitter(s oracle.Splitter) Option {
	return func(p *Pipeline) { p.splitter = s }
}

// WithGrouper sets the grouping oracle.
func WithGrouper(g oracle.Grouper) Option {
	return func(p *Pipeline) { p.grouper = g }
}

// WithSpeech sets the transcriber and chunker used when aligning from audio.
func WithSpeech(t transcribe.Transcriber, c AudioChunker, opts transcribe.Options) Option {
	return func(p *Pipeline) {
		p.transcriber = t
		p.chunker = c
		p.speech = opts
	}
}

// WithDumpDir sets where integrity dumps are written. Empty disables dumps.
func WithDumpDir(dir string) Option {
	return func(p *Pipeline) { p.dumpDir = dir }
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.runID = id
		}
	}
}

// WithLogger sets the logger. Every entry carries the run ID.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New builds a Pipeline for the given policy.
func New(pol policy.Policy, opts ...Option) *Pipeline {
	p := &Pipeline{
		policy: pol,
		runID:  uuid.NewString(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("run_id", p.runID))

	p.segmenter = segment.New(
		segment.WithLimits(pol.SegmentLimits()),
		segment.WithStrict(pol.Segment.Strict),
		segment.WithLogger(p.logger),
	)
	p.aligner = timing.NewAligner(
		timing.WithPolicy(pol.TimingPolicy()),
		timing.WithSimilarityFloor(pol.Timing.SimilarityFloor),
		timing.WithSearchStep(pol.Timing.SearchStep),
		timing.WithLogger(p.logger),
	)
	return p
}

// RunID identifies this pipeline in logs and dump names.
func (p *Pipeline) RunID() string { return p.runID }

// Policy returns the policy the pipeline was built with.
func (p *Pipeline) Policy() policy.Policy { return p.policy }
