package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/audio"
	"github.com/alnah/go-subtitle/internal/track"
	"github.com/alnah/go-subtitle/internal/transcribe"
)

// AlignInput names what the align stage times cues against. A preloaded
// transcription wins over AudioPath. Duration, when positive, overrides the
// audio duration; with neither chunks nor audio, cues are allocated
// proportionally over Duration.
type AlignInput struct {
	AudioPath     string
	Transcription *track.TranscriptionDocument
	Duration      float64
}

// AlignResult is the outcome of the align stage. Transcription is set when
// the stage produced or reused one.
type AlignResult struct {
	Document      track.TimedDocument
	Transcription *track.TranscriptionDocument
	Stats         TimingStats
}

// Align times the split pieces.
func (p *Pipeline) Align(ctx context.Context, split track.SplitDocument, in AlignInput) (AlignResult, error) {
	log := p.logger.With(zap.String("stage", StageAlign.String()))

	var res AlignResult
	res.Transcription = in.Transcription
	if res.Transcription == nil && in.AudioPath != "" {
		doc, err := p.Transcribe(ctx, in.AudioPath)
		if err != nil {
			return AlignResult{}, err
		}
		res.Transcription = &doc
	}

	var chunks []track.Chunk
	total := in.Duration
	if res.Transcription != nil {
		chunks = res.Transcription.Chunks
		if total <= 0 {
			total = res.Transcription.AudioDuration
		}
	}
	if total <= 0 {
		return AlignResult{}, ErrNoTiming
	}

	cues := track.FromTexts(split.Texts())

	timed, stats, err := p.aligner.Align(cues, chunks, total)
	if err != nil {
		return AlignResult{}, fmt.Errorf("align %d cues over %.3fs: %w", len(cues), total, err)
	}

	res.Document = track.NewTimedDocument(timed, total)
	res.Stats = CueStats(timed)
	res.Stats.Fallback = stats.Fallback
	log.Info("cues aligned",
		zap.Int("cues", len(timed)),
		zap.Int("measured", stats.Measured),
		zap.Int("estimated", stats.Estimated),
		zap.Bool("fallback", stats.Fallback))
	return res, nil
}

// Transcribe chunks the audio and runs every chunk through the speech
// model. The probed audio duration replaces the end of the last chunk.
// Chunk files are removed before returning.
func (p *Pipeline) Transcribe(ctx context.Context, audioPath string) (track.TranscriptionDocument, error) {
	if p.transcriber == nil || p.chunker == nil {
		return track.TranscriptionDocument{}, ErrNoTranscriber
	}

	chunks, total, err := p.chunker.Chunk(ctx, audioPath)
	if err != nil {
		return track.TranscriptionDocument{}, err
	}
	defer func() {
		if err := audio.CleanupChunks(chunks); err != nil {
			p.logger.Warn("cannot remove audio chunks", zap.Error(err))
		}
	}()
	p.logger.Info("audio chunked",
		zap.Int("chunks", len(chunks)),
		zap.Float64("duration", total.Seconds()))

	out, err := transcribe.TranscribeAll(ctx, chunks, p.transcriber, p.speech, p.policy.Oracle.Parallel, p.logger)
	if err != nil {
		return track.TranscriptionDocument{}, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}

	doc := track.NewTranscriptionDocument(out)
	if total > 0 {
		doc.AudioDuration = total.Seconds()
	}
	return doc, nil
}
