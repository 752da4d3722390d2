// Package transcribe sends audio chunks to a speech-to-text model and
// returns the chunk-level transcription used as timing evidence.
package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-subtitle/internal/apierr"
	"github.com/alnah/go-subtitle/internal/audio"
	"github.com/alnah/go-subtitle/internal/lang"
	"github.com/alnah/go-subtitle/internal/track"
)

// DefaultModel is the speech model used when none is configured.
const DefaultModel = "gpt-4o-mini-transcribe"

// MaxRecommendedParallel is the recommended upper limit for concurrent
// requests. Higher values may trigger rate limiting.
const MaxRecommendedParallel = 10

// Retry delays; the retry count defaults to zero.
const (
	defaultBaseDelay = 1 * time.Second
	defaultMaxDelay  = 30 * time.Second
)

// Options configures a transcription request.
type Options struct {
	// Language is a language code; empty means auto-detect.
	Language string
	// Prompt biases the model towards expected vocabulary.
	Prompt string
}

// Transcriber transcribes one audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (string, error)
}

// audioTranscriber is the subset of *openai.Client used here.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes audio with the OpenAI transcription API.
type OpenAITranscriber struct {
	client     audioTranscriber
	model      string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Option configures an OpenAITranscriber.
type Option func(*OpenAITranscriber)

// WithModel sets the speech model.
func WithModel(model string) Option {
	return func(t *OpenAITranscriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithMaxRetries sets the number of retries for transient failures.
func WithMaxRetries(n int) Option {
	return func(t *OpenAITranscriber) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(t *OpenAITranscriber) {
		if base > 0 {
			t.baseDelay = base
		}
		if max > 0 {
			t.maxDelay = max
		}
	}
}

// NewOpenAITranscriber creates an OpenAITranscriber around client.
func NewOpenAITranscriber(client *openai.Client, opts ...Option) *OpenAITranscriber {
	return newTranscriber(client, opts...)
}

func newTranscriber(client audioTranscriber, opts ...Option) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client:    client,
		model:     DefaultModel,
		baseDelay: defaultBaseDelay,
		maxDelay:  defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe transcribes the audio file at audioPath.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (string, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Prompt:   opts.Prompt,
		Language: lang.BaseCode(opts.Language), // the API only accepts base codes
	}

	cfg := apierr.RetryConfig{MaxRetries: t.maxRetries, BaseDelay: t.baseDelay, MaxDelay: t.maxDelay}
	return apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return "", apierr.Classify(err)
		}
		return resp.Text, nil
	}, apierr.IsRetryable)
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeText lowercases s and collapses whitespace runs to one space.
func NormalizeText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(strings.ToLower(s), " "))
}

// TranscribeAll transcribes chunks concurrently, at most parallel at a
// time, and returns them in input order with normalized text and offsets
// in seconds. Any failure aborts the whole operation.
func TranscribeAll(
	ctx context.Context,
	chunks []audio.Chunk,
	t Transcriber,
	opts Options,
	parallel int,
	logger *zap.Logger,
) ([]track.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if parallel < 1 {
		parallel = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]track.Chunk, len(chunks))
	sem := make(chan struct{}, parallel)

	g, ctx := errgroup.WithContext(ctx)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			text, err := t.Transcribe(ctx, chunk.Path, opts)
			if err != nil {
				return fmt.Errorf("chunk %d (%s): %w", chunk.Index, filepath.Base(chunk.Path), err)
			}
			results[i] = track.Chunk{
				Index: chunk.Index,
				Start: chunk.Start.Seconds(),
				End:   chunk.End.Seconds(),
				Text:  NormalizeText(text),
			}
			logger.Debug("chunk transcribed",
				zap.Int("chunk", chunk.Index),
				zap.Int("chars", len([]rune(results[i].Text))))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
