// Package oracle adapts OpenAI-compatible chat models into the two
// untrusted oracles of the pipeline: the transcript splitter and the topic
// grouper. Replies are returned raw; validating them is the caller's job.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/apierr"
	"github.com/alnah/go-subtitle/internal/prompt"
)

// Splitter proposes caption breaks for a block of transcript text.
type Splitter interface {
	Split(ctx context.Context, text string) (string, error)
}

// Grouper proposes topic groups for a numbered cue listing.
type Grouper interface {
	Group(ctx context.Context, listing string, cueCount int) (string, error)
}

// chatCompleter is the subset of *openai.Client used here.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var (
	_ Splitter      = (*ChatOracle)(nil)
	_ Grouper       = (*ChatOracle)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

const (
	defaultBaseDelay = 1 * time.Second
	defaultMaxDelay  = 30 * time.Second
)

// ChatOracle answers split and group requests with a chat model.
// Calls are single-shot unless WithMaxRetries is set.
type ChatOracle struct {
	client     chatCompleter
	model      string
	split      prompt.SplitParams
	group      prompt.GroupParams
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     *zap.Logger
}

// Option configures a ChatOracle.
type Option func(*ChatOracle)

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(o *ChatOracle) {
		if model != "" {
			o.model = model
		}
	}
}

// WithSplitParams sets the limits quoted in the split prompt.
func WithSplitParams(p prompt.SplitParams) Option {
	return func(o *ChatOracle) { o.split = p }
}

// WithGroupParams sets the targets quoted in the group prompt.
// CueCount is filled per call.
func WithGroupParams(p prompt.GroupParams) Option {
	return func(o *ChatOracle) { o.group = p }
}

// WithMaxRetries enables retries of transient failures.
func WithMaxRetries(n int) Option {
	return func(o *ChatOracle) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(o *ChatOracle) {
		if base > 0 {
			o.baseDelay = base
		}
		if max > 0 {
			o.maxDelay = max
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *ChatOracle) {
		if l != nil {
			o.logger = l
		}
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(cc chatCompleter) Option {
	return func(o *ChatOracle) { o.client = cc }
}

// New creates a ChatOracle for provider using client.
func New(client *openai.Client, provider Provider, opts ...Option) *ChatOracle {
	o := &ChatOracle{
		client:    client,
		model:     provider.DefaultModel(),
		baseDelay: defaultBaseDelay,
		maxDelay:  defaultMaxDelay,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Model returns the configured chat model.
func (o *ChatOracle) Model() string { return o.model }

// Split sends one transcript batch and returns the raw double-newline
// delimited reply.
func (o *ChatOracle) Split(ctx context.Context, text string) (string, error) {
	return o.complete(ctx, "split", prompt.Split(o.split), text)
}

// Group sends the cue listing and returns the raw "label: a-b | topic" lines.
func (o *ChatOracle) Group(ctx context.Context, listing string, cueCount int) (string, error) {
	p := o.group
	p.CueCount = cueCount
	return o.complete(ctx, "group", prompt.Group(p), listing)
}

func (o *ChatOracle) complete(ctx context.Context, task, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	cfg := apierr.RetryConfig{
		MaxRetries: o.maxRetries,
		BaseDelay:  o.baseDelay,
		MaxDelay:   o.maxDelay,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			o.logger.Warn("oracle call failed, retrying",
				zap.String("task", task),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		},
	}
	start := time.Now()
	reply, err := apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		resp, err := o.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", apierr.Classify(err)
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return "", ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	}, apierr.IsRetryable)
	if err != nil {
		return "", fmt.Errorf("%s with %s: %w: %w", task, o.model, ErrOracleFailure, err)
	}

	o.logger.Debug("oracle replied",
		zap.String("task", task),
		zap.String("model", o.model),
		zap.Int("reply_chars", len([]rune(reply))),
		zap.Duration("elapsed", time.Since(start)))
	return reply, nil
}
