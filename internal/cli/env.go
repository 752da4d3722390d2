package cli

import (
	"context"
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/audio"
	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/ffmpeg"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// Logger and PolicyFile are filled in by the root command from the global
// flags before any subcommand runs.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Set from global flags
	Logger     *zap.Logger
	PolicyFile string

	// Factories for domain objects
	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	OracleFactory      OracleFactory
	TranscriberFactory TranscriberFactory
	ChunkerFactory     ChunkerFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string, logger *zap.Logger)
}

// ConfigLoader loads user configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Oracle is a language model able to both split and group.
type Oracle interface {
	oracle.Splitter
	oracle.Grouper
	Model() string
}

// OracleFactory creates oracles for a provider.
type OracleFactory interface {
	NewOracle(provider oracle.Provider, apiKey string, opts ...oracle.Option) (Oracle, error)
}

// TranscriberFactory creates speech-model transcribers.
type TranscriberFactory interface {
	NewTranscriber(apiKey string, opts ...transcribe.Option) transcribe.Transcriber
}

// ChunkerFactory creates audio chunkers.
type ChunkerFactory interface {
	NewChunker(ffmpegPath string, opts ...audio.Option) (pipeline.AudioChunker, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) { e.Now = fn }
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) { e.FFmpegResolver = r }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithOracleFactory sets the oracle factory.
func WithOracleFactory(f OracleFactory) EnvOption {
	return func(e *Env) { e.OracleFactory = f }
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) { e.TranscriberFactory = f }
}

// WithChunkerFactory sets the chunker factory.
func WithChunkerFactory(f ChunkerFactory) EnvOption {
	return func(e *Env) { e.ChunkerFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		Now:                time.Now,
		Logger:             zap.NewNop(),
		FFmpegResolver:     &defaultFFmpegResolver{},
		ConfigLoader:       &defaultConfigLoader{},
		OracleFactory:      &defaultOracleFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
		ChunkerFactory:     &defaultChunkerFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// logger returns the configured logger, or a no-op one.
func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	return ffmpeg.NewResolver().Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string, logger *zap.Logger) {
	ffmpeg.CheckVersion(ctx, ffmpeg.NewExecutor(), ffmpegPath, logger)
}

type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

type defaultOracleFactory struct{}

func (defaultOracleFactory) NewOracle(provider oracle.Provider, apiKey string, opts ...oracle.Option) (Oracle, error) {
	client, err := provider.NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	return oracle.New(client, provider, opts...), nil
}

type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey string, opts ...transcribe.Option) transcribe.Transcriber {
	return transcribe.NewOpenAITranscriber(openai.NewClient(apiKey), opts...)
}

type defaultChunkerFactory struct{}

func (defaultChunkerFactory) NewChunker(ffmpegPath string, opts ...audio.Option) (pipeline.AudioChunker, error) {
	return audio.NewChunker(ffmpegPath, opts...)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ OracleFactory      = (*defaultOracleFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ ChunkerFactory     = (*defaultChunkerFactory)(nil)
	_ Oracle             = (*oracle.ChatOracle)(nil)
)
