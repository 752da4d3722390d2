package cli

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/audio"
	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc func(ctx context.Context) (string, error)

	mu           sync.Mutex
	resolveCalls int
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(context.Context, string, *zap.Logger) {}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

// ---------------------------------------------------------------------------
// Mock OracleFactory + Oracle
// ---------------------------------------------------------------------------

type oracleCall struct {
	Provider oracle.Provider
	APIKey   string
}

type mockOracleFactory struct {
	Oracle *mockOracle
	Err    error

	mu    sync.Mutex
	calls []oracleCall
}

func (m *mockOracleFactory) NewOracle(provider oracle.Provider, apiKey string, _ ...oracle.Option) (Oracle, error) {
	m.mu.Lock()
	m.calls = append(m.calls, oracleCall{Provider: provider, APIKey: apiKey})
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Oracle == nil {
		return &mockOracle{}, nil
	}
	return m.Oracle, nil
}

func (m *mockOracleFactory) Calls() []oracleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]oracleCall(nil), m.calls...)
}

type mockOracle struct {
	SplitFunc func(ctx context.Context, text string) (string, error)
	GroupFunc func(ctx context.Context, listing string, cueCount int) (string, error)

	mu         sync.Mutex
	splitCalls int
	groupCalls int
}

func (m *mockOracle) Split(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.splitCalls++
	m.mu.Unlock()

	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, text)
	}
	return "", oracle.ErrEmptyResponse
}

func (m *mockOracle) Group(ctx context.Context, listing string, cueCount int) (string, error) {
	m.mu.Lock()
	m.groupCalls++
	m.mu.Unlock()

	if m.GroupFunc != nil {
		return m.GroupFunc(ctx, listing, cueCount)
	}
	return "", oracle.ErrEmptyResponse
}

func (m *mockOracle) Model() string { return "mock-model" }

func (m *mockOracle) Calls() (split, group int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.splitCalls, m.groupCalls
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory + Transcriber
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	Transcriber *mockTranscriber

	mu   sync.Mutex
	keys []string
}

func (m *mockTranscriberFactory) NewTranscriber(apiKey string, _ ...transcribe.Option) transcribe.Transcriber {
	m.mu.Lock()
	m.keys = append(m.keys, apiKey)
	m.mu.Unlock()

	if m.Transcriber == nil {
		return &mockTranscriber{}
	}
	return m.Transcriber
}

func (m *mockTranscriberFactory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

type transcribeCall struct {
	AudioPath string
	Opts      transcribe.Options
}

type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioPath string, opts transcribe.Options) (string, error)

	mu    sync.Mutex
	calls []transcribeCall
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, transcribeCall{AudioPath: audioPath, Opts: opts})
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath, opts)
	}
	return "transcribed text", nil
}

func (m *mockTranscriber) Calls() []transcribeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transcribeCall(nil), m.calls...)
}

// ---------------------------------------------------------------------------
// Mock ChunkerFactory + Chunker
// ---------------------------------------------------------------------------

type mockChunkerFactory struct {
	Chunker *mockChunker
	Err     error

	mu          sync.Mutex
	ffmpegPaths []string
}

func (m *mockChunkerFactory) NewChunker(ffmpegPath string, _ ...audio.Option) (pipeline.AudioChunker, error) {
	m.mu.Lock()
	m.ffmpegPaths = append(m.ffmpegPaths, ffmpegPath)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Chunker == nil {
		return &mockChunker{}, nil
	}
	return m.Chunker, nil
}

type mockChunker struct {
	Chunks []audio.Chunk
	Total  time.Duration
	Err    error
}

func (m *mockChunker) Chunk(context.Context, string) ([]audio.Chunk, time.Duration, error) {
	return m.Chunks, m.Total, m.Err
}

// Compile-time interface verification.
var (
	_ FFmpegResolver         = (*mockFFmpegResolver)(nil)
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ OracleFactory          = (*mockOracleFactory)(nil)
	_ Oracle                 = (*mockOracle)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
	_ ChunkerFactory         = (*mockChunkerFactory)(nil)
	_ pipeline.AudioChunker  = (*mockChunker)(nil)
)
