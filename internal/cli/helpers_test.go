package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	oracle         *mockOracleFactory
	transcriber    *mockTranscriberFactory
	chunker        *mockChunkerFactory
}

func newTestMocks() *testMocks {
	return &testMocks{
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		oracle:         &mockOracleFactory{},
		transcriber:    &mockTranscriberFactory{},
		chunker:        &mockChunkerFactory{},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

type testEnvOptions struct {
	vars  map[string]string
	mocks *testMocks
}

type testEnvOption func(*testEnvOptions)

// withEnvVars sets the variables visible through Env.Getenv.
func withEnvVars(vars map[string]string) testEnvOption {
	return func(o *testEnvOptions) { o.vars = vars }
}

// withMocks replaces the default mocks.
func withMocks(m *testMocks) testEnvOption {
	return func(o *testEnvOptions) { o.mocks = m }
}

// testEnv creates a test Env with all dependencies mocked.
// Stdout and Stderr are syncBuffers.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{mocks: newTestMocks()}
	for _, opt := range opts {
		opt(options)
	}
	vars := options.vars

	env := &Env{
		Stdout: &syncBuffer{},
		Stderr: &syncBuffer{},
		Getenv: func(k string) string { return vars[k] },
		Now: func() time.Time {
			return time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)
		},
		FFmpegResolver:     options.mocks.ffmpegResolver,
		ConfigLoader:       options.mocks.configLoader,
		OracleFactory:      options.mocks.oracle,
		TranscriberFactory: options.mocks.transcriber,
		ChunkerFactory:     options.mocks.chunker,
	}
	return env, options.mocks
}

func stdout(env *Env) string { return env.Stdout.(*syncBuffer).String() }
func stderr(env *Env) string { return env.Stderr.(*syncBuffer).String() }

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// execute runs the root command with args.
func execute(env *Env, args ...string) error {
	root := RootCmd(env, "test")
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
