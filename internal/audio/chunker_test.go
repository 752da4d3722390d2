package audio_test

// Notes:
// - ffmpeg is never executed: a recording command runner answers probes and
//   records extraction arguments.
// - Temp dirs come from t.TempDir so nothing leaks.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-subtitle/internal/audio"
	"github.com/alnah/go-subtitle/internal/ffmpeg"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockRunner struct {
	mu        sync.Mutex
	probe     string
	failOnArg string
	calls     [][]string
}

func (m *mockRunner) CombinedOutput(_ context.Context, _ string, args []string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, args)
	if slices.Contains(args, "null") {
		return []byte(m.probe), nil
	}
	if m.failOnArg != "" && strings.Contains(strings.Join(args, " "), m.failOnArg) {
		return []byte("boom"), errors.New("exit status 1")
	}
	return nil, nil
}

func (m *mockRunner) extractions() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]string
	for _, c := range m.calls {
		if !slices.Contains(c, "null") {
			out = append(out, c)
		}
	}
	return out
}

type fixedTemp struct{ dir string }

func (f fixedTemp) MkdirTemp(string, string) (string, error) { return f.dir, nil }

type okStat struct{}

func (okStat) Stat(string) (os.FileInfo, error) { return nil, nil }

type recordingRemover struct {
	mu      sync.Mutex
	removed []string
}

func (r *recordingRemover) Remove(name string) error { return nil }

func (r *recordingRemover) RemoveAll(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
	return nil
}

func newChunker(t *testing.T, runner *mockRunner, remover *recordingRemover, opts ...audio.Option) (*audio.Chunker, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "go-subtitle-test")
	base := []audio.Option{
		audio.WithCommandRunner(runner),
		audio.WithTempDirCreator(fixedTemp{dir: dir}),
		audio.WithFileRemover(remover),
		audio.WithFileStatter(okStat{}),
	}
	c, err := audio.NewChunker("/usr/bin/ffmpeg", append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewChunker() = %v", err)
	}
	return c, dir
}

// ---------------------------------------------------------------------------
// TestChunk
// ---------------------------------------------------------------------------

func TestChunk_FixedLength(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{probe: "  Duration: 00:01:15.50, start: 0.000000, bitrate: 128 kb/s"}
	c, dir := newChunker(t, runner, &recordingRemover{})

	chunks, total, err := c.Chunk(context.Background(), "/in/talk.mp3")
	if err != nil {
		t.Fatalf("Chunk() = %v", err)
	}
	if total != 75*time.Second+500*time.Millisecond {
		t.Errorf("total = %v", total)
	}
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	wantEnds := []time.Duration{30 * time.Second, 60 * time.Second, total}
	for i, ch := range chunks {
		if ch.Index != i || ch.Start != time.Duration(i)*30*time.Second || ch.End != wantEnds[i] {
			t.Errorf("chunk %d = %+v", i, ch)
		}
		if filepath.Dir(ch.Path) != dir {
			t.Errorf("chunk %d path %q outside temp dir", i, ch.Path)
		}
	}

	ext := runner.extractions()
	if len(ext) != 3 {
		t.Fatalf("extractions = %d, want 3", len(ext))
	}
	args := strings.Join(ext[0], " ")
	for _, want := range []string{"-acodec pcm_s16le", "-ar 16000", "-ac 1", "-ss 00:00:00.000", "-to 00:00:30.000"} {
		if !strings.Contains(args, want) {
			t.Errorf("extraction args %q missing %q", args, want)
		}
	}
}

func TestChunk_CustomLengthAndRate(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{probe: "Duration: 00:00:20.00"}
	c, _ := newChunker(t, runner, &recordingRemover{},
		audio.WithChunkLength(10*time.Second), audio.WithSampleRate(8000))

	chunks, _, err := c.Chunk(context.Background(), "in.wav")
	if err != nil {
		t.Fatalf("Chunk() = %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("len(chunks) = %d, want 2", len(chunks))
	}
	if !strings.Contains(strings.Join(runner.extractions()[0], " "), "-ar 8000") {
		t.Error("sample rate option not applied")
	}
}

func TestChunk_ExtractFailureCleansUp(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{probe: "Duration: 00:01:00.00", failOnArg: "chunk_0001"}
	remover := &recordingRemover{}
	c, dir := newChunker(t, runner, remover)

	_, _, err := c.Chunk(context.Background(), "in.wav")
	if !errors.Is(err, audio.ErrChunkingFailed) {
		t.Fatalf("Chunk() error = %v, want ErrChunkingFailed", err)
	}
	if !slices.Contains(remover.removed, dir) {
		t.Errorf("temp dir not removed: %v", remover.removed)
	}
}

func TestChunk_UnparseableProbe(t *testing.T) {
	t.Parallel()

	c, _ := newChunker(t, &mockRunner{probe: "garbage"}, &recordingRemover{})
	if _, _, err := c.Chunk(context.Background(), "in.wav"); !errors.Is(err, audio.ErrChunkingFailed) {
		t.Errorf("Chunk() error = %v, want ErrChunkingFailed", err)
	}
}

func TestChunk_MissingFile(t *testing.T) {
	t.Parallel()

	c, err := audio.NewChunker("/usr/bin/ffmpeg")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = c.Chunk(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, audio.ErrFileNotFound) {
		t.Errorf("Chunk() error = %v, want ErrFileNotFound", err)
	}
}

func TestNewChunker_EmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := audio.NewChunker(""); !errors.Is(err, ffmpeg.ErrNotFound) {
		t.Errorf("NewChunker(\"\") error = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Parsing helpers
// ---------------------------------------------------------------------------

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		output  string
		want    time.Duration
		wantErr bool
	}{
		{"header", "Duration: 01:02:03.45, start", time.Hour + 2*time.Minute + 3*time.Second + 450*time.Millisecond, false},
		{"one fractional digit", "Duration: 00:00:01.5", 1500 * time.Millisecond, false},
		{"six fractional digits", "Duration: 00:00:01.123456", 1123 * time.Millisecond, false},
		{"last progress stamp", "time=00:00:05.00 bitrate\ntime=00:00:09.20 bitrate", 9200 * time.Millisecond, false},
		{"nothing", "no data", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := audio.ParseDuration(tt.output)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("parseDuration() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestFormatFFmpegTime(t *testing.T) {
	t.Parallel()

	if got := audio.FormatFFmpegTime(time.Hour + 90*time.Second + 250*time.Millisecond); got != "01:01:30.250" {
		t.Errorf("formatFFmpegTime() = %q", got)
	}
}

func TestCleanupChunks(t *testing.T) {
	t.Parallel()

	dir, err := os.MkdirTemp(t.TempDir(), "go-subtitle-*")
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, "chunk_0000.wav")
	if err := os.WriteFile(p, []byte("RIFF"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := audio.CleanupChunks([]audio.Chunk{{Path: p}}); err != nil {
		t.Fatalf("CleanupChunks() = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("temp dir still exists: %v", err)
	}
}

func TestChunkString(t *testing.T) {
	t.Parallel()

	c := audio.Chunk{Index: 2, Start: 60 * time.Second, End: 90 * time.Second}
	if got := c.String(); got != "chunk 2: 01:00-01:30" {
		t.Errorf("String() = %q", got)
	}
	if c.Duration() != 30*time.Second {
		t.Errorf("Duration() = %v", c.Duration())
	}
}
