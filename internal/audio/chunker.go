// Package audio cuts a recording into fixed-length transcription chunks
// with ffmpeg. Chunks are 16-bit PCM mono WAV files in a temp directory.
package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-subtitle/internal/ffmpeg"
	"github.com/alnah/go-subtitle/internal/format"
)

// Default chunking parameters.
const (
	DefaultChunkLength = 30 * time.Second
	DefaultSampleRate  = 16000

	// tempPrefix marks directories CleanupChunks may remove wholesale.
	tempPrefix = "go-subtitle-"
)

// Chunk is a segment of audio extracted from a larger file.
// The caller is responsible for cleaning up chunk files after use.
type Chunk struct {
	Path  string        // Absolute path to the chunk file.
	Index int           // Zero-based index for ordering.
	Start time.Duration // Start offset in the source audio.
	End   time.Duration // End offset in the source audio.
}

// Duration returns the length of this chunk.
func (c Chunk) Duration() time.Duration {
	return c.End - c.Start
}

// String returns a human-readable representation for logging.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d: %s-%s", c.Index, format.Duration(c.Start), format.Duration(c.End))
}

// Chunker splits audio into consecutive fixed-length chunks.
type Chunker struct {
	ffmpegPath string
	length     time.Duration
	sampleRate int

	cmd     ffmpegRunner
	tempDir scratchDirMaker
	files   chunkRemover
	stat    audioStatter
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkLength sets the chunk length. Non-positive values are ignored.
func WithChunkLength(d time.Duration) Option {
	return func(c *Chunker) {
		if d > 0 {
			c.length = d
		}
	}
}

// WithSampleRate sets the output sample rate. Non-positive values are ignored.
func WithSampleRate(hz int) Option {
	return func(c *Chunker) {
		if hz > 0 {
			c.sampleRate = hz
		}
	}
}

// WithCommandRunner sets the command runner (for testing).
func WithCommandRunner(r ffmpegRunner) Option {
	return func(c *Chunker) { c.cmd = r }
}

// WithTempDirCreator sets the temp directory creator (for testing).
func WithTempDirCreator(t scratchDirMaker) Option {
	return func(c *Chunker) { c.tempDir = t }
}

// WithFileRemover sets the file remover (for testing).
func WithFileRemover(f chunkRemover) Option {
	return func(c *Chunker) { c.files = f }
}

// WithFileStatter sets the file statter (for testing).
func WithFileStatter(s audioStatter) Option {
	return func(c *Chunker) { c.stat = s }
}

// NewChunker creates a Chunker that runs the ffmpeg binary at ffmpegPath.
func NewChunker(ffmpegPath string, opts ...Option) (*Chunker, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	c := &Chunker{
		ffmpegPath: ffmpegPath,
		length:     DefaultChunkLength,
		sampleRate: DefaultSampleRate,
		cmd:        execRunner{},
		tempDir:    osChunkFS{},
		files:      osChunkFS{},
		stat:       osChunkFS{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Chunk probes audioPath and extracts chunks covering [0, duration).
// It also returns the probed duration.
func (c *Chunker) Chunk(ctx context.Context, audioPath string) ([]Chunk, time.Duration, error) {
	if _, err := c.stat.Stat(audioPath); err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrFileNotFound, audioPath)
	}

	total, err := c.ProbeDuration(ctx, audioPath)
	if err != nil {
		return nil, 0, err
	}

	dir, err := c.tempDir.MkdirTemp("", tempPrefix+"*")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create temp directory: %w", err)
	}

	var chunks []Chunk
	for i := 0; ; i++ {
		start := time.Duration(i) * c.length
		if start >= total {
			break
		}
		end := min(start+c.length, total)

		path := filepath.Join(dir, fmt.Sprintf("chunk_%04d.wav", i))
		if err := c.extract(ctx, audioPath, path, start, end); err != nil {
			_ = c.files.RemoveAll(dir) // best-effort cleanup; original error takes precedence
			return nil, 0, err
		}
		chunks = append(chunks, Chunk{Path: path, Index: i, Start: start, End: end})
	}

	if len(chunks) == 0 {
		_ = c.files.RemoveAll(dir)
	}
	return chunks, total, nil
}

// ProbeDuration returns the duration ffmpeg reports for audioPath.
func (c *Chunker) ProbeDuration(ctx context.Context, audioPath string) (time.Duration, error) {
	output, err := c.cmd.CombinedOutput(ctx, c.ffmpegPath, []string{"-hide_banner", "-i", audioPath, "-f", "null", "-"})
	if err != nil && len(output) == 0 {
		return 0, fmt.Errorf("%w: probe %s: %v", ErrChunkingFailed, audioPath, err)
	}
	d, perr := parseDuration(string(output))
	if perr != nil {
		return 0, fmt.Errorf("%w: probe %s: %v", ErrChunkingFailed, audioPath, perr)
	}
	return d, nil
}

func (c *Chunker) extract(ctx context.Context, audioPath, chunkPath string, start, end time.Duration) error {
	args := []string{
		"-y", "-hide_banner",
		"-i", audioPath,
		"-ss", formatFFmpegTime(start),
		"-to", formatFFmpegTime(end),
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(c.sampleRate),
		"-ac", "1",
		chunkPath,
	}
	output, err := c.cmd.CombinedOutput(ctx, c.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: extract %s: %v\nOutput: %s", ErrChunkingFailed, filepath.Base(chunkPath), err, output)
	}
	return nil
}

var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	progressRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// parseDuration reads "Duration: HH:MM:SS.ff" from ffmpeg stderr, falling
// back to the last "time=" progress stamp for streams without a header.
func parseDuration(output string) (time.Duration, error) {
	if m := durationRe.FindStringSubmatch(output); m != nil {
		return timeComponents(m[1], m[2], m[3], m[4]), nil
	}
	if all := progressRe.FindAllStringSubmatch(output, -1); len(all) > 0 {
		m := all[len(all)-1]
		return timeComponents(m[1], m[2], m[3], m[4]), nil
	}
	return 0, fmt.Errorf("could not parse duration from ffmpeg output")
}

// timeComponents converts HH, MM, SS and a fractional digit string.
func timeComponents(hours, minutes, seconds, fractional string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	if len(fractional) > 3 {
		fractional = fractional[:3]
	}
	fractional += strings.Repeat("0", 3-len(fractional))
	ms, _ := strconv.Atoi(fractional)

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}

// formatFFmpegTime formats a duration for -ss/-to arguments.
func formatFFmpegTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}

// CleanupChunks removes chunk files and their temp directory.
func CleanupChunks(chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dir := filepath.Dir(chunks[0].Path)
	if !strings.HasPrefix(filepath.Base(dir), tempPrefix) {
		// Not ours: remove only the chunk files.
		for _, c := range chunks {
			_ = osChunkFS{}.Remove(c.Path)
		}
		return nil
	}
	return osChunkFS{}.RemoveAll(dir)
}
