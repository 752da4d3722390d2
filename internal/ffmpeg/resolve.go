// Package ffmpeg locates the ffmpeg binary and checks its version.
package ffmpeg

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// EnvFFmpegPath overrides the ffmpeg binary location.
const EnvFFmpegPath = "FFMPEG_PATH"

// minMajorVersion is the oldest ffmpeg known to handle the chunk extraction flags.
const minMajorVersion = 4

// Resolver finds ffmpeg.
type Resolver struct {
	files fileStatter
	env   envProvider
	goos  string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter sets the file statter implementation.
func WithFileStatter(f fileStatter) ResolverOption {
	return func(r *Resolver) { r.files = f }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithPlatform sets the OS used for install instructions.
func WithPlatform(goos string) ResolverOption {
	return func(r *Resolver) { r.goos = goos }
}

// NewResolver creates a Resolver with production defaults.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		files: osFileStatter{},
		env:   osEnvProvider{},
		goos:  runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using FFMPEG_PATH, then the system PATH.
// An FFMPEG_PATH pointing at a missing file is an error, not a fallthrough.
func (r *Resolver) Resolve(_ context.Context) (string, error) {
	if envPath := r.env.Getenv(EnvFFmpegPath); envPath != "" {
		if _, err := r.files.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but the file does not exist",
				ErrNotFound, EnvFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.env.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w\n\n%s", ErrNotFound, r.installInstructions())
}

func (r *Resolver) installInstructions() string {
	var b strings.Builder
	b.WriteString("To install FFmpeg:\n")
	switch r.goos {
	case "darwin":
		b.WriteString("  brew install ffmpeg\n")
	case "linux":
		b.WriteString("  Ubuntu/Debian: sudo apt install ffmpeg\n")
		b.WriteString("  Fedora:        sudo dnf install ffmpeg\n")
		b.WriteString("  Arch:          sudo pacman -S ffmpeg\n")
	case "windows":
		b.WriteString("  winget install ffmpeg\n")
	default:
		b.WriteString("  https://ffmpeg.org/download.html\n")
	}
	b.WriteString("\nOr set " + EnvFFmpegPath + " to your ffmpeg binary.")
	return b.String()
}

// Version runs "ffmpeg -version" and returns the major version.
// ok is false when the output cannot be parsed.
func Version(ctx context.Context, e *Executor, ffmpegPath string) (major int, ok bool) {
	output, err := e.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && output == "" {
		return 0, false
	}
	return parseMajorVersion(output)
}

// parseMajorVersion reads "ffmpeg version 6.1.1 ..." or "ffmpeg version n6.1 ...".
func parseMajorVersion(output string) (int, bool) {
	first, _, _ := strings.Cut(output, "\n")
	var major int
	if _, err := fmt.Sscanf(first, "ffmpeg version %d", &major); err == nil {
		return major, true
	}
	if _, err := fmt.Sscanf(first, "ffmpeg version n%d", &major); err == nil {
		return major, true
	}
	return 0, false
}

// CheckVersion logs a warning when ffmpeg is older than supported.
// It never fails: an unparseable version is logged at debug level.
func CheckVersion(ctx context.Context, e *Executor, ffmpegPath string, logger *zap.Logger) {
	major, ok := Version(ctx, e, ffmpegPath)
	if !ok {
		logger.Debug("could not determine ffmpeg version", zap.String("path", ffmpegPath))
		return
	}
	if major < minMajorVersion {
		logger.Warn("ffmpeg is older than recommended",
			zap.Int("version", major), zap.Int("minimum", minMajorVersion))
	}
}
