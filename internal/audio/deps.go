package audio

import (
	"context"
	"os"
	"os/exec"
)

// ffmpegRunner runs ffmpeg for the duration probe and each chunk
// extraction. ffmpeg reports both on stderr, so output is combined.
type ffmpegRunner interface {
	CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error)
}

// scratchDirMaker creates the directory extracted chunks are written to.
type scratchDirMaker interface {
	MkdirTemp(dir, pattern string) (string, error)
}

// chunkRemover deletes chunk files, or the whole scratch directory.
type chunkRemover interface {
	Remove(name string) error
	RemoveAll(path string) error
}

// audioStatter checks that the input audio exists before it is probed.
type audioStatter interface {
	Stat(name string) (os.FileInfo, error)
}

var (
	_ ffmpegRunner    = execRunner{}
	_ scratchDirMaker = osChunkFS{}
	_ chunkRemover    = osChunkFS{}
	_ audioStatter    = osChunkFS{}
)

// execRunner ties the ffmpeg process to ctx so a cancelled run stops the
// extraction in flight.
type execRunner struct{}

func (execRunner) CombinedOutput(ctx context.Context, name string, args []string) ([]byte, error) {
	// #nosec G204 -- name is the resolved ffmpeg binary, args are built by Chunker
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// osChunkFS is the real filesystem behind chunk extraction and cleanup.
type osChunkFS struct{}

func (osChunkFS) MkdirTemp(dir, pattern string) (string, error) { return os.MkdirTemp(dir, pattern) }
func (osChunkFS) Remove(name string) error                      { return os.Remove(name) }
func (osChunkFS) RemoveAll(path string) error                   { return os.RemoveAll(path) }
func (osChunkFS) Stat(name string) (os.FileInfo, error)         { return os.Stat(name) }
