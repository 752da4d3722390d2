package audio

import "errors"

// ErrChunkingFailed indicates FFmpeg failed while probing or cutting audio.
var ErrChunkingFailed = errors.New("audio chunking failed")

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")
