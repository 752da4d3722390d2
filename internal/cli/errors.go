package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates the provider's API key variable is not set.
	ErrAPIKeyMissing = errors.New("API key environment variable not set")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidDuration indicates a negative or non-finite --duration.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrMissingAudio indicates align needs --audio, --transcription or --duration.
	ErrMissingAudio = errors.New("nothing to align against: pass --audio, --transcription or --duration")

	// ErrMissingTranscript indicates run starts at split without a transcript argument.
	ErrMissingTranscript = errors.New("a transcript is required unless --from is set")

	// ErrInvalidCaptions indicates a caption file failed the structural check.
	ErrInvalidCaptions = errors.New("caption file has structural issues")
)
