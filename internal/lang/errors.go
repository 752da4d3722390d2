package lang

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid indicates a transcript language code that is not a BCP 47 tag.
	ErrInvalid = errors.New("invalid language code")

	// ErrUnsupported indicates a well-formed code the speech service cannot
	// transcribe. It matches ErrInvalid.
	ErrUnsupported = fmt.Errorf("%w: not supported for transcription", ErrInvalid)
)
