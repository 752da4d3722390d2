package track

import "errors"

var (
	// ErrOutputExists indicates the destination file already exists and overwrite was not requested.
	ErrOutputExists = errors.New("output file already exists")

	// ErrInvalidDocument indicates a stage document is malformed or inconsistent.
	ErrInvalidDocument = errors.New("invalid stage document")
)
