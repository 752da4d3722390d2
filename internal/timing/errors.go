package timing

import "errors"

var (
	// ErrInvalidDuration indicates a non-positive total duration.
	ErrInvalidDuration = errors.New("total duration must be positive")

	// ErrDurationExhausted indicates the minimum per-cue durations consumed
	// the whole audio before the last cue could be placed.
	ErrDurationExhausted = errors.New("audio duration exhausted before last cue")
)
