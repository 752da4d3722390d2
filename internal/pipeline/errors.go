package pipeline

import "errors"

var (
	// ErrInvalidStage indicates a stage name that is not split, align, caption or group.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrLocked indicates another run holds the output directory.
	ErrLocked = errors.New("output directory is locked by another run")

	// ErrMissingArtifact indicates a resumed run found no document for an earlier stage.
	ErrMissingArtifact = errors.New("missing stage artifact")

	// ErrNoTiming indicates the align stage has neither audio nor a duration to work from.
	ErrNoTiming = errors.New("no audio, transcription or duration to align against")

	// ErrNoTranscriber indicates audio was given but no speech model is configured.
	ErrNoTranscriber = errors.New("no transcriber configured")
)
