package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/alnah/go-subtitle/internal/apierr"
	"github.com/alnah/go-subtitle/internal/audio"
	"github.com/alnah/go-subtitle/internal/cli"
	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/ffmpeg"
	"github.com/alnah/go-subtitle/internal/integrity"
	"github.com/alnah/go-subtitle/internal/lang"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/policy"
	"github.com/alnah/go-subtitle/internal/segment"
	"github.com/alnah/go-subtitle/internal/timing"
	"github.com/alnah/go-subtitle/internal/track"
	"github.com/alnah/go-subtitle/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitOracle     = 5
	ExitIntegrity  = 6
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()
	root := cli.RootCmd(env, fmt.Sprintf("%s (commit: %s)", version, commit))

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	if isCobraUsageError(err) || errors.Is(err, cli.ErrMissingTranscript) {
		return ExitUsage
	}

	if isAny(err,
		ffmpeg.ErrNotFound, cli.ErrAPIKeyMissing, transcribe.ErrAPIKeyMissing,
		oracle.ErrInvalidProvider, oracle.ErrEmptyAPIKey, pipeline.ErrLocked) {
		return ExitSetup
	}

	if isAny(err, integrity.ErrContentMismatch, segment.ErrConstraintViolation) {
		return ExitIntegrity
	}

	if isAny(err,
		cli.ErrFileNotFound, cli.ErrInvalidDuration, cli.ErrMissingAudio, cli.ErrInvalidCaptions,
		track.ErrInvalidDocument, track.ErrOutputExists, policy.ErrInvalidPolicy, lang.ErrInvalid,
		config.ErrUnknownKey, pipeline.ErrInvalidStage, pipeline.ErrMissingArtifact, pipeline.ErrNoTiming,
		timing.ErrInvalidDuration, timing.ErrDurationExhausted,
		audio.ErrChunkingFailed, audio.ErrFileNotFound) {
		return ExitValidation
	}

	if isAny(err,
		oracle.ErrOracleFailure, apierr.ErrRateLimit, apierr.ErrQuotaExceeded, apierr.ErrTimeout,
		apierr.ErrAuthFailed, apierr.ErrBadRequest, apierr.ErrServer) {
		return ExitOracle
	}

	return ExitGeneral
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// cobraUsageErrorPatterns are message fragments of Cobra's flag and argument
// errors. Cobra doesn't expose typed errors.
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"unknown command",
	"flag needs an argument",
	"invalid argument",
	"accepts ",
	"requires at least",
	"requires at most",
}

func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
