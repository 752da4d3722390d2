package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/track"
	"github.com/alnah/go-subtitle/internal/webvtt"
)

// RunRequest describes one end-to-end run.
type RunRequest struct {
	TranscriptPath string
	AudioPath      string
	// Duration, when positive, overrides the probed audio duration.
	Duration float64
	// From resumes at a stage, reading earlier stages' documents from the
	// output directory. Zero means StageSplit.
	From Stage
	// NoRepair serializes captions without timing repair.
	NoRepair bool
}

// Report collects what a run did. Stages that did not execute stay nil.
type Report struct {
	RunID   string
	Split   *SplitStats
	Timing  *TimingStats
	Caption *webvtt.Report
	Groups  *GroupStats
	Written []string
}

// Runner executes stages in order inside one output directory.
type Runner struct {
	pipeline *Pipeline
	layout   Layout
	progress func(Stage)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithProgress registers a callback invoked as each stage starts.
func WithProgress(fn func(Stage)) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.progress = fn
		}
	}
}

// NewRunner binds a pipeline to an output directory.
func NewRunner(p *Pipeline, outDir string, opts ...RunnerOption) *Runner {
	r := &Runner{pipeline: p, layout: Layout{Dir: outDir}, progress: func(Stage) {}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Layout returns the runner's artifact layout.
func (r *Runner) Layout() Layout { return r.layout }

// Run executes the stages from req.From through StageGroup. The output
// directory is locked for the whole run and existing artifacts of executed
// stages are replaced.
func (r *Runner) Run(ctx context.Context, req RunRequest) (Report, error) {
	from := req.From
	if from == 0 {
		from = StageSplit
	}
	rep := Report{RunID: r.pipeline.RunID()}
	log := r.pipeline.logger

	if err := os.MkdirAll(r.layout.Dir, 0750); err != nil {
		return rep, fmt.Errorf("create output directory: %w", err)
	}
	unlock, err := r.lock()
	if err != nil {
		return rep, err
	}
	defer unlock()

	log.Info("run started", zap.String("out", r.layout.Dir), zap.Stringer("from", from))

	// Split.
	var split track.SplitDocument
	if from <= StageSplit {
		r.progress(StageSplit)
		data, err := os.ReadFile(req.TranscriptPath) // #nosec G304 -- user-specified transcript
		if err != nil {
			return rep, fmt.Errorf("read transcript: %w", err)
		}
		res, err := r.pipeline.Split(ctx, string(data))
		if err != nil {
			return rep, err
		}
		split = res.Document
		rep.Split = &res.Stats
		if err := r.write(&rep, r.layout.Split(), split); err != nil {
			return rep, err
		}
	} else if err := readDocument(r.layout.Split(), &split); err != nil {
		return rep, err
	}

	if err := ctx.Err(); err != nil {
		return rep, err
	}

	// Align.
	var timed track.TimedDocument
	if from <= StageAlign {
		r.progress(StageAlign)
		in := AlignInput{AudioPath: req.AudioPath, Duration: req.Duration}
		if from == StageAlign {
			in.Transcription = r.reuseTranscription()
		}
		res, err := r.pipeline.Align(ctx, split, in)
		if err != nil {
			return rep, err
		}
		timed = res.Document
		rep.Timing = &res.Stats
		if res.Transcription != nil && in.Transcription == nil {
			if err := r.write(&rep, r.layout.Transcription(), res.Transcription); err != nil {
				return rep, err
			}
		}
		if err := r.write(&rep, r.layout.Timed(), timed); err != nil {
			return rep, err
		}
	} else if err := readDocument(r.layout.Timed(), &timed); err != nil {
		return rep, err
	}

	// Caption.
	if from <= StageCaption {
		r.progress(StageCaption)
		res := r.pipeline.Caption(timed, !req.NoRepair)
		rep.Caption = &res.Report
		if err := track.WriteFile(r.layout.Caption(), []byte(res.Content), true); err != nil {
			return rep, err
		}
		rep.Written = append(rep.Written, r.layout.Caption())
	}

	if err := ctx.Err(); err != nil {
		return rep, err
	}

	// Group.
	r.progress(StageGroup)
	res, err := r.pipeline.Group(ctx, timed)
	if err != nil {
		return rep, err
	}
	rep.Groups = &res.Stats
	if err := r.write(&rep, r.layout.Groups(), res.Document); err != nil {
		return rep, err
	}
	if err := track.WriteFile(r.layout.GroupTSV(), []byte(res.TSV+"\n"), true); err != nil {
		return rep, err
	}
	rep.Written = append(rep.Written, r.layout.GroupTSV())

	log.Info("run finished", zap.Int("artifacts", len(rep.Written)))
	return rep, nil
}

// lock takes the output directory lock without blocking.
func (r *Runner) lock() (func(), error) {
	fl := flock.New(r.layout.Lock())
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", r.layout.Dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, r.layout.Dir)
	}
	return func() { _ = fl.Unlock() }, nil
}

func (r *Runner) reuseTranscription() *track.TranscriptionDocument {
	var doc track.TranscriptionDocument
	if err := readDocument(r.layout.Transcription(), &doc); err != nil {
		return nil
	}
	r.pipeline.logger.Info("reusing transcription", zap.String("path", r.layout.Transcription()))
	return &doc
}

func (r *Runner) write(rep *Report, path string, v any) error {
	if err := track.WriteJSON(path, v, true); err != nil {
		return err
	}
	rep.Written = append(rep.Written, path)
	return nil
}

// validator is implemented by every stage document.
type validator interface {
	Validate() error
}

// readDocument loads and validates a stage document.
func readDocument(path string, v validator) error {
	if err := track.ReadJSON(path, v); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
		}
		return err
	}
	return v.Validate()
}
