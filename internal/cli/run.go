package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/transcribe"
)

// defaultOutDir is used when neither --out nor output-dir is set.
const defaultOutDir = "output"

type runOptions struct {
	transcript string
	audio      string
	out        string
	from       string
	duration   float64
	noRepair   bool
	oracle     oracleFlags
}

// RunCmd creates the run command.
func RunCmd(env *Env) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <transcript.txt>",
		Short: "Run every stage: split, align, caption, group",
		Long: `Run the whole pipeline into one output directory:

  split.json          caption pieces
  transcription.json  speech model output
  timed.json          timed subtitles
  podcast.vtt         WebVTT captions
  groups.json         topic windows
  groups.txt          tab-separated topic windows

--from resumes at a stage, reading the documents of earlier stages from the
output directory. Resuming at align reuses an existing transcription.json.
The directory is locked while a run is in progress.`,
		Example: `  subtitle run transcript.txt --audio podcast.mp3
  subtitle run transcript.txt --audio podcast.mp3 --out episodes/42
  subtitle run --out episodes/42 --from group`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.transcript = args[0]
			}
			return runRun(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.audio, "audio", "a", "", "Narrated audio file")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output directory (default: output-dir setting, else ./output)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Resume at stage: split, align, caption, group")
	cmd.Flags().Float64Var(&opts.duration, "duration", 0, "Audio duration in seconds (overrides the probed duration)")
	cmd.Flags().BoolVar(&opts.noRepair, "no-repair", false, "Write cue times as they are")
	addOracleFlags(cmd, &opts.oracle)

	return cmd
}

// runRun executes the pipeline.
// Validation order: stage -> inputs -> duration -> config/policy -> language -> oracle -> speech
func runRun(cmd *cobra.Command, env *Env, opts runOptions) error {
	ctx := cmd.Context()

	from, err := pipeline.ParseStage(opts.from)
	if err != nil {
		return err
	}
	if from == pipeline.StageSplit {
		if opts.transcript == "" {
			return ErrMissingTranscript
		}
		if err := checkInput(opts.transcript); err != nil {
			return err
		}
	}
	needsTiming := from <= pipeline.StageAlign
	if needsTiming && opts.audio != "" {
		if err := checkInput(opts.audio); err != nil {
			return err
		}
	}
	if err := checkDuration(opts.duration); err != nil {
		return err
	}
	if from == pipeline.StageSplit && opts.audio == "" && opts.duration == 0 {
		return ErrMissingAudio
	}

	cfg := loadConfig(env)
	out := opts.out
	if out == "" {
		out = cfg.OutputDir
	}
	if out == "" {
		out = defaultOutDir
	}
	out = config.ExpandPath(out)

	pol, err := loadPolicy(env, cfg)
	if err != nil {
		return err
	}
	language, err := resolveLanguage(opts.oracle.language, cfg)
	if err != nil {
		return err
	}
	o, err := newOracle(env, cfg, pol, opts.oracle, language)
	if err != nil {
		return err
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithSplitter(o),
		pipeline.WithGrouper(o),
		pipeline.WithDumpDir(out),
		pipeline.WithLogger(env.logger()),
	}
	if needsTiming && opts.audio != "" {
		t, chunker, err := newSpeech(ctx, env, pol)
		if err != nil {
			return err
		}
		pipeOpts = append(pipeOpts, pipeline.WithSpeech(t, chunker, transcribe.Options{Language: language}))
	}

	p := pipeline.New(pol, pipeOpts...)
	runner := pipeline.NewRunner(p, out, pipeline.WithProgress(func(s pipeline.Stage) {
		fmt.Fprintf(env.Stderr, "==> %s\n", s)
	}))

	rep, err := runner.Run(ctx, pipeline.RunRequest{
		TranscriptPath: opts.transcript,
		AudioPath:      opts.audio,
		Duration:       opts.duration,
		From:           from,
		NoRepair:       opts.noRepair,
	})
	if err != nil {
		return err
	}

	if rep.Split != nil {
		printSplitStats(env.Stderr, *rep.Split)
	}
	if rep.Timing != nil {
		printTimingStats(env.Stderr, *rep.Timing)
	}
	if rep.Caption != nil && !rep.Caption.Valid {
		printCheckReport(env.Stderr, *rep.Caption)
	}
	if rep.Groups != nil {
		printGroupStats(env.Stderr, *rep.Groups)
	}
	fmt.Fprintf(env.Stderr, "Run %s wrote %d file(s) to %s\n", rep.RunID, len(rep.Written), out)
	return nil
}
