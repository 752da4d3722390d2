package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/track"
	"github.com/alnah/go-subtitle/internal/transcribe"
)

type alignOptions struct {
	input         string
	audio         string
	output        string
	transcription string
	duration      float64
	language      string
	force         bool
}

// AlignCmd creates the align command.
func AlignCmd(env *Env) *cobra.Command {
	var opts alignOptions

	cmd := &cobra.Command{
		Use:   "align <split.json>",
		Short: "Time split subtitles against the audio",
		Long: `Give every subtitle a start and end time.

The audio is cut into chunks, transcribed by the speech model, and each
subtitle is searched in the transcription. Matched subtitles take the time
of their match; the rest share the gaps in proportion to their length.
Without a usable match the whole track is timed proportionally.

An existing --transcription file is reused instead of transcribing again;
otherwise the new transcription is saved there (default: transcription.json
next to the output). With --duration and no audio, timing is proportional only.`,
		Example: `  subtitle align split.json --audio podcast.mp3
  subtitle align split.json --audio podcast.mp3 --transcription cache.json
  subtitle align split.json --duration 1834.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			return runAlign(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.audio, "audio", "a", "", "Narrated audio file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: "+pipeline.TimedFile+")")
	cmd.Flags().StringVar(&opts.transcription, "transcription", "", "Transcription file to reuse or create")
	cmd.Flags().Float64Var(&opts.duration, "duration", 0, "Audio duration in seconds (overrides the probed duration)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Audio language (e.g. ko, en, pt-BR)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing output file")

	return cmd
}

// runAlign executes the align stage.
// Validation order: inputs -> duration -> config/policy -> language -> speech setup
func runAlign(cmd *cobra.Command, env *Env, opts alignOptions) error {
	ctx := cmd.Context()

	if err := checkInput(opts.input); err != nil {
		return err
	}
	if opts.audio != "" {
		if err := checkInput(opts.audio); err != nil {
			return err
		}
	}
	if err := checkDuration(opts.duration); err != nil {
		return err
	}

	cfg := loadConfig(env)
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, pipeline.TimedFile)
	transcriptionPath := opts.transcription
	if transcriptionPath == "" {
		transcriptionPath = filepath.Join(filepath.Dir(output), pipeline.TranscriptionFile)
	}

	var split track.SplitDocument
	if err := track.ReadJSON(opts.input, &split); err != nil {
		return err
	}
	if err := split.Validate(); err != nil {
		return err
	}

	in := pipeline.AlignInput{AudioPath: opts.audio, Duration: opts.duration}
	if opts.transcription != "" {
		doc, err := readTranscription(opts.transcription)
		if err != nil {
			return err
		}
		in.Transcription = doc
	}
	if in.Transcription == nil && opts.audio == "" && opts.duration == 0 {
		return ErrMissingAudio
	}

	pol, err := loadPolicy(env, cfg)
	if err != nil {
		return err
	}
	language, err := resolveLanguage(opts.language, cfg)
	if err != nil {
		return err
	}

	pipeOpts := []pipeline.Option{pipeline.WithLogger(env.logger())}
	if in.Transcription == nil && opts.audio != "" {
		t, chunker, err := newSpeech(ctx, env, pol)
		if err != nil {
			return err
		}
		pipeOpts = append(pipeOpts, pipeline.WithSpeech(t, chunker, transcribe.Options{Language: language}))
		fmt.Fprintf(env.Stderr, "Transcribing %s...\n", opts.audio)
	}

	res, err := pipeline.New(pol, pipeOpts...).Align(ctx, split, in)
	if err != nil {
		return err
	}

	if res.Transcription != nil && in.Transcription == nil {
		if err := track.WriteJSON(transcriptionPath, res.Transcription, true); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Saved transcription to %s\n", transcriptionPath)
	}
	if err := track.WriteJSON(output, res.Document, opts.force); err != nil {
		return err
	}

	printTimingStats(env.Stderr, res.Stats)
	fmt.Fprintf(env.Stderr, "Wrote %d timed subtitles to %s\n", res.Document.TotalSubtitles, output)
	return nil
}

// readTranscription loads a transcription file. A missing file is not an
// error: it will be created.
func readTranscription(path string) (*track.TranscriptionDocument, error) {
	var doc track.TranscriptionDocument
	if err := track.ReadJSON(path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
