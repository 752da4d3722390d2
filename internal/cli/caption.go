package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/track"
	"github.com/alnah/go-subtitle/internal/webvtt"
)

type captionOptions struct {
	input    string
	output   string
	noRepair bool
	check    bool
	force    bool
}

// CaptionCmd creates the caption command.
func CaptionCmd(env *Env) *cobra.Command {
	var opts captionOptions

	cmd := &cobra.Command{
		Use:   "caption <timed.json>",
		Short: "Write a WebVTT caption file",
		Long: `Serialize timed subtitles as WebVTT.

Timing is repaired first: overlapping cues are pushed back and cues shorter
than the minimum duration are extended. The written file is then checked;
structural issues are reported but never stop the command.`,
		Example: `  subtitle caption timed.json
  subtitle caption timed.json -o podcast.vtt --check
  subtitle caption timed.json --no-repair`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			return runCaption(env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: "+pipeline.CaptionFile+")")
	cmd.Flags().BoolVar(&opts.noRepair, "no-repair", false, "Write cue times as they are")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Print the full structural check")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing output file")

	return cmd
}

func runCaption(env *Env, opts captionOptions) error {
	if err := checkInput(opts.input); err != nil {
		return err
	}
	cfg := loadConfig(env)
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, pipeline.CaptionFile)

	pol, err := loadPolicy(env, cfg)
	if err != nil {
		return err
	}

	var timed track.TimedDocument
	if err := track.ReadJSON(opts.input, &timed); err != nil {
		return err
	}
	if err := timed.Validate(); err != nil {
		return err
	}

	res := pipeline.New(pol, pipeline.WithLogger(env.logger())).Caption(timed, !opts.noRepair)
	if err := track.WriteFile(output, []byte(res.Content), opts.force); err != nil {
		return err
	}

	if opts.check || !res.Report.Valid {
		printCheckReport(env.Stderr, res.Report)
	}
	if res.Adjusted > 0 {
		fmt.Fprintf(env.Stderr, "Repaired timing of %d cue(s)\n", res.Adjusted)
	}
	fmt.Fprintf(env.Stderr, "Wrote %d cues to %s\n", res.Report.Count, output)
	return nil
}

// CheckCmd creates the check command.
func CheckCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.vtt>",
		Short: "Check the structure of a WebVTT file",
		Long: `Check a WebVTT file: header, cue numbering, timestamp syntax, start before
end, no overlap with the previous cue and non-empty text. Every issue is
listed; the command fails if there is at least one.`,
		Example: `  subtitle check podcast.vtt`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(env, args[0])
		},
	}
}

func runCheck(env *Env, path string) error {
	if err := checkInput(path); err != nil {
		return err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified caption file
	if err != nil {
		return fmt.Errorf("read captions: %w", err)
	}

	report := webvtt.Check(string(data))
	printCheckReport(env.Stdout, report)
	if !report.Valid {
		return fmt.Errorf("%s: %w", path, ErrInvalidCaptions)
	}
	return nil
}
