package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/track"
)

type splitOptions struct {
	input  string
	output string
	force  bool
	oracle oracleFlags
}

// SplitCmd creates the split command.
func SplitCmd(env *Env) *cobra.Command {
	var opts splitOptions

	cmd := &cobra.Command{
		Use:   "split <transcript.txt>",
		Short: "Split a transcript into caption pieces",
		Long: `Split a transcript into caption pieces of at most 3 lines of 25 characters.

Non-blank transcript lines are sent to the language model in batches. Pieces
that break the limits are re-segmented by rule; with --no-oracle every batch
is segmented by rule. The concatenated pieces must reproduce the transcript
exactly once whitespace is ignored, or the command stops and writes a
diagnostic dump next to the output.`,
		Example: `  subtitle split transcript.txt
  subtitle split transcript.txt -o out/split.json --provider openai
  subtitle split transcript.txt --no-oracle`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			return runSplit(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: "+pipeline.SplitFile+")")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing output file")
	addOracleFlags(cmd, &opts.oracle)

	return cmd
}

// runSplit executes the split stage.
// Validation order: input -> config/policy -> language -> oracle
func runSplit(cmd *cobra.Command, env *Env, opts splitOptions) error {
	ctx := cmd.Context()

	if err := checkInput(opts.input); err != nil {
		return err
	}
	cfg := loadConfig(env)
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, pipeline.SplitFile)

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

	data, err := os.ReadFile(opts.input) // #nosec G304 -- user-specified transcript
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	p := pipeline.New(pol,
		pipeline.WithSplitter(o),
		pipeline.WithDumpDir(filepath.Dir(output)),
		pipeline.WithLogger(env.logger()))

	fmt.Fprintf(env.Stderr, "Splitting %s...\n", opts.input)
	res, err := p.Split(ctx, string(data))
	if err != nil {
		return err
	}
	if err := track.WriteJSON(output, res.Document, opts.force); err != nil {
		return err
	}

	printSplitStats(env.Stderr, res.Stats)
	fmt.Fprintf(env.Stderr, "Wrote %d subtitles to %s\n", res.Document.TotalSubtitles, output)
	return nil
}
