package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/track"
)

type groupOptions struct {
	input  string
	output string
	tsv    string
	force  bool
	oracle oracleFlags
}

// GroupCmd creates the group command.
func GroupCmd(env *Env) *cobra.Command {
	var opts groupOptions

	cmd := &cobra.Command{
		Use:   "group <timed.json>",
		Short: "Group subtitles into topic windows",
		Long: `Group timed subtitles into contiguous topic windows.

The language model proposes groups; unreadable lines, groups outside the
track, overlapping groups and groups shorter than the minimum duration are
skipped. Every subtitle left over joins a filler group, so each subtitle
ends up in exactly one group.

Besides the JSON document, a tab-separated listing (start_ms, text) is
written for downstream tools.`,
		Example: `  subtitle group timed.json
  subtitle group timed.json -o groups.json --tsv concepts.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			return runGroup(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: "+pipeline.GroupFile+")")
	cmd.Flags().StringVar(&opts.tsv, "tsv", "", "Tab-separated listing (default: "+pipeline.GroupTSVFile+" next to the output)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing output files")
	addOracleFlags(cmd, &opts.oracle)

	return cmd
}

func runGroup(cmd *cobra.Command, env *Env, opts groupOptions) error {
	ctx := cmd.Context()

	if err := checkInput(opts.input); err != nil {
		return err
	}
	cfg := loadConfig(env)
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, pipeline.GroupFile)
	tsv := opts.tsv
	if tsv == "" {
		tsv = filepath.Join(filepath.Dir(output), pipeline.GroupTSVFile)
	}

	pol, err := loadPolicy(env, cfg)
	if err != nil {
		return err
	}
	language, err := resolveLanguage(opts.oracle.language, cfg)
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

	o, err := newOracle(env, cfg, pol, opts.oracle, language)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Grouping %d subtitles...\n", timed.TotalSubtitles)
	res, err := pipeline.New(pol, pipeline.WithGrouper(o), pipeline.WithLogger(env.logger())).Group(ctx, timed)
	if err != nil {
		return err
	}

	if err := track.WriteJSON(output, res.Document, opts.force); err != nil {
		return err
	}
	if err := track.WriteFile(tsv, []byte(res.TSV+"\n"), opts.force); err != nil {
		return err
	}

	printGroupStats(env.Stderr, res.Stats)
	fmt.Fprintf(env.Stderr, "Wrote %d groups to %s and %s\n", res.Document.TotalGroups, output, tsv)
	return nil
}
