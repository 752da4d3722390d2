package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/format"
	"github.com/alnah/go-subtitle/internal/pipeline"
)

// StatusCmd creates the status command.
func StatusCmd(env *Env) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which stage artifacts exist",
		Long: `List the artifacts of every stage in an output directory with their size
and modification time, and the stage a run can resume from.`,
		Example: `  subtitle status
  subtitle status --out episodes/42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(env, out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output directory (default: output-dir setting, else ./output)")
	return cmd
}

func runStatus(env *Env, out string) error {
	if out == "" {
		out = loadConfig(env).OutputDir
	}
	if out == "" {
		out = defaultOutDir
	}
	out = config.ExpandPath(out)

	st, err := pipeline.Status(out)
	if err != nil {
		return err
	}

	now := env.Now()
	rows := make([][]string, 0, len(st.Artifacts))
	for _, a := range st.Artifacts {
		if !a.Exists {
			rows = append(rows, []string{a.Stage.String(), a.Name, "-", "-", "-"})
			continue
		}
		age := format.Duration(now.Sub(a.ModTime).Round(time.Second))
		rows = append(rows, []string{
			a.Stage.String(), a.Name, format.Size(a.Size),
			a.ModTime.Format("2006-01-02 15:04:05"), age + " ago",
		})
	}

	_, _ = fmt.Fprintf(env.Stdout, "Output directory: %s\n", st.Dir)
	_, _ = fmt.Fprintln(env.Stdout, renderTable(
		[]string{"Stage", "File", "Size", "Modified", "Age"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight}))
	if st.Locked {
		_, _ = fmt.Fprintln(env.Stdout, "A run is in progress.")
	}
	_, _ = fmt.Fprintf(env.Stdout, "Next: subtitle run --out %s --from %s\n", st.Dir, st.Resumable())
	return nil
}
