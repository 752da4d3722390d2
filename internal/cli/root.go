package cli

import (
	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/logging"
)

// globalFlags are accepted by every command.
type globalFlags struct {
	logLevel  string
	logFormat string
	policy    string
}

// RootCmd creates the subtitle command tree. Global flags configure env's
// logger and policy file before any subcommand runs.
func RootCmd(env *Env, version string) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "subtitle",
		Short: "Turn a transcript and its audio into timed, grouped subtitles",
		Long: `Turn a podcast transcript and its narrated audio into a validated WebVTT
subtitle track, then group the subtitles into topic windows.

Stages: split -> align -> caption -> group. Each stage reads the previous
stage's JSON document; "run" chains them in one output directory.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{
				Level:  g.logLevel,
				Format: g.logFormat,
				Output: env.Stderr,
			})
			if err != nil {
				return err
			}
			env.Logger = logger
			if g.policy != "" {
				env.PolicyFile = g.policy
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", logging.FormatAuto, "Log format: auto, console, json")
	root.PersistentFlags().StringVar(&g.policy, "policy", "", "TOML policy file (overrides the policy setting)")

	root.AddCommand(SplitCmd(env))
	root.AddCommand(AlignCmd(env))
	root.AddCommand(CaptionCmd(env))
	root.AddCommand(CheckCmd(env))
	root.AddCommand(GroupCmd(env))
	root.AddCommand(RunCmd(env))
	root.AddCommand(StatusCmd(env))
	root.AddCommand(CompareCmd(env))
	root.AddCommand(ConfigCmd(env))

	return root
}
