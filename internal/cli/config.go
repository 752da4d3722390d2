package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/lang"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/policy"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-subtitle/config.
Settings can also be provided via environment variables.

Supported settings:
  output-dir    Default directory for output files (env: SUBTITLE_OUTPUT_DIR)
  provider      Language model provider (env: SUBTITLE_PROVIDER)
  model         Language model name (env: SUBTITLE_MODEL)
  language      Transcript language code (env: SUBTITLE_LANGUAGE)
  policy        TOML policy file (env: SUBTITLE_POLICY)`,
		Example: `  subtitle config set output-dir ~/podcasts/subtitles
  subtitle config set provider openai
  subtitle config get provider
  subtitle config list
  subtitle config policy > policy.toml`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))
	cmd.AddCommand(configPolicyCmd(env))

	return cmd
}

func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Values are validated before saving:
output-dir is created if needed, provider and language must be known,
and a policy file must parse.`,
		Example: `  subtitle config set output-dir ~/podcasts/subtitles
  subtitle config set policy ~/podcasts/policy.toml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  subtitle config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable fallbacks.`,
		Example: `  subtitle config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

func configPolicyCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the default policy file",
		Long: `Print the built-in policy as TOML. Save it, edit it, then point the
policy setting or --policy at it.`,
		Example: `  subtitle config policy > policy.toml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := env.Stdout.Write(policy.Sample())
			return err
		},
	}
}

// validateConfigValue checks and normalizes value for key.
func validateConfigValue(key, value string) (string, error) {
	switch key {
	case config.KeyOutputDir:
		expanded := config.ExpandPath(value)
		if err := config.ValidOutputDir(expanded); err != nil {
			return "", fmt.Errorf("invalid output-dir: %w", err)
		}
		return expanded, nil
	case config.KeyProvider:
		p, err := oracle.ParseProvider(value)
		if err != nil {
			return "", err
		}
		return p.String(), nil
	case config.KeyLanguage:
		if err := lang.Validate(value); err != nil {
			return "", err
		}
		return lang.Normalize(value), nil
	case config.KeyPolicy:
		expanded := config.ExpandPath(value)
		if _, err := policy.Load(expanded); err != nil {
			return "", err
		}
		return expanded, nil
	default:
		return strings.TrimSpace(value), nil
	}
}

func runConfigSet(env *Env, key, value string) error {
	if !config.IsValidKey(key) {
		return fmt.Errorf("%w %q (valid keys: %s)", config.ErrUnknownKey, key, strings.Join(config.Keys, ", "))
	}

	value, err := validateConfigValue(key, value)
	if err != nil {
		return err
	}
	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

func runConfigGet(env *Env, key string) error {
	if !config.IsValidKey(key) {
		return fmt.Errorf("%w %q (valid keys: %s)", config.ErrUnknownKey, key, strings.Join(config.Keys, ", "))
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(config.EnvVar(key))
	}
	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	for _, key := range config.Keys {
		if _, ok := data[key]; ok {
			continue
		}
		if v := env.Getenv(config.EnvVar(key)); v != "" {
			data[key] = v + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintf(env.Stdout, "\nAvailable settings: %s\n", strings.Join(config.Keys, ", "))
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(env.Stdout, "%s=%s\n", k, data[k])
	}
	return nil
}
