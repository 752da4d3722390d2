package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/audio"
	"github.com/alnah/go-subtitle/internal/config"
	"github.com/alnah/go-subtitle/internal/lang"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/policy"
	"github.com/alnah/go-subtitle/internal/prompt"
	"github.com/alnah/go-subtitle/internal/transcribe"
)

// EnvOpenAIAPIKey holds the key for the speech model, which always runs on OpenAI.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// oracleFlags are the flags shared by commands that call a language model.
type oracleFlags struct {
	provider string
	model    string
	language string
	noOracle bool
}

// checkInput fails with ErrFileNotFound when path does not exist.
func checkInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}
	return nil
}

// checkDuration rejects negative and non-finite durations. Zero means unset.
func checkDuration(d float64) error {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, d)
	}
	return nil
}

// loadConfig loads user configuration, warning instead of failing.
func loadConfig(env *Env) config.Config {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	return cfg
}

// loadPolicy reads the policy file named by --policy, else by config.
func loadPolicy(env *Env, cfg config.Config) (policy.Policy, error) {
	path := env.PolicyFile
	if path == "" {
		path = cfg.PolicyFile
	}
	return policy.Load(config.ExpandPath(path))
}

// resolveLanguage picks the flag value, else the configured one, and validates it.
func resolveLanguage(flag string, cfg config.Config) (string, error) {
	code := flag
	if code == "" {
		code = cfg.Language
	}
	if err := lang.Validate(code); err != nil {
		return "", err
	}
	return lang.Normalize(code), nil
}

// newOracle builds the language model for split and group. It returns nil
// when the oracle is disabled.
func newOracle(env *Env, cfg config.Config, pol policy.Policy, f oracleFlags, language string) (Oracle, error) {
	if f.noOracle {
		return nil, nil
	}

	name := f.provider
	if name == "" {
		name = cfg.Provider
	}
	provider, err := oracle.ParseProvider(name)
	if err != nil {
		return nil, err
	}

	apiKey := env.Getenv(provider.EnvKey())
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s (set it with: export %s=...)", ErrAPIKeyMissing, provider.EnvKey(), provider.EnvKey())
	}

	model := f.model
	if model == "" {
		model = cfg.Model
	}

	o, err := env.OracleFactory.NewOracle(provider, apiKey,
		oracle.WithModel(model),
		oracle.WithSplitParams(prompt.SplitParams{
			MaxLineChars: pol.Segment.MaxLineChars,
			MaxLines:     pol.Segment.MaxLines,
			Language:     language,
		}),
		oracle.WithGroupParams(prompt.GroupParams{
			TargetMin:      pol.Group.TargetMin,
			TargetMax:      pol.Group.TargetMax,
			SpanMinSeconds: pol.Group.SpanMinSeconds,
			SpanMaxSeconds: pol.Group.SpanMaxSeconds,
			Language:       language,
		}),
		oracle.WithMaxRetries(pol.Oracle.MaxRetries),
		oracle.WithLogger(env.logger()),
	)
	if err != nil {
		return nil, err
	}
	env.logger().Info("oracle ready", zap.Stringer("provider", provider), zap.String("model", o.Model()))
	return o, nil
}

// newSpeech resolves ffmpeg and builds the chunker and speech model.
func newSpeech(ctx context.Context, env *Env, pol policy.Policy) (transcribe.Transcriber, pipeline.AudioChunker, error) {
	apiKey := env.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return nil, nil, fmt.Errorf("%w: %s (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey, EnvOpenAIAPIKey)
	}

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath, env.logger())

	chunker, err := env.ChunkerFactory.NewChunker(ffmpegPath,
		audio.WithChunkLength(time.Duration(pol.Audio.ChunkSeconds)*time.Second),
		audio.WithSampleRate(pol.Audio.SampleRate))
	if err != nil {
		return nil, nil, err
	}

	t := env.TranscriberFactory.NewTranscriber(apiKey, transcribe.WithMaxRetries(pol.Oracle.MaxRetries))
	return t, chunker, nil
}

// addOracleFlags registers the shared oracle flags on cmd.
func addOracleFlags(cmd *cobra.Command, f *oracleFlags) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Language model provider: "+strings.Join(oracle.ProviderNames(), ", ")+" (default: gemini)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (default: provider's default)")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Transcript language (e.g. ko, en, pt-BR)")
	cmd.Flags().BoolVar(&f.noOracle, "no-oracle", false, "Skip the language model and use rule-based fallbacks")
}
