package oracle

import (
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Provider names.
const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

// Provider describes an OpenAI-compatible chat endpoint.
// The zero value is invalid; use ParseProvider or the predeclared values.
type Provider struct {
	name         string
	baseURL      string
	envKey       string
	defaultModel string
}

var _ fmt.Stringer = Provider{}

// Predeclared providers.
var (
	Gemini = Provider{
		name:         ProviderGemini,
		baseURL:      "https://generativelanguage.googleapis.com/v1beta/openai/",
		envKey:       "GEMINI_API_KEY",
		defaultModel: "gemini-2.5-flash",
	}
	OpenAI = Provider{
		name:         ProviderOpenAI,
		envKey:       "OPENAI_API_KEY",
		defaultModel: "gpt-4.1-mini",
	}
	DeepSeek = Provider{
		name:         ProviderDeepSeek,
		baseURL:      "https://api.deepseek.com/v1",
		envKey:       "DEEPSEEK_API_KEY",
		defaultModel: "deepseek-chat",
	}
)

var providers = map[string]Provider{
	ProviderGemini:   Gemini,
	ProviderOpenAI:   OpenAI,
	ProviderDeepSeek: DeepSeek,
}

// ProviderNames lists the accepted provider names, sorted.
func ProviderNames() []string {
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseProvider validates a provider name. Empty means Gemini.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Gemini, nil
	}
	p, ok := providers[s]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider %q (use %s): %w",
			s, strings.Join(ProviderNames(), ", "), ErrInvalidProvider)
	}
	return p, nil
}

// String returns the provider name.
func (p Provider) String() string { return p.name }

// IsZero reports whether p is unset.
func (p Provider) IsZero() bool { return p.name == "" }

// EnvKey names the environment variable holding the provider's API key.
func (p Provider) EnvKey() string { return p.envKey }

// DefaultModel is the chat model used when none is configured.
func (p Provider) DefaultModel() string { return p.defaultModel }

// NewClient builds a go-openai client pointed at the provider's endpoint.
func (p Provider) NewClient(apiKey string) (*openai.Client, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("provider not set: %w", ErrInvalidProvider)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s: %w (set %s)", p.name, ErrEmptyAPIKey, p.envKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	return openai.NewClientWithConfig(cfg), nil
}

// WithBaseURL returns a copy of p that targets url. Used for proxies and tests.
func (p Provider) WithBaseURL(url string) Provider {
	p.baseURL = url
	return p
}
