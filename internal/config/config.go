// Package config reads and writes the user configuration file
// ~/.config/go-subtitle/config: one key=value per line, # comments.
// Every key has an environment variable fallback.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Config keys.
const (
	KeyOutputDir = "output-dir"
	KeyProvider  = "provider"
	KeyModel     = "model"
	KeyLanguage  = "language"
	KeyPolicy    = "policy"
)

// Environment variable fallbacks.
const (
	EnvOutputDir = "SUBTITLE_OUTPUT_DIR"
	EnvProvider  = "SUBTITLE_PROVIDER"
	EnvModel     = "SUBTITLE_MODEL"
	EnvLanguage  = "SUBTITLE_LANGUAGE"
	EnvPolicy    = "SUBTITLE_POLICY"
)

// appName names the configuration directory.
const appName = "go-subtitle"

// ErrUnknownKey indicates a key that is not a recognized configuration key.
var ErrUnknownKey = errors.New("unknown config key")

// Keys lists every recognized configuration key.
var Keys = []string{KeyOutputDir, KeyProvider, KeyModel, KeyLanguage, KeyPolicy}

var envFallback = map[string]string{
	KeyOutputDir: EnvOutputDir,
	KeyProvider:  EnvProvider,
	KeyModel:     EnvModel,
	KeyLanguage:  EnvLanguage,
	KeyPolicy:    EnvPolicy,
}

// Config holds user configuration.
type Config struct {
	OutputDir string
	Provider  string
	Model     string
	Language  string
	// PolicyFile is the path of a TOML file overriding numeric defaults.
	PolicyFile string
}

// EnvVar returns the environment variable that backs key, or "".
func EnvVar(key string) string {
	return envFallback[key]
}

// IsValidKey reports whether key is a recognized configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(Keys, key)
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-subtitle.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Config file values win; environment variables fill the gaps.
// A missing file is not an error.
func Load() (Config, error) {
	values := make(map[string]string)

	p, err := path()
	if err != nil {
		return Config{}, err
	}
	if data, err := parseFile(p); err == nil {
		values = data
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	for key, env := range envFallback {
		if values[key] == "" {
			values[key] = os.Getenv(env)
		}
	}

	return Config{
		OutputDir:  values[KeyOutputDir],
		Provider:   values[KeyProvider],
		Model:      values[KeyModel],
		Language:   values[KeyLanguage],
		PolicyFile: values[KeyPolicy],
	}, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file, keeping other keys.
// Comments are not preserved.
func Save(key, value string) error {
	if !IsValidKey(key) {
		return fmt.Errorf("%q: %w", key, ErrUnknownKey)
	}

	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map sorted by key.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("%q: %w", key, ErrUnknownKey)
	}

	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config file values.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ResolveOutputPath resolves the final output path:
//  1. an absolute output is used as-is
//  2. a relative output is joined to outputDir when set
//  3. an empty output becomes defaultName in outputDir (or the cwd)
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}

	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}

	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// ValidOutputDir checks that d exists (creating it if needed), is a
// directory and is writable.
func ValidOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output-dir cannot be empty")
	}

	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", d)
	}

	testFile := filepath.Join(d, ".go-subtitle-write-test")
	f, err := os.Create(testFile) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(testFile)
		return fmt.Errorf("directory is not writable: %w", err)
	}
	_ = os.Remove(testFile)

	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	return dir()
}
