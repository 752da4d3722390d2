// Package lang validates language codes for the speech and language-model
// providers and renders their English display names for prompts.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// speechBases lists the ISO 639-1 base codes accepted by the transcription API.
var speechBases = map[string]bool{
	"af": true, "ar": true, "bg": true, "bn": true, "ca": true, "cs": true,
	"da": true, "de": true, "el": true, "en": true, "es": true, "et": true,
	"fa": true, "fi": true, "fr": true, "gu": true, "he": true, "hi": true,
	"hr": true, "hu": true, "id": true, "it": true, "ja": true, "kn": true,
	"ko": true, "lt": true, "lv": true, "mk": true, "ml": true, "mr": true,
	"ms": true, "nl": true, "no": true, "pa": true, "pl": true, "pt": true,
	"ro": true, "ru": true, "sk": true, "sl": true, "sr": true, "sv": true,
	"sw": true, "ta": true, "te": true, "th": true, "tl": true, "tr": true,
	"uk": true, "ur": true, "vi": true, "zh": true,
}

// Normalize lowercases a code and uses hyphen separators.
// "pt_BR", "PT-BR" and "pt-br" all become "pt-br".
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}

// Parse returns the BCP 47 tag for code. An empty code is language.Und,
// meaning auto-detect.
func Parse(code string) (language.Tag, error) {
	if strings.TrimSpace(code) == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(Normalize(code))
	if err != nil {
		return language.Und, fmt.Errorf("invalid language code %q: %w", code, ErrInvalid)
	}
	base, _ := tag.Base()
	if !speechBases[base.String()] {
		return language.Und, fmt.Errorf("%q (use ISO 639-1 codes like 'ko', 'en', 'pt-BR'): %w",
			code, ErrUnsupported)
	}
	return tag, nil
}

// Validate reports whether code is empty or a supported language.
func Validate(code string) error {
	_, err := Parse(code)
	return err
}

// BaseCode extracts the ISO 639-1 base code. The transcription API only
// accepts base codes: "pt-BR" becomes "pt".
func BaseCode(code string) string {
	n := Normalize(code)
	if base, _, ok := strings.Cut(n, "-"); ok {
		return base
	}
	return n
}

// DisplayName returns the English name of code, such as "Korean" or
// "Brazilian Portuguese". Unknown codes are returned as given.
func DisplayName(code string) string {
	tag, err := language.Parse(Normalize(code))
	if err != nil || tag == language.Und {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
