// Package integrity guarantees that splitting a text into pieces neither
// loses, adds nor reorders characters. Whitespace is ignored: two streams are
// equal when they match exactly after every whitespace rune is removed.
package integrity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/alnah/go-subtitle/internal/track"
)

// ErrContentMismatch indicates the pieces do not reproduce the original text.
var ErrContentMismatch = errors.New("content integrity check failed")

// MismatchError carries everything needed to diagnose a failed check.
// FirstDiff is a rune offset into the normalized strings.
type MismatchError struct {
	Original           string   `json:"original"`
	Pieces             []string `json:"pieces"`
	NormalizedOriginal string   `json:"normalized_original"`
	NormalizedPieces   string   `json:"normalized_pieces"`
	FirstDiff          int      `json:"first_diff_index"`
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: first divergence at character %d (original %d chars, pieces %d chars)",
		ErrContentMismatch, e.FirstDiff,
		track.CharCount(e.NormalizedOriginal), track.CharCount(e.NormalizedPieces))
}

func (e *MismatchError) Unwrap() error {
	return ErrContentMismatch
}

// Normalize removes every whitespace rune and applies Unicode NFC so that
// composed and decomposed Hangul compare equal.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Validate reports whether pieces, concatenated, reproduce original.
func Validate(original string, pieces []string) bool {
	return Normalize(original) == Normalize(strings.Join(pieces, ""))
}

// Check is Validate returning a *MismatchError on failure.
func Check(original string, pieces []string) error {
	a := Normalize(original)
	b := Normalize(strings.Join(pieces, ""))
	if a == b {
		return nil
	}
	return &MismatchError{
		Original:           original,
		Pieces:             append([]string(nil), pieces...),
		NormalizedOriginal: a,
		NormalizedPieces:   b,
		FirstDiff:          FirstDiff(a, b),
	}
}

// FirstDiff returns the rune index of the first difference between a and b,
// or -1 if they are equal. When one is a prefix of the other the index is the
// length of the shorter.
func FirstDiff(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb))
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			return i
		}
	}
	if len(ra) == len(rb) {
		return -1
	}
	return n
}

// WriteDump persists the mismatch as JSON at path.
func WriteDump(path string, e *MismatchError) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode integrity dump: %w", err)
	}
	return track.WriteFile(path, append(data, '\n'), true)
}
