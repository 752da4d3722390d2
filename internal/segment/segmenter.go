// Package segment breaks text into caption pieces that respect line-length
// and line-count limits. It validates what the split oracle proposes and
// supplies a deterministic rule-based fallback when that proposal is
// unusable.
package segment

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/track"
)

// Segmenter is the rule-based fallback splitter. It has no semantic
// awareness: it only guarantees legal line breaks.
type Segmenter struct {
	limits Limits
	strict bool
	logger *zap.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithLimits sets the caption limits.
func WithLimits(l Limits) Option {
	return func(s *Segmenter) {
		s.limits = l
	}
}

// WithStrict makes Repair fail with a *ViolationError when a piece still
// breaks the limits after the fallback (an unsplittable token).
func WithStrict(strict bool) Option {
	return func(s *Segmenter) {
		s.strict = strict
	}
}

// WithLogger sets the logger used to flag oversized tokens.
func WithLogger(l *zap.Logger) Option {
	return func(s *Segmenter) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Segmenter with default limits.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		limits: DefaultLimits(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the limits in effect.
func (s *Segmenter) Limits() Limits {
	return s.limits
}

// Segment splits text into single-line pieces.
//
// Text is cut after sentence-terminal punctuation. A sentence that fits on
// one line becomes one piece; a longer one is packed word by word into a
// buffer of BufferChars runes, flushed whenever the next word would overflow
// it. A single word longer than MaxLineChars is emitted alone and flagged.
func (s *Segmenter) Segment(text string) []string {
	var pieces []string
	for _, sentence := range Sentences(text) {
		if track.CharCount(sentence) <= s.limits.MaxLineChars {
			pieces = append(pieces, sentence)
			continue
		}
		pieces = append(pieces, s.pack(sentence)...)
	}
	return pieces
}

// pack fills pieces of at most BufferChars runes from the words of sentence.
func (s *Segmenter) pack(sentence string) []string {
	var pieces []string
	var buf string

	flush := func() {
		if buf != "" {
			pieces = append(pieces, buf)
			buf = ""
		}
	}

	for _, word := range words(sentence) {
		if n := track.CharCount(word); n > s.limits.MaxLineChars {
			flush()
			s.logger.Warn("unsplittable token exceeds line limit",
				zap.String("token", preview(word)),
				zap.Int("chars", n),
				zap.Int("max_line_chars", s.limits.MaxLineChars))
			pieces = append(pieces, word)
			continue
		}

		candidate := word
		if buf != "" {
			candidate = buf + " " + word
		}
		if buf != "" && track.CharCount(candidate) > s.limits.BufferChars {
			flush()
			candidate = word
		}
		buf = candidate
	}
	flush()

	return pieces
}

// words splits on whitespace and glues punctuation-only tokens onto the word
// before them so a sentence's closing mark stays with its last word.
func words(sentence string) []string {
	fields := strings.Fields(sentence)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(out) > 0 && isPunctuationOnly(f) {
			out[len(out)-1] += " " + f
			continue
		}
		out = append(out, f)
	}
	return out
}

func isPunctuationOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return s != ""
}

// isTerminal reports whether r ends a sentence.
func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '？', '！':
		return true
	}
	return false
}

// isCloser reports whether r may trail a terminal mark in the same sentence.
func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’', '」', '』', '》', '〉', '）':
		return true
	}
	return false
}

var spaceRun = regexp.MustCompile(`\s+`)

// Sentences splits text after runs of sentence-terminal punctuation,
// keeping the punctuation (and any closing quote) with the sentence it ends.
// Whitespace inside each sentence is collapsed to single spaces.
func Sentences(text string) []string {
	var out []string
	var b strings.Builder

	emit := func() {
		sent := strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
		if sent != "" {
			out = append(out, sent)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if !isTerminal(runes[i]) {
			continue
		}
		for i+1 < len(runes) && (isTerminal(runes[i+1]) || isCloser(runes[i+1])) {
			i++
			b.WriteRune(runes[i])
		}
		// A period between two non-space runes (3.5, e.g) does not end a sentence.
		if runes[i] == '.' && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		emit()
	}
	emit()

	return out
}
