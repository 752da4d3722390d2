package segment

import (
	"strings"

	"github.com/alnah/go-subtitle/internal/track"
)

// Default limits for a caption piece.
const (
	DefaultMaxLineChars = 25
	DefaultMaxLines     = 3
	DefaultBufferChars  = 20
)

// Limits bounds the shape of a caption piece. Lengths count runes.
type Limits struct {
	// MaxLineChars is the hard cap on characters per physical line.
	MaxLineChars int
	// MaxLines is the hard cap on physical lines per piece.
	MaxLines int
	// BufferChars is the soft bound used when packing words in the fallback.
	BufferChars int
}

// DefaultLimits returns the standard caption limits.
func DefaultLimits() Limits {
	return Limits{
		MaxLineChars: DefaultMaxLineChars,
		MaxLines:     DefaultMaxLines,
		BufferChars:  DefaultBufferChars,
	}
}

// Check returns a *ViolationError if piece breaks l.
func (l Limits) Check(piece string) error {
	lines := strings.Split(piece, "\n")
	longest := 0
	for _, line := range lines {
		longest = max(longest, track.CharCount(strings.TrimSpace(line)))
	}
	if len(lines) > l.MaxLines || longest > l.MaxLineChars {
		return &ViolationError{Piece: piece, Lines: len(lines), LongestLine: longest, Limits: l}
	}
	return nil
}

// Conforms reports whether piece satisfies l.
func (l Limits) Conforms(piece string) bool {
	return l.Check(piece) == nil
}
