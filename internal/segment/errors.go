package segment

import (
	"errors"
	"fmt"
)

// ErrConstraintViolation indicates a piece exceeds the line-count or
// per-line character limits.
var ErrConstraintViolation = errors.New("constraint violation")

// ViolationError describes which limit a piece broke.
type ViolationError struct {
	Piece       string
	Lines       int
	LongestLine int
	Limits      Limits
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s: %d lines (max %d), longest line %d chars (max %d): %q",
		ErrConstraintViolation, e.Lines, e.Limits.MaxLines, e.LongestLine, e.Limits.MaxLineChars, preview(e.Piece))
}

func (e *ViolationError) Unwrap() error {
	return ErrConstraintViolation
}

// preview shortens s for error messages.
func preview(s string) string {
	r := []rune(s)
	if len(r) <= 30 {
		return s
	}
	return string(r[:30]) + "..."
}
