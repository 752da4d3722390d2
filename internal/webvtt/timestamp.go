package webvtt

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrInvalidTimestamp indicates a string is not a WebVTT timestamp.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// millis converts seconds to whole milliseconds, rounding half away from zero.
func millis(sec float64) int64 {
	return int64(math.Round(sec * 1000))
}

// seconds converts milliseconds back to seconds.
func seconds(ms int64) float64 {
	return float64(ms) / 1000
}

// FormatTimestamp renders sec as HH:MM:SS.mmm. Hours are zero-padded to two
// digits and not wrapped at 24. Negative values render as zero.
func FormatTimestamp(sec float64) string {
	ms := max(millis(sec), 0)
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

var timestampRe = regexp.MustCompile(`^(?:(\d{2,}):)?([0-5]\d):([0-5]\d)\.(\d{3})$`)

// ParseTimestamp parses HH:MM:SS.mmm (hours optional) into seconds.
func ParseTimestamp(s string) (float64, error) {
	m := timestampRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidTimestamp)
	}
	var h int64
	if m[1] != "" {
		var err error
		if h, err = strconv.ParseInt(m[1], 10, 64); err != nil {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidTimestamp)
		}
	}
	mins, _ := strconv.ParseInt(m[2], 10, 64)
	secs, _ := strconv.ParseInt(m[3], 10, 64)
	ms, _ := strconv.ParseInt(m[4], 10, 64)
	return seconds(((h*60+mins)*60+secs)*1000 + ms), nil
}
