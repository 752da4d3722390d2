package format_test

import (
	"testing"
	"time"

	"github.com/alnah/go-subtitle/internal/format"
)

func TestDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{61 * time.Second, "01:01"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
	}
	for _, tt := range tests {
		if got := format.Duration(tt.d); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sec  float64
		want string
	}{
		{-1, "00:00"},
		{12.9, "00:12"},
		{3723.4, "01:02:03"},
	}
	for _, tt := range tests {
		if got := format.Seconds(tt.sec); got != tt.want {
			t.Errorf("Seconds(%v) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 bytes"},
		{1023, "1023 bytes"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := format.Size(tt.n); got != tt.want {
			t.Errorf("Size(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	if got := format.Percent(1, 3); got != "33.3%" {
		t.Errorf("Percent(1, 3) = %q", got)
	}
	if got := format.Percent(1, 0); got != "-" {
		t.Errorf("Percent(1, 0) = %q", got)
	}
}
