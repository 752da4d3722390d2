package timing_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-subtitle/internal/timing"
	"github.com/alnah/go-subtitle/internal/track"
)

// Notes:
// - Alignment tests assert structure (confidence, contiguity, final end)
//   rather than interpolated values.

func cuesOf(texts ...string) []track.Cue {
	return track.FromTexts(texts)
}

func assertTimingInvariants(t *testing.T, cues []track.Cue, total float64) {
	t.Helper()
	for i, c := range cues {
		if !(c.Start < c.End) {
			t.Errorf("cue %d: start %v >= end %v", c.Index, c.Start, c.End)
		}
		if i > 0 && c.Start < cues[i-1].End {
			t.Errorf("cue %d starts at %v before previous end %v", c.Index, c.Start, cues[i-1].End)
		}
	}
	if got := cues[len(cues)-1].End; got != total {
		t.Errorf("last end = %v, want %v", got, total)
	}
}

// ---------------------------------------------------------------------------
// Allocate
// ---------------------------------------------------------------------------

func TestAllocate_ClampsAndOverridesFinalEnd(t *testing.T) {
	t.Parallel()

	cues := cuesOf(strings.Repeat("a", 10), strings.Repeat("b", 30))
	got, err := timing.Allocate(cues, 10, timing.DefaultPolicy())
	if err != nil {
		t.Fatalf("Allocate() = %v", err)
	}

	// 10/40*10 = 2.5s; 30/40*10 = 7.5s clamped to 5s, then stretched to the end.
	if got[0].Start != 0 || got[0].End != 2.5 {
		t.Errorf("first cue = [%v, %v], want [0, 2.5]", got[0].Start, got[0].End)
	}
	if got[1].Start != 2.5 || got[1].End != 10 {
		t.Errorf("second cue = [%v, %v], want [2.5, 10]", got[1].Start, got[1].End)
	}
}

func TestAllocate_MinimumDuration(t *testing.T) {
	t.Parallel()

	cues := cuesOf("a", strings.Repeat("b", 99))
	got, err := timing.Allocate(cues, 10, timing.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Duration() != 0.5 {
		t.Errorf("short cue duration = %v, want 0.5", got[0].Duration())
	}
}

func TestAllocate_Invariants(t *testing.T) {
	t.Parallel()

	inputs := []struct {
		texts []string
		total float64
	}{
		{[]string{"one"}, 3},
		{[]string{"첫 번째 자막입니다", "두 번째", "세 번째 자막은\n두 줄입니다", "끝"}, 12.34},
		{[]string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff"}, 60},
		{[]string{"", ""}, 4},
	}

	for _, in := range inputs {
		got, err := timing.Allocate(cuesOf(in.texts...), in.total, timing.DefaultPolicy())
		if err != nil {
			t.Fatalf("Allocate(%q) = %v", in.texts, err)
		}
		assertTimingInvariants(t, got, in.total)
		for i := 1; i < len(got); i++ {
			if got[i].Start != got[i-1].End {
				t.Errorf("gap between cue %d and %d", i, i+1)
			}
		}
		for i, c := range got {
			if c.Index != i+1 || c.Text != in.texts[i] {
				t.Errorf("cue %d identity changed: %+v", i, c)
			}
			if c.Confidence != track.ConfidenceEstimated {
				t.Errorf("cue %d confidence = %q, want estimated", i, c.Confidence)
			}
		}
	}
}

func TestAllocate_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		got, err := timing.Allocate(nil, 10, timing.DefaultPolicy())
		if err != nil || got != nil {
			t.Errorf("Allocate(nil) = %v, %v", got, err)
		}
	})

	t.Run("non-positive duration", func(t *testing.T) {
		t.Parallel()
		_, err := timing.Allocate(cuesOf("a"), 0, timing.DefaultPolicy())
		if !errors.Is(err, timing.ErrInvalidDuration) {
			t.Errorf("Allocate() = %v, want ErrInvalidDuration", err)
		}
	})
}

func TestAllocate_MinimumDurationsExceedAudio(t *testing.T) {
	t.Parallel()

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = "짧은 자막"
	}
	cues := cuesOf(texts...)
	cues[3].Text = ""

	got, err := timing.Allocate(cues, 8, timing.DefaultPolicy())
	if err != nil {
		t.Fatalf("Allocate() = %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("len = %d, want %d", len(got), len(texts))
	}
	assertTimingInvariants(t, got, 8)
	if got[0].Start != 0 {
		t.Errorf("first start = %v, want 0", got[0].Start)
	}
	for i := 1; i < len(got); i++ {
		if math.Abs(got[i].Start-got[i-1].End) > 1e-9 {
			t.Errorf("gap between cue %d and %d", i-1, i)
		}
	}
}

// ---------------------------------------------------------------------------
// Ratio
// ---------------------------------------------------------------------------

func TestRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "xyz", 0},
		{"abcd", "bcde", 0.75},
		{"kitten", "sitting", 8.0 / 13.0},
		{"안녕하세요", "안녕하십니까", 6.0 / 11.0},
	}

	for _, tt := range tests {
		got := timing.Ratio([]rune(tt.a), []rune(tt.b))
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Aligner
// ---------------------------------------------------------------------------

var chunks = []track.Chunk{
	{Index: 0, Start: 0, End: 8, Text: "hello world this is a test"},
	{Index: 1, Start: 8, End: 16, Text: "of the alignment system today"},
}

func TestAlign_AllMatched(t *testing.T) {
	t.Parallel()

	cues := cuesOf("Hello world", "this is a test", "of the alignment", "System today")
	got, stats, err := timing.NewAligner().Align(cues, chunks, 16)
	if err != nil {
		t.Fatalf("Align() = %v", err)
	}

	if stats.Measured != 4 || stats.Estimated != 0 || stats.Fallback {
		t.Errorf("stats = %+v, want 4 measured", stats)
	}
	if got[0].Start != 0 {
		t.Errorf("first start = %v, want 0", got[0].Start)
	}
	assertTimingInvariants(t, got, 16)
}

func TestAlign_GapFilledProportionally(t *testing.T) {
	t.Parallel()

	cues := cuesOf("hello world", "zzzz qqqq xxxx", "of the alignment", "system today")
	got, stats, err := timing.NewAligner().Align(cues, chunks, 16)
	if err != nil {
		t.Fatalf("Align() = %v", err)
	}

	if stats.Measured != 3 || stats.Estimated != 1 {
		t.Errorf("stats = %+v, want 3 measured / 1 estimated", stats)
	}
	if got[1].Confidence != track.ConfidenceEstimated {
		t.Errorf("gap cue confidence = %q, want estimated", got[1].Confidence)
	}
	if got[1].Start != got[0].End || got[1].End != got[2].Start {
		t.Errorf("gap cue [%v, %v] not flush with neighbours %v / %v",
			got[1].Start, got[1].End, got[0].End, got[2].Start)
	}
	assertTimingInvariants(t, got, 16)
}

func TestAlign_NoMatchFallsBack(t *testing.T) {
	t.Parallel()

	cues := cuesOf("완전히 다른 내용", "전혀 관계없는 자막")
	got, stats, err := timing.NewAligner().Align(cues, chunks, 16)
	if err != nil {
		t.Fatalf("Align() = %v", err)
	}
	want, _ := timing.Allocate(cues, 16, timing.DefaultPolicy())

	if stats.Measured != 0 || stats.Fallback {
		t.Errorf("stats = %+v", stats)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cue %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAlign_CrowdedGapFallsBack(t *testing.T) {
	t.Parallel()

	texts := []string{"hello world"}
	for i := 0; i < 20; i++ {
		texts = append(texts, "zzzz qqqq xxxx")
	}
	texts = append(texts, "system today")

	got, stats, err := timing.NewAligner().Align(cuesOf(texts...), chunks, 16)
	if err != nil {
		t.Fatalf("Align() = %v", err)
	}
	if !stats.Fallback || stats.Measured != 0 {
		t.Errorf("stats = %+v, want full fallback", stats)
	}
	assertTimingInvariants(t, got, 16)
}

func TestAlign_NoChunks(t *testing.T) {
	t.Parallel()

	got, stats, err := timing.NewAligner().Align(cuesOf("a", "b"), nil, 4)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Estimated != 2 {
		t.Errorf("stats = %+v", stats)
	}
	assertTimingInvariants(t, got, 4)
}

func TestAlign_ExhaustedAudioWarns(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	texts := make([]string, 20)
	for i := range texts {
		texts[i] = "짧은 자막"
	}

	got, _, err := timing.NewAligner(timing.WithLogger(zap.New(core))).Align(cuesOf(texts...), nil, 8)
	if err != nil {
		t.Fatalf("Align() = %v", err)
	}
	assertTimingInvariants(t, got, 8)
	if n := logs.FilterMessageSnippet("minimum cue durations").Len(); n != 1 {
		t.Errorf("warnings = %d, want 1", n)
	}
}
