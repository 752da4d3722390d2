package prompt_test

import (
	"strings"
	"testing"

	"github.com/alnah/go-subtitle/internal/prompt"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	got := prompt.Split(prompt.SplitParams{MaxLineChars: 25, MaxLines: 3, Language: "ko"})

	for _, want := range []string{
		"at most 3 lines",
		"never exceeds 25 characters",
		"A blank line (two newlines) starts a new caption.",
		"The transcript is in Korean; keep it in Korean.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Split() missing %q", want)
		}
	}
}

func TestSplit_NoLanguage(t *testing.T) {
	t.Parallel()

	got := prompt.Split(prompt.SplitParams{MaxLineChars: 25, MaxLines: 3})
	if strings.Contains(got, "The transcript is in") {
		t.Error("Split() has a language instruction without a language")
	}
}

func TestGroup(t *testing.T) {
	t.Parallel()

	got := prompt.Group(prompt.GroupParams{
		CueCount: 120, TargetMin: 12, TargetMax: 18, SpanMinSeconds: 15, SpanMaxSeconds: 45, Language: "fr",
	})

	for _, want := range []string{
		"You are given 120 numbered",
		"Aim for 12 to 18 groups.",
		"between 15 and 45 seconds",
		`"GROUPn: first-last | topic"`,
		"Write topics in French.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Group() missing %q", want)
		}
	}
}
