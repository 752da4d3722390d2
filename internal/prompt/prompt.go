// Package prompt builds the system prompts sent to the language-model
// oracle for splitting a transcript into captions and for grouping captions
// into topics.
package prompt

import (
	"fmt"
	"strings"

	"github.com/alnah/go-subtitle/internal/lang"
)

// SplitParams shapes the split prompt.
type SplitParams struct {
	MaxLineChars int
	MaxLines     int
	// Language is the transcript language code; empty omits the instruction.
	Language string
}

// GroupParams shapes the group prompt.
type GroupParams struct {
	CueCount       int
	TargetMin      int
	TargetMax      int
	SpanMinSeconds int
	SpanMaxSeconds int
	Language       string
}

const splitExample = `Hello everyone.

Welcome to the show, where
we talk about language

and how to learn it
a little every day.`

// Split returns the system prompt for the split oracle. The transcript is
// sent separately as the user message.
func Split(p SplitParams) string {
	var b strings.Builder
	b.WriteString("Split the podcast transcript you are given into subtitle captions.\n\n")
	b.WriteString("## Rules\n")
	fmt.Fprintf(&b, "1. A caption has at most %d lines; two lines is usually best.\n", p.MaxLines)
	fmt.Fprintf(&b, "2. A line never exceeds %d characters; 15 to 20 reads well.\n", p.MaxLineChars)
	b.WriteString("3. Break at complete phrases or clauses, following the natural rhythm of speech.\n")
	b.WriteString("4. Do not add, remove, reorder or correct any character of the transcript.\n\n")
	b.WriteString("## Line breaks\n")
	b.WriteString("- One newline moves to the next line of the same caption.\n")
	b.WriteString("- A blank line (two newlines) starts a new caption.\n\n")
	b.WriteString("## Example output\n```\n")
	b.WriteString(splitExample)
	b.WriteString("\n```\n\n")
	b.WriteString("Output only the split text, with no explanation.")
	if s := languageInstruction(p.Language, "The transcript is in %s; keep it in %s."); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

// Group returns the system prompt for the group oracle. The numbered cue
// listing is sent separately as the user message.
func Group(p GroupParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are given %d numbered, timed podcast subtitles. ", p.CueCount)
	b.WriteString("Group them into topics, each topic becoming one illustration.\n\n")
	b.WriteString("## Requirements\n")
	b.WriteString("- Each group is a semantically complete topic of consecutive subtitles.\n")
	fmt.Fprintf(&b, "- Aim for %d to %d groups.\n", p.TargetMin, p.TargetMax)
	fmt.Fprintf(&b, "- Keep each group between %d and %d seconds long.\n", p.SpanMinSeconds, p.SpanMaxSeconds)
	b.WriteString("- Never cut a sentence in the middle.\n\n")
	b.WriteString("## Output format (follow exactly)\n")
	b.WriteString("GROUP1: 1-6 | Introduction and today's theme\n")
	b.WriteString("GROUP2: 7-10 | Definition of the main idea\n")
	b.WriteString("...\n\n")
	b.WriteString(`- One group per line, only in the form "GROUPn: first-last | topic".` + "\n")
	b.WriteString("- Numbers are the 1-based subtitle numbers from the listing, inclusive.\n")
	b.WriteString("- No tables, no other text.")
	if s := languageInstruction(p.Language, "Write topics in %s."); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

// languageInstruction fills every %s in format with the display name of
// code. An empty code yields "".
func languageInstruction(code, format string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	name := lang.DisplayName(code)
	return strings.ReplaceAll(format, "%s", name)
}
