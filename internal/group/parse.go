// Package group turns oracle-proposed cue ranges into a complete, disjoint
// set of topic groups covering every cue.
package group

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Outcome tags a parsed oracle line.
type Outcome int

const (
	// Parsed means the line yielded a Proposal.
	Parsed Outcome = iota + 1
	// Skipped means the line was not a usable group line; see Reason.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Proposal is one group suggested by the oracle. First and Last are 1-based
// and inclusive.
type Proposal struct {
	Label string
	First int
	Last  int
	Topic string
}

// ParseResult is the tagged outcome of parsing one reply line.
type ParseResult struct {
	Line     int // 1-based line number in the reply
	Raw      string
	Outcome  Outcome
	Proposal Proposal
	Reason   string
}

// groupLine matches "<label>: <first>-<last> | <topic>". The label may be
// omitted and a single index may stand for a range. Markdown bullets and bold markers around
// the label and range are tolerated, as are full-width colon and dash
// variants.
var groupLine = regexp.MustCompile(
	`^(?:[-*•]\s+)?(?:\*\*)?\s*(?:([^:：|]+?)\s*(?:\*\*)?\s*[:：]\s*)?(?:\*\*)?\s*` +
		`(\d+)(?:\s*[-–~]\s*(\d+))?\s*(?:\*\*)?\s*\|\s*(.*?)\s*$`)

// ParseLine parses a single reply line.
func ParseLine(line string) ParseResult {
	raw := line
	line = strings.TrimSpace(line)
	res := ParseResult{Raw: raw, Outcome: Skipped}

	switch {
	case line == "":
		res.Reason = "empty line"
		return res
	case !strings.Contains(line, "|"):
		res.Reason = "no topic separator \"|\""
		return res
	}

	m := groupLine.FindStringSubmatch(line)
	if m == nil {
		res.Reason = "does not match \"<label>: <start>-<end> | <topic>\""
		return res
	}

	first, err := strconv.Atoi(m[2])
	if err != nil {
		res.Reason = fmt.Sprintf("start index %q is not a number", m[2])
		return res
	}
	last := first
	if m[3] != "" {
		if last, err = strconv.Atoi(m[3]); err != nil {
			res.Reason = fmt.Sprintf("end index %q is not a number", m[3])
			return res
		}
	}

	switch {
	case first < 1:
		res.Reason = fmt.Sprintf("start index %d is not 1-based", first)
		return res
	case last < first:
		res.Reason = fmt.Sprintf("start index %d after end index %d", first, last)
		return res
	}

	res.Outcome = Parsed
	res.Proposal = Proposal{
		Label: strings.Trim(m[1], "*# "),
		First: first,
		Last:  last,
		Topic: strings.Trim(m[4], "* "),
	}
	return res
}

// ParseResponse parses every non-blank line of an oracle reply.
func ParseResponse(reply string) []ParseResult {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")

	var results []ParseResult
	for i, line := range strings.Split(reply, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		r := ParseLine(line)
		r.Line = i + 1
		results = append(results, r)
	}
	return results
}

// Proposals returns the proposals of every Parsed result, in order.
func Proposals(results []ParseResult) []Proposal {
	var out []Proposal
	for _, r := range results {
		if r.Outcome == Parsed {
			out = append(out, r.Proposal)
		}
	}
	return out
}
