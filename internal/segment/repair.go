package segment

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	blankLine = regexp.MustCompile(`\n[ \t]*\n`)
	// fenceLine matches a Markdown code fence the oracle may wrap its reply in.
	fenceLine = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z]*[ \t]*$")
)

// ParseResponse splits an oracle reply into pieces. Pieces are separated by
// blank lines; single line breaks inside a piece are kept as cue lines.
// Surrounding whitespace, empty lines and code fence lines are dropped.
func ParseResponse(reply string) []string {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")
	reply = fenceLine.ReplaceAllString(reply, "")

	var pieces []string
	for _, block := range blankLine.Split(reply, -1) {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pieces = append(pieces, strings.Join(lines, "\n"))
		}
	}
	return pieces
}

// Result reports what Repair did.
type Result struct {
	Pieces []string
	// Resegmented counts oracle pieces replaced by the fallback.
	Resegmented int
	// FullFallback is set when the oracle returned nothing usable and the
	// whole text went through the fallback.
	FullFallback bool
	// Oversized counts output pieces that still break the limits.
	Oversized int
}

// Repair keeps every proposed piece that satisfies the limits and replaces
// each offending piece by its fallback segmentation, in place. With no
// proposal at all, the whole original text is segmented.
//
// In strict mode a piece the fallback cannot bring within limits fails with
// a *ViolationError; otherwise it is flagged and kept.
func (s *Segmenter) Repair(original string, proposed []string) (Result, error) {
	var res Result

	if len(proposed) == 0 {
		res.FullFallback = true
		s.logger.Info("no usable split proposal, segmenting whole text")
		res.Pieces = s.Segment(original)
	} else {
		res.Pieces = make([]string, 0, len(proposed))
		for _, piece := range proposed {
			if err := s.limits.Check(piece); err == nil {
				res.Pieces = append(res.Pieces, piece)
				continue
			}
			s.logger.Debug("re-segmenting piece over limits", zap.String("piece", preview(piece)))
			res.Resegmented++
			res.Pieces = append(res.Pieces, s.Segment(piece)...)
		}
	}

	for _, piece := range res.Pieces {
		if err := s.limits.Check(piece); err != nil {
			if s.strict {
				return res, err
			}
			res.Oversized++
		}
	}

	return res, nil
}
