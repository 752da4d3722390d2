package pipeline

import (
	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/track"
	"github.com/alnah/go-subtitle/internal/webvtt"
)

// CaptionResult is the outcome of the caption stage.
type CaptionResult struct {
	Content string
	Report  webvtt.Report
	// Adjusted counts cues whose timing Repair changed.
	Adjusted int
}

// Caption serializes timed cues as WebVTT, repairing overlaps and short
// cues first unless repair is false, then checks the output structure.
// Structural issues are reported, never returned as an error.
func (p *Pipeline) Caption(timed track.TimedDocument, repair bool) CaptionResult {
	cues := timed.Subtitles
	var res CaptionResult
	if repair {
		fixed := webvtt.Repair(cues, p.policy.Caption.MinDuration)
		for i := range fixed {
			if fixed[i].Start != cues[i].Start || fixed[i].End != cues[i].End {
				res.Adjusted++
			}
		}
		cues = fixed
	}

	res.Content = webvtt.Serialize(cues)
	res.Report = webvtt.Check(res.Content)

	log := p.logger.With(zap.String("stage", StageCaption.String()))
	for _, issue := range res.Report.Issues {
		log.Warn("caption issue", zap.String("reason", issue))
	}
	log.Info("captions serialized",
		zap.Int("cues", res.Report.Count),
		zap.Int("adjusted", res.Adjusted),
		zap.Bool("valid", res.Report.Valid))
	return res
}
