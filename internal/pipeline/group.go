package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/group"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/track"
)

// GroupResult is the outcome of the group stage.
type GroupResult struct {
	Document track.GroupDocument
	TSV      string
	Report   group.Report
	// Unparsed holds reply lines that were not group lines.
	Unparsed []group.ParseResult
	Stats    GroupStats
}

// Group asks the oracle for topic windows and reconciles them onto the
// cues. Unparseable reply lines and rejected proposals are logged and
// skipped; every cue still ends up in exactly one group.
func (p *Pipeline) Group(ctx context.Context, timed track.TimedDocument) (GroupResult, error) {
	cues := timed.Subtitles
	log := p.logger.With(zap.String("stage", StageGroup.String()))

	var res GroupResult
	var proposals []group.Proposal
	if p.grouper != nil && len(cues) > 0 {
		reply, err := p.grouper.Group(ctx, group.Listing(cues), len(cues))
		switch {
		case errors.Is(err, oracle.ErrEmptyResponse):
			log.Warn("oracle returned no groups, using filler groups")
		case err != nil:
			return GroupResult{}, fmt.Errorf("group %d cues: %w", len(cues), err)
		default:
			results := group.ParseResponse(reply)
			for _, r := range results {
				if r.Outcome == group.Skipped {
					res.Unparsed = append(res.Unparsed, r)
					log.Debug("reply line skipped",
						zap.Int("line", r.Line), zap.String("reason", r.Reason))
				}
			}
			proposals = group.Proposals(results)
		}
	}

	groups, rep := group.Reconcile(proposals, cues, p.policy.GroupPolicy())
	for _, s := range rep.Skipped {
		log.Info("group proposal skipped",
			zap.String("group_label", s.Proposal.Label),
			zap.Int("first", s.Proposal.First),
			zap.Int("last", s.Proposal.Last),
			zap.String("reason", s.Reason))
	}

	res.Document = track.NewGroupDocument(groups)
	res.TSV = group.FormatTSV(groups)
	res.Report = rep
	res.Stats = groupStats(groups)
	res.Stats.Accepted = rep.Accepted
	res.Stats.Synthesized = rep.Synthesized
	res.Stats.Skipped = len(rep.Skipped)
	res.Stats.ParseSkips = len(res.Unparsed)
	log.Info("cues grouped",
		zap.Int("groups", len(groups)),
		zap.Int("accepted", rep.Accepted),
		zap.Int("synthesized", rep.Synthesized))
	return res, nil
}
