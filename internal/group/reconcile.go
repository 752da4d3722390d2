package group

import (
	"fmt"
	"sort"

	"github.com/alnah/go-subtitle/internal/track"
)

// Defaults for reconciliation.
const (
	DefaultMinDuration = 3.0
	DefaultFillerTopic = "추가 내용"
)

// Policy configures Reconcile.
type Policy struct {
	// MinDuration rejects oracle groups shorter than this many seconds.
	MinDuration float64
	// FillerTopic labels groups synthesized for uncovered cues.
	FillerTopic string
}

// DefaultPolicy returns the standard reconciliation policy.
func DefaultPolicy() Policy {
	return Policy{MinDuration: DefaultMinDuration, FillerTopic: DefaultFillerTopic}
}

// Skip records a proposal Reconcile rejected.
type Skip struct {
	Proposal Proposal
	Reason   string
}

// Report summarizes a reconciliation.
type Report struct {
	Accepted    int
	Synthesized int
	Skipped     []Skip
}

// Reconcile maps proposals onto cues and returns groups that cover every
// cue index exactly once.
//
// Proposals are taken in order. Ranges are clipped to the cue list; a
// proposal is skipped if nothing is left after clipping, if it shares an
// index with an accepted group, or if it lasts less than MinDuration.
// Every maximal run of unclaimed indices then becomes a synthesized group
// tagged with FillerTopic. Groups are sorted by start time and numbered
// from 1.
func Reconcile(proposals []Proposal, cues []track.Cue, p Policy) ([]track.Group, Report) {
	var rep Report
	if len(cues) == 0 {
		for _, pr := range proposals {
			rep.Skipped = append(rep.Skipped, Skip{Proposal: pr, Reason: "no cues"})
		}
		return nil, rep
	}

	claimed := make([]bool, len(cues))
	var groups []track.Group

	for _, pr := range proposals {
		first := max(pr.First-1, 0)
		last := min(pr.Last-1, len(cues)-1)
		if first > last {
			rep.Skipped = append(rep.Skipped, Skip{Proposal: pr,
				Reason: fmt.Sprintf("range %d-%d outside 1-%d", pr.First, pr.Last, len(cues))})
			continue
		}

		indices := make([]int, 0, last-first+1)
		overlap := false
		for i := first; i <= last; i++ {
			overlap = overlap || claimed[i]
			indices = append(indices, i)
		}
		if overlap {
			rep.Skipped = append(rep.Skipped, Skip{Proposal: pr, Reason: "overlaps an accepted group"})
			continue
		}

		g := track.NewGroup(cues, indices, pr.Topic)
		if g.Duration < p.MinDuration {
			rep.Skipped = append(rep.Skipped, Skip{Proposal: pr,
				Reason: fmt.Sprintf("lasts %.2fs, under %.2fs", g.Duration, p.MinDuration)})
			continue
		}

		for _, i := range indices {
			claimed[i] = true
		}
		groups = append(groups, g)
		rep.Accepted++
	}

	for _, run := range unclaimedRuns(claimed) {
		g := track.NewGroup(cues, run, p.FillerTopic)
		g.Synthesized = true
		groups = append(groups, g)
		rep.Synthesized++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].StartTime != groups[j].StartTime {
			return groups[i].StartTime < groups[j].StartTime
		}
		return groups[i].SubtitleIndices[0] < groups[j].SubtitleIndices[0]
	})
	for i := range groups {
		groups[i].GroupID = i + 1
	}

	return groups, rep
}

// unclaimedRuns partitions the unclaimed indices into maximal runs of
// consecutive indices.
func unclaimedRuns(claimed []bool) [][]int {
	var runs [][]int
	var cur []int
	for i, c := range claimed {
		if c {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, i)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}
