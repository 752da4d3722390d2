package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-subtitle/internal/integrity"
	"github.com/alnah/go-subtitle/internal/oracle"
	"github.com/alnah/go-subtitle/internal/segment"
	"github.com/alnah/go-subtitle/internal/track"
)

// SplitResult is the outcome of the split stage.
type SplitResult struct {
	Document track.SplitDocument
	Stats    SplitStats
}

// Batches groups the non-blank lines of a transcript, size lines at a time.
// Lines are trimmed; each batch joins its lines with "\n".
func Batches(transcript string, size int) []string {
	if size < 1 {
		size = 1
	}
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(transcript, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var batches []string
	for start := 0; start < len(lines); start += size {
		end := min(start+size, len(lines))
		batches = append(batches, strings.Join(lines[start:end], "\n"))
	}
	return batches
}

// Split turns a transcript into caption pieces. Batches go through the
// oracle one at a time; each batch's pieces are repaired against the limits
// and must reproduce the batch text exactly once whitespace is ignored.
//
// A content mismatch aborts the stage with a *integrity.MismatchError and,
// when a dump directory is set, a diagnostic dump. An oracle failure other
// than an empty reply aborts the stage as well.
func (p *Pipeline) Split(ctx context.Context, transcript string) (SplitResult, error) {
	batches := Batches(transcript, p.policy.Split.BatchLines)
	log := p.logger.With(zap.String("stage", StageSplit.String()))
	log.Info("splitting transcript", zap.Int("batches", len(batches)))

	var (
		pieces []string
		stats  SplitStats
	)
	for i, batch := range batches {
		n := i + 1
		if err := ctx.Err(); err != nil {
			return SplitResult{}, err
		}

		proposed, err := p.propose(ctx, batch)
		if err != nil {
			if !errors.Is(err, oracle.ErrEmptyResponse) {
				return SplitResult{}, fmt.Errorf("split batch %d/%d: %w", n, len(batches), err)
			}
			log.Warn("oracle returned no split, segmenting batch", zap.Int("batch", n))
		}

		res, err := p.segmenter.Repair(batch, proposed)
		if err != nil {
			return SplitResult{}, fmt.Errorf("split batch %d/%d: %w", n, len(batches), err)
		}
		if err := p.checkIntegrity(batch, res.Pieces, n); err != nil {
			return SplitResult{}, fmt.Errorf("split batch %d/%d: %w", n, len(batches), err)
		}

		if res.FullFallback {
			stats.FallbackBatches++
		}
		stats.Resegmented += res.Resegmented
		if res.Resegmented > 0 || res.Oversized > 0 {
			log.Info("batch repaired",
				zap.Int("batch", n),
				zap.Int("resegmented", res.Resegmented),
				zap.Int("oversized", res.Oversized))
		}
		pieces = append(pieces, res.Pieces...)
	}

	stats.Batches = len(batches)
	stats.Pieces = PieceStats(pieces, p.segmenter.Limits())
	return SplitResult{Document: track.NewSplitDocument(pieces), Stats: stats}, nil
}

// propose asks the oracle for a split. Without an oracle there is no proposal.
func (p *Pipeline) propose(ctx context.Context, batch string) ([]string, error) {
	if p.splitter == nil {
		return nil, nil
	}
	reply, err := p.splitter.Split(ctx, batch)
	if err != nil {
		return nil, err
	}
	return segment.ParseResponse(reply), nil
}

func (p *Pipeline) checkIntegrity(batch string, pieces []string, n int) error {
	err := integrity.Check(batch, pieces)
	var mismatch *integrity.MismatchError
	if !errors.As(err, &mismatch) {
		return err
	}
	if p.dumpDir == "" {
		return err
	}
	path := Layout{Dir: p.dumpDir}.Dump(p.runID, n)
	if dumpErr := integrity.WriteDump(path, mismatch); dumpErr != nil {
		p.logger.Error("cannot write integrity dump", zap.String("path", path), zap.Error(dumpErr))
		return err
	}
	p.logger.Error("content mismatch", zap.Int("batch", n),
		zap.Int("first_diff", mismatch.FirstDiff), zap.String("dump", path))
	return fmt.Errorf("%w (dump: %s)", err, path)
}
