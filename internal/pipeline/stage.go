package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Stage identifies one step of a run. Stages execute in declaration order.
type Stage int

const (
	StageSplit Stage = iota + 1
	StageAlign
	StageCaption
	StageGroup
)

var stageNames = map[Stage]string{
	StageSplit:   "split",
	StageAlign:   "align",
	StageCaption: "caption",
	StageGroup:   "group",
}

// Stages returns every stage in execution order.
func Stages() []Stage {
	return []Stage{StageSplit, StageAlign, StageCaption, StageGroup}
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ParseStage maps a stage name to its Stage. The empty string means StageSplit.
func ParseStage(name string) (Stage, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StageSplit, nil
	}
	for _, s := range Stages() {
		if stageNames[s] == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w %q (expected split, align, caption or group)", ErrInvalidStage, name)
}

// Artifact file names inside an output directory.
const (
	SplitFile         = "split.json"
	TranscriptionFile = "transcription.json"
	TimedFile         = "timed.json"
	CaptionFile       = "podcast.vtt"
	GroupFile         = "groups.json"
	GroupTSVFile      = "groups.txt"
	lockFile          = ".subtitle.lock"
)

// Layout resolves artifact paths under one output directory.
type Layout struct {
	Dir string
}

func (l Layout) Split() string         { return filepath.Join(l.Dir, SplitFile) }
func (l Layout) Transcription() string { return filepath.Join(l.Dir, TranscriptionFile) }
func (l Layout) Timed() string         { return filepath.Join(l.Dir, TimedFile) }
func (l Layout) Caption() string       { return filepath.Join(l.Dir, CaptionFile) }
func (l Layout) Groups() string        { return filepath.Join(l.Dir, GroupFile) }
func (l Layout) GroupTSV() string      { return filepath.Join(l.Dir, GroupTSVFile) }
func (l Layout) Lock() string          { return filepath.Join(l.Dir, lockFile) }

// Dump returns the path of an integrity dump for one split batch.
func (l Layout) Dump(runID string, batch int) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return filepath.Join(l.Dir, fmt.Sprintf("integrity-%s-batch%03d.json", runID, batch))
}

// Outputs returns the artifacts a stage writes.
func (l Layout) Outputs(s Stage) []string {
	switch s {
	case StageSplit:
		return []string{l.Split()}
	case StageAlign:
		return []string{l.Transcription(), l.Timed()}
	case StageCaption:
		return []string{l.Caption()}
	case StageGroup:
		return []string{l.Groups(), l.GroupTSV()}
	default:
		return nil
	}
}
