package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ArtifactStatus describes one stage artifact on disk.
type ArtifactStatus struct {
	Stage   Stage
	Name    string
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// StatusReport describes an output directory.
type StatusReport struct {
	Dir       string
	Locked    bool
	Artifacts []ArtifactStatus
}

// Status inspects the artifacts of every stage in dir. A missing directory
// is reported as having no artifacts.
func Status(dir string) (StatusReport, error) {
	layout := Layout{Dir: dir}
	rep := StatusReport{Dir: dir}

	for _, s := range Stages() {
		for _, path := range layout.Outputs(s) {
			a := ArtifactStatus{Stage: s, Name: filepath.Base(path), Path: path}
			info, err := os.Stat(path)
			switch {
			case err == nil:
				a.Exists = true
				a.Size = info.Size()
				a.ModTime = info.ModTime()
			case !errors.Is(err, fs.ErrNotExist):
				return rep, fmt.Errorf("stat %s: %w", path, err)
			}
			rep.Artifacts = append(rep.Artifacts, a)
		}
	}

	if _, err := os.Stat(layout.Lock()); err == nil {
		fl := flock.New(layout.Lock())
		ok, err := fl.TryRLock()
		if err != nil {
			return rep, fmt.Errorf("probe lock: %w", err)
		}
		if ok {
			_ = fl.Unlock()
		}
		rep.Locked = !ok
	}
	return rep, nil
}

// Resumable returns the latest stage whose inputs are all on disk, or
// StageSplit when nothing can be resumed.
func (r StatusReport) Resumable() Stage {
	have := make(map[string]bool, len(r.Artifacts))
	for _, a := range r.Artifacts {
		have[a.Name] = a.Exists
	}
	switch {
	case have[TimedFile]:
		return StageCaption
	case have[SplitFile]:
		return StageAlign
	default:
		return StageSplit
	}
}
