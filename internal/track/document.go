package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SplitItem is one untimed subtitle produced by the split stage.
type SplitItem struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	CharCount int    `json:"char_count"`
	LineCount int    `json:"line_count"`
}

// SplitDocument is the output of the split stage.
type SplitDocument struct {
	TotalSubtitles int         `json:"total_subtitles"`
	Subtitles      []SplitItem `json:"subtitles"`
}

// NewSplitDocument numbers pieces from 1 and records their size.
func NewSplitDocument(pieces []string) SplitDocument {
	items := make([]SplitItem, len(pieces))
	for i, p := range pieces {
		items[i] = SplitItem{
			Index:     i + 1,
			Text:      p,
			CharCount: CharCount(p),
			LineCount: strings.Count(p, "\n") + 1,
		}
	}
	return SplitDocument{TotalSubtitles: len(items), Subtitles: items}
}

// Texts returns the subtitle texts in order.
func (d SplitDocument) Texts() []string {
	out := make([]string, len(d.Subtitles))
	for i, s := range d.Subtitles {
		out[i] = s.Text
	}
	return out
}

// Validate checks the declared total against the item count.
func (d SplitDocument) Validate() error {
	if d.TotalSubtitles != len(d.Subtitles) {
		return fmt.Errorf("total_subtitles %d but %d items: %w", d.TotalSubtitles, len(d.Subtitles), ErrInvalidDocument)
	}
	return nil
}

// TimedDocument is the output of the align stage.
type TimedDocument struct {
	TotalSubtitles int     `json:"total_subtitles"`
	AudioDuration  float64 `json:"audio_duration"`
	Subtitles      []Cue   `json:"subtitles"`
}

// NewTimedDocument wraps timed cues.
func NewTimedDocument(cues []Cue, audioDuration float64) TimedDocument {
	return TimedDocument{TotalSubtitles: len(cues), AudioDuration: audioDuration, Subtitles: cues}
}

// Validate checks the declared total and that every cue is timed.
func (d TimedDocument) Validate() error {
	if d.TotalSubtitles != len(d.Subtitles) {
		return fmt.Errorf("total_subtitles %d but %d items: %w", d.TotalSubtitles, len(d.Subtitles), ErrInvalidDocument)
	}
	for i, c := range d.Subtitles {
		if c.Start < 0 || c.End < 0 {
			return fmt.Errorf("subtitle %d has negative timing: %w", i+1, ErrInvalidDocument)
		}
	}
	return nil
}

// GroupDocument is the output of the group stage.
type GroupDocument struct {
	TotalGroups int     `json:"total_groups"`
	Groups      []Group `json:"groups"`
}

// NewGroupDocument wraps reconciled groups.
func NewGroupDocument(groups []Group) GroupDocument {
	return GroupDocument{TotalGroups: len(groups), Groups: groups}
}

// Validate checks the declared total against the item count.
func (d GroupDocument) Validate() error {
	if d.TotalGroups != len(d.Groups) {
		return fmt.Errorf("total_groups %d but %d items: %w", d.TotalGroups, len(d.Groups), ErrInvalidDocument)
	}
	return nil
}

// TranscriptionDocument holds the speech model's chunked output.
type TranscriptionDocument struct {
	TotalChunks   int     `json:"total_chunks"`
	AudioDuration float64 `json:"audio_duration"`
	Chunks        []Chunk `json:"chunks"`
}

// NewTranscriptionDocument wraps chunks. The audio duration is the end of the last chunk.
func NewTranscriptionDocument(chunks []Chunk) TranscriptionDocument {
	var total float64
	if len(chunks) > 0 {
		total = chunks[len(chunks)-1].End
	}
	return TranscriptionDocument{TotalChunks: len(chunks), AudioDuration: total, Chunks: chunks}
}

// Validate checks ordering and contiguity of chunks.
func (d TranscriptionDocument) Validate() error {
	if d.TotalChunks != len(d.Chunks) {
		return fmt.Errorf("total_chunks %d but %d items: %w", d.TotalChunks, len(d.Chunks), ErrInvalidDocument)
	}
	for i := 1; i < len(d.Chunks); i++ {
		if d.Chunks[i].Start < d.Chunks[i-1].End-chunkTolerance {
			return fmt.Errorf("chunk %d overlaps chunk %d: %w", i, i-1, ErrInvalidDocument)
		}
	}
	return nil
}

// chunkTolerance absorbs float noise between consecutive chunk bounds.
const chunkTolerance = 1e-3

// ReadJSON decodes the JSON document at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified stage document
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %v: %w", path, err, ErrInvalidDocument)
	}
	return nil
}

// WriteJSON encodes v as indented JSON and writes it to path.
// Non-ASCII text is written as-is.
func WriteJSON(path string, v any, overwrite bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFile(path, append(data, '\n'), overwrite)
}

// WriteFile writes data to path through a temporary file in the same
// directory, renamed into place once fully written. Unless overwrite is set,
// an existing destination fails with ErrOutputExists.
func WriteFile(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrOutputExists)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := func() error {
		defer func() { _ = tmp.Close() }()
		if _, err := tmp.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return tmp.Sync()
	}()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return writeErr
	}

	// #nosec G302 -- stage artifacts are user-readable outputs
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
