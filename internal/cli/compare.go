package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alnah/go-subtitle/internal/format"
	"github.com/alnah/go-subtitle/internal/track"
	"github.com/alnah/go-subtitle/internal/webvtt"
)

// compareCues is how many leading cues are shown side by side.
const compareCues = 5

// CompareCmd creates the compare command.
func CompareCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "compare <old.vtt> <new.vtt>",
		Short:   "Compare two caption files",
		Long:    `Compare two WebVTT files: size, cue count, and the first cues side by side.`,
		Example: `  subtitle compare podcast_old.vtt podcast.vtt`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(env, args[0], args[1])
		},
	}
}

type captionFile struct {
	size int64
	cues []track.Cue
}

func readCaptionFile(path string) (captionFile, error) {
	if err := checkInput(path); err != nil {
		return captionFile{}, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified caption file
	if err != nil {
		return captionFile{}, fmt.Errorf("read captions: %w", err)
	}
	return captionFile{size: int64(len(data)), cues: webvtt.Parse(string(data))}, nil
}

func runCompare(env *Env, oldPath, newPath string) error {
	before, err := readCaptionFile(oldPath)
	if err != nil {
		return err
	}
	after, err := readCaptionFile(newPath)
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Size", format.Size(before.size), format.Size(after.size)},
		{"Cues", fmt.Sprint(len(before.cues)), fmt.Sprint(len(after.cues))},
		{"Ends at", format.Seconds(track.TotalDuration(before.cues)), format.Seconds(track.TotalDuration(after.cues))},
	}
	for i := 0; i < min(compareCues, max(len(before.cues), len(after.cues))); i++ {
		rows = append(rows, []string{fmt.Sprintf("#%d", i+1), cueAt(before.cues, i), cueAt(after.cues, i)})
	}

	_, _ = fmt.Fprintln(env.Stdout, renderTable([]string{"", oldPath, newPath}, rows, nil))
	return nil
}

func cueAt(cues []track.Cue, i int) string {
	if i >= len(cues) {
		return ""
	}
	c := cues[i]
	return fmt.Sprintf("%s  %s", webvtt.FormatTimestamp(c.Start), c.FlatText())
}
