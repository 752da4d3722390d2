package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alnah/go-subtitle/internal/format"
	"github.com/alnah/go-subtitle/internal/pipeline"
	"github.com/alnah/go-subtitle/internal/webvtt"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws rows under headers. Short rows are padded.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// printKV renders a two-column metric table.
func printKV(w io.Writer, title string, rows [][]string) {
	_, _ = fmt.Fprintln(w, title)
	_, _ = fmt.Fprintln(w, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func printSplitStats(w io.Writer, s pipeline.SplitStats) {
	p := s.Pieces
	printKV(w, "Split", [][]string{
		{"Subtitles", fmt.Sprint(p.Count)},
		{"Batches", fmt.Sprint(s.Batches)},
		{"Fallback batches", fmt.Sprint(s.FallbackBatches)},
		{"Re-segmented pieces", fmt.Sprint(s.Resegmented)},
		{"Average chars", fmt.Sprintf("%.1f", p.AvgChars)},
		{"Max chars", fmt.Sprint(p.MaxChars)},
		{"Max lines", fmt.Sprint(p.MaxLines)},
		{"Over limit", fmt.Sprintf("%d (%s)", p.OverLimit, format.Percent(p.OverLimit, p.Count))},
	})
}

func printTimingStats(w io.Writer, s pipeline.TimingStats) {
	fallback := "no"
	if s.Fallback {
		fallback = "yes"
	}
	printKV(w, "Align", [][]string{
		{"Subtitles", fmt.Sprint(s.Cues)},
		{"Measured", fmt.Sprintf("%d (%s)", s.Measured, format.Percent(s.Measured, s.Cues))},
		{"Estimated", fmt.Sprintf("%d (%s)", s.Estimated, format.Percent(s.Estimated, s.Cues))},
		{"Proportional fallback", fallback},
		{"Average duration", format.Seconds(s.AvgDuration)},
		{"Shortest", format.Seconds(s.MinDuration)},
		{"Longest", format.Seconds(s.MaxDuration)},
		{"Total", format.Seconds(s.Total)},
	})
}

func printGroupStats(w io.Writer, s pipeline.GroupStats) {
	printKV(w, "Group", [][]string{
		{"Groups", fmt.Sprint(s.Groups)},
		{"Accepted", fmt.Sprint(s.Accepted)},
		{"Synthesized", fmt.Sprint(s.Synthesized)},
		{"Rejected proposals", fmt.Sprint(s.Skipped)},
		{"Unparsed lines", fmt.Sprint(s.ParseSkips)},
		{"Average duration", format.Seconds(s.AvgDuration)},
		{"Average subtitles", fmt.Sprintf("%.1f", s.AvgCues)},
	})
}

// printCheckReport prints a structural check summary and its issues.
func printCheckReport(w io.Writer, r webvtt.Report) {
	status := "valid"
	if !r.Valid {
		status = fmt.Sprintf("%d issue(s)", len(r.Issues))
	}
	_, _ = fmt.Fprintf(w, "Cues: %d, %s\n", r.Count, status)
	if len(r.Issues) == 0 {
		return
	}
	rows := make([][]string, len(r.Issues))
	for i, issue := range r.Issues {
		rows[i] = []string{fmt.Sprint(i + 1), issue}
	}
	_, _ = fmt.Fprintln(w, renderTable([]string{"#", "Issue"}, rows, []columnAlignment{alignRight, alignLeft}))
}
