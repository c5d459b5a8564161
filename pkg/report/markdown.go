package report

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Report as Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Video Description\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	// Source
	sb.WriteString("## Source\n\n")
	sb.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&sb, "| URL | %s |\n", escapeCell(r.Source.URL))
	if r.Source.Description != "" {
		fmt.Fprintf(&sb, "| Format | %s (%s) |\n", escapeCell(r.Source.Description), r.Source.Format)
	}
	if r.RunID != "" {
		fmt.Fprintf(&sb, "| Run | %s |\n", r.RunID)
	}
	fmt.Fprintf(&sb, "| Elapsed | %d ms |\n", r.ElapsedMs)
	sb.WriteString("\n")

	if r.Err != "" {
		sb.WriteString("## Error\n\n")
		fmt.Fprintf(&sb, "```\n%s\n```\n\n", r.Err)
	}

	if r.Summary != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(r.Summary)
		sb.WriteString("\n\n")
	}

	// Captions
	if len(r.Captions) > 0 {
		sb.WriteString("## Captions\n\n")
		sb.WriteString("| Frame | Confidence | Caption |\n|------:|-----------:|---------|\n")
		for _, c := range r.Captions {
			fmt.Fprintf(&sb, "| %d | %.2f | %s |\n", c.FrameIndex, c.Confidence, escapeCell(c.Text))
		}
		sb.WriteString("\n")
	}

	// Frames
	sb.WriteString("## Frames\n\n")
	sb.WriteString("| Received | Skipped | Kept | Accepted | Rejected | Failed |\n")
	sb.WriteString("|---------:|--------:|-----:|---------:|---------:|-------:|\n")
	s := r.Frames
	fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d | %d |\n\n", s.Received, s.Skipped, s.Kept, s.Accepted, s.Rejected, s.Failed)
	if r.Partial {
		fmt.Fprintf(&sb, "> Decoding stopped early: %s\n\n", r.StopReason)
	}

	if len(r.Timings) > 0 {
		sb.WriteString("## Timings\n\n")
		sb.WriteString("| Stage | Time |\n|-------|-----:|\n")
		for _, t := range r.Timings {
			fmt.Fprintf(&sb, "| %s | %d ms |\n", t.Stage, t.Ms)
		}
		sb.WriteString("\n")
	}

	// Settings
	sb.WriteString("## Settings\n\n")
	sb.WriteString("| Setting | Value |\n|---------|-------|\n")
	fmt.Fprintf(&sb, "| Threshold | %.2f |\n", r.Settings.Threshold)
	fmt.Fprintf(&sb, "| Min confidence | %.2f |\n", r.Settings.MinConfidence)
	fmt.Fprintf(&sb, "| Max captions | %d |\n", r.Settings.MaxCaptions)
	if r.Settings.CaptionModel != "" {
		fmt.Fprintf(&sb, "| Caption model | %s |\n", r.Settings.CaptionModel)
	}
	if r.Settings.SummaryModel != "" {
		fmt.Fprintf(&sb, "| Summary model | %s |\n", r.Settings.SummaryModel)
	}

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// Ensure MarkdownFormatter implements Formatter
var _ Formatter = (*MarkdownFormatter)(nil)
