package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/intact-sh/intact/pkg/intact/types"
)

// PrettyFormatter renders reports with colors and styling using
// lipgloss, suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the rendered report to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatFindings(r))
	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")
	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(r *types.Report) string {
	var lines []string

	rootLabel := LabelStyle.Render("Root:")
	rootValue := ValueStyle.Render(r.Root)
	lines = append(lines, fmt.Sprintf("%s %s", rootLabel, rootValue))

	var infoParts []string
	infoParts = append(infoParts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Algorithm:"),
		ValueStyle.Render(fmt.Sprintf("%s (%s)", r.Algorithm, r.Backend))))
	infoParts = append(infoParts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Workers:"),
		ValueStyle.Render(fmt.Sprintf("%d", r.Workers))))
	if r.ReadOnly {
		infoParts = append(infoParts, WarningStyle.Render("read-only"))
	}
	lines = append(lines, strings.Join(infoParts, "  "))

	if r.Summary.Interrupted {
		lines = append(lines, WarningStyle.Bold(true).Render("Audit interrupted"))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatFindings renders findings grouped by kind, worst first.
func (f *PrettyFormatter) formatFindings(r *types.Report) string {
	if len(r.Findings) == 0 {
		return SuccessStyle.Render("  All tracked files verified") + "\n"
	}

	groups := groupFindings(r.Findings)
	var sb strings.Builder
	for _, kind := range kindOrder {
		findings := groups[kind]
		if len(findings) == 0 {
			continue
		}
		title := kindStyle(kind).Bold(true).Render(strings.ToUpper(string(kind)))
		sb.WriteString(fmt.Sprintf("  %s %s\n", title, MutedStyle.Render(fmt.Sprintf("(%d)", len(findings)))))
		for _, finding := range findings {
			sb.WriteString("    ")
			sb.WriteString(PathStyle.Render(finding.Path))
			if finding.Detail != "" {
				sb.WriteString("  ")
				sb.WriteString(MutedStyle.Render(finding.Detail))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// formatFooter builds the summary box.
func (f *PrettyFormatter) formatFooter(r *types.Report) string {
	s := r.Summary

	var parts []string
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Dirs:"),
		ValueStyle.Render(fmt.Sprintf("%d", s.Directories))))
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Hashed:"),
		CountStyle.Render(fmt.Sprintf("%d files, %s", s.FilesHashed, humanize.IBytes(uint64(s.BytesHashed))))))
	parts = append(parts, fmt.Sprintf("%s %s",
		LabelStyle.Render("Matched:"),
		SuccessStyle.Render(fmt.Sprintf("%d", s.Matched))))

	if warnings := s.Warnings(); warnings > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Warnings:"),
			WarningStyle.Render(fmt.Sprintf("%d", warnings))))
	}
	if s.ManifestsWritten > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Manifests:"),
			ValueStyle.Render(fmt.Sprintf("%d written", s.ManifestsWritten))))
	}
	parts = append(parts, MutedStyle.Render(formatDuration(s.Duration)))

	return FooterBox.Render(strings.Join(parts, "  "))
}

// formatDuration renders a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
