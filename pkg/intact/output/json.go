package output

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/intact-sh/intact/pkg/intact/types"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Meta     jsonMeta      `json:"meta"`
	Findings []jsonFinding `json:"findings"`
	Summary  jsonSummary   `json:"summary"`
}

// jsonMeta describes the run.
type jsonMeta struct {
	Root      string    `json:"root"`
	Algorithm string    `json:"algorithm"`
	Backend   string    `json:"backend"`
	Workers   int       `json:"workers"`
	ReadOnly  bool      `json:"read_only"`
	Start     time.Time `json:"start"`
}

// jsonFinding represents one finding.
type jsonFinding struct {
	Kind    string     `json:"kind"`
	Path    string     `json:"path"`
	Detail  string     `json:"detail,omitempty"`
	ModTime *time.Time `json:"mod_time,omitempty"`
}

// jsonSummary carries the counters with a readable duration.
type jsonSummary struct {
	Directories      int    `json:"directories"`
	DirsSkipped      int    `json:"dirs_skipped"`
	Files            int    `json:"files"`
	FilesSkipped     int    `json:"files_skipped"`
	FilesHashed      int    `json:"files_hashed"`
	BytesHashed      int64  `json:"bytes_hashed"`
	New              int    `json:"new"`
	Matched          int    `json:"matched"`
	Drifted          int    `json:"drifted"`
	Stale            int    `json:"stale"`
	Vanished         int    `json:"vanished"`
	HashFailures     int    `json:"hash_failures"`
	ManifestsWritten int    `json:"manifests_written"`
	WriteFailures    int    `json:"write_failures"`
	Warnings         int    `json:"warnings"`
	Duration         string `json:"duration"`
	Interrupted      bool   `json:"interrupted"`
}

// JSONFormatter renders the report as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the rendered report to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildOutput(r))
}

// buildOutput converts a report to the serializable structure shared
// by the json and yaml formatters.
func buildOutput(r *types.Report) jsonOutput {
	findings := make([]jsonFinding, len(r.Findings))
	for i, finding := range r.Findings {
		jf := jsonFinding{
			Kind:   string(finding.Kind),
			Path:   finding.Path,
			Detail: finding.Detail,
		}
		if !finding.ModTime.IsZero() {
			mt := finding.ModTime
			jf.ModTime = &mt
		}
		findings[i] = jf
	}

	s := r.Summary
	return jsonOutput{
		Meta: jsonMeta{
			Root:      r.Root,
			Algorithm: r.Algorithm,
			Backend:   r.Backend,
			Workers:   r.Workers,
			ReadOnly:  r.ReadOnly,
			Start:     r.Start,
		},
		Findings: findings,
		Summary: jsonSummary{
			Directories:      s.Directories,
			DirsSkipped:      s.DirsSkipped,
			Files:            s.Files,
			FilesSkipped:     s.FilesSkipped,
			FilesHashed:      s.FilesHashed,
			BytesHashed:      s.BytesHashed,
			New:              s.New,
			Matched:          s.Matched,
			Drifted:          s.Drifted,
			Stale:            s.Stale,
			Vanished:         s.Vanished,
			HashFailures:     s.HashFailures,
			ManifestsWritten: s.ManifestsWritten,
			WriteFailures:    s.WriteFailures,
			Warnings:         s.Warnings(),
			Duration:         s.Duration.String(),
			Interrupted:      s.Interrupted,
		},
	}
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
