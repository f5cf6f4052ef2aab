package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/intact-sh/intact/pkg/intact/types"
)

// yamlOutput mirrors jsonOutput for YAML encoding.
type yamlOutput struct {
	Meta     yamlMeta      `yaml:"meta"`
	Findings []yamlFinding `yaml:"findings"`
	Summary  yamlSummary   `yaml:"summary"`
}

type yamlMeta struct {
	Root      string `yaml:"root"`
	Algorithm string `yaml:"algorithm"`
	Backend   string `yaml:"backend"`
	Workers   int    `yaml:"workers"`
	ReadOnly  bool   `yaml:"read_only"`
	Start     string `yaml:"start"`
}

type yamlFinding struct {
	Kind   string `yaml:"kind"`
	Path   string `yaml:"path"`
	Detail string `yaml:"detail,omitempty"`
}

type yamlSummary struct {
	Directories      int    `yaml:"directories"`
	DirsSkipped      int    `yaml:"dirs_skipped"`
	Files            int    `yaml:"files"`
	FilesSkipped     int    `yaml:"files_skipped"`
	FilesHashed      int    `yaml:"files_hashed"`
	BytesHashed      int64  `yaml:"bytes_hashed"`
	New              int    `yaml:"new"`
	Matched          int    `yaml:"matched"`
	Drifted          int    `yaml:"drifted"`
	Stale            int    `yaml:"stale"`
	Vanished         int    `yaml:"vanished"`
	HashFailures     int    `yaml:"hash_failures"`
	ManifestsWritten int    `yaml:"manifests_written"`
	WriteFailures    int    `yaml:"write_failures"`
	Warnings         int    `yaml:"warnings"`
	Duration         string `yaml:"duration"`
	Interrupted      bool   `yaml:"interrupted"`
}

// YAMLFormatter renders the report as YAML with the same structure as
// the json formatter.
type YAMLFormatter struct{}

// Format writes the rendered report to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	jo := buildOutput(r)

	findings := make([]yamlFinding, len(jo.Findings))
	for i, finding := range jo.Findings {
		findings[i] = yamlFinding{
			Kind:   finding.Kind,
			Path:   finding.Path,
			Detail: finding.Detail,
		}
	}

	out := yamlOutput{
		Meta: yamlMeta{
			Root:      jo.Meta.Root,
			Algorithm: jo.Meta.Algorithm,
			Backend:   jo.Meta.Backend,
			Workers:   jo.Meta.Workers,
			ReadOnly:  jo.Meta.ReadOnly,
			Start:     jo.Meta.Start.Format("2006-01-02T15:04:05Z07:00"),
		},
		Findings: findings,
		Summary:  yamlSummary(jo.Summary),
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
