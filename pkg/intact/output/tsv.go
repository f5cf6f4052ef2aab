package output

import (
	"bytes"
	"fmt"

	"github.com/intact-sh/intact/pkg/intact/types"
)

// TSVFormatter renders findings as raw tab-separated rows, one per
// finding, with no header. Meant for awk and cut pipelines.
type TSVFormatter struct{}

// Format writes the rendered report to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	for _, finding := range r.Findings {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", finding.Kind, finding.Path, finding.Detail); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	Register("tsv", func() Formatter {
		return &TSVFormatter{}
	})
}

// Ensure TSVFormatter implements Formatter.
var _ Formatter = (*TSVFormatter)(nil)
