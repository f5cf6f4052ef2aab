package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/intact-sh/intact/pkg/intact/types"
)

// PlainFormatter renders reports as unstyled text suitable for
// scripting and logs. Findings come out as an aligned table followed
// by one summary line.
type PlainFormatter struct{}

// Format writes the rendered report to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	fmt.Fprintf(w, "root: %s\n", r.Root)
	fmt.Fprintf(w, "algorithm: %s (%s), workers: %d", r.Algorithm, r.Backend, r.Workers)
	if r.ReadOnly {
		w.WriteString(", read-only")
	}
	w.WriteString("\n")
	if r.Summary.Interrupted {
		w.WriteString("interrupted\n")
	}

	if len(r.Findings) > 0 {
		w.WriteString("\n")
		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		if _, err := tw.Write([]byte("KIND\tPATH\tDETAIL\n")); err != nil {
			return err
		}
		for _, finding := range r.Findings {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", finding.Kind, finding.Path, finding.Detail); err != nil {
				return err
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	s := r.Summary
	fmt.Fprintf(w, "\n%d dirs, %d files, %d hashed (%s), %d matched, %d warnings, %s\n",
		s.Directories, s.Files, s.FilesHashed, humanize.IBytes(uint64(s.BytesHashed)),
		s.Matched, s.Warnings(), formatDuration(s.Duration))
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
