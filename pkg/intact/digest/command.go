package digest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Command computes digests by running the platform checksum program
// and parsing the first whitespace-delimited token of its output.
type Command struct {
	algo Algorithm
	path string
}

// NewCommand returns a Backend that shells out to path, which must
// be the algorithm's checksum program.
func NewCommand(algo Algorithm, path string) *Command {
	return &Command{algo: algo, path: path}
}

// Kind implements Backend.
func (c *Command) Kind() string { return KindCommand }

// Digest implements Backend.
func (c *Command) Digest(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, c.path, path)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("running %s: %w", c.algo.Command, err)
	}

	fields := strings.Fields(out.String())
	if len(fields) == 0 {
		return "", fmt.Errorf("%s produced no output for %s", c.algo.Command, path)
	}
	return strings.ToLower(fields[0]), nil
}
