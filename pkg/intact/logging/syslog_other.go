//go:build !unix

package logging

import (
	"errors"
	"io"
)

func syslogWriter(string) (io.WriteCloser, error) {
	return nil, errors.New("syslog is not supported on this platform")
}
