// Package config loads intact's configuration from its YAML file and
// INTACT_-prefixed environment variables.
package config

import "time"

// Default configuration values for intact.
const (
	// DefaultAlgorithm is the digest algorithm used when none is
	// configured.
	DefaultAlgorithm = "sha256"

	// DefaultBackend probes for command-line digest tools and falls
	// back to the native Go implementations.
	DefaultBackend = "auto"

	// DefaultOutput is the report format written to stdout.
	DefaultOutput = "pretty"

	// DefaultMaxDepth means no depth limit.
	DefaultMaxDepth = -1

	// DefaultLogLevel is the minimum severity logged.
	DefaultLogLevel = "info"

	// DefaultLogDestination receives log output.
	DefaultLogDestination = "stderr"

	// DefaultHistoryLimit is how many past runs the history store
	// retains.
	DefaultHistoryLimit = 100

	// DefaultWatchSettle is the quiet period before watch mode
	// re-audits.
	DefaultWatchSettle = 2 * time.Second
)
