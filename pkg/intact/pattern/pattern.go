// Package pattern compiles rsync-style include/exclude patterns into
// path-matching rules and answers whether a root-relative path is in
// scope for an audit.
//
// Supported syntax follows rsync filter rules: `*` matches any run of
// characters short of a path separator, `**` additionally crosses
// separators, `?` matches exactly one non-separator character,
// bracket classes pass through to the regexp engine, `\x` forces a
// literal x, a leading `/` anchors the pattern to the audit root, and
// a trailing `/` restricts the rule to directories.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how a matched rule is interpreted.
type Mode int

const (
	// ModeExclude treats a matching rule as a reason to skip the
	// path. Paths matching no rule stay in scope.
	ModeExclude Mode = iota

	// ModeInclude treats a matching rule as a reason to keep the
	// path. Paths matching no rule are skipped, so an empty rule list
	// excludes everything.
	ModeInclude
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeInclude {
		return "include"
	}
	return "exclude"
}

// ErrBadPattern is returned when a pattern cannot be compiled.
var ErrBadPattern = errors.New("bad pattern")

// Rule is one compiled pattern.
type Rule struct {
	// Text is the original pattern as given.
	Text string

	// DirOnly marks rules written with a trailing separator, which
	// match directories only. A symlink to a directory is not a
	// directory here.
	DirOnly bool

	re *regexp.Regexp
}

// Matcher is an ordered list of rules with a fixed mode. The first
// rule matching a candidate path decides the outcome.
type Matcher struct {
	mode  Mode
	rules []Rule
}

// NewMatcher compiles patterns into a Matcher. Rule order is
// preserved; the first match decides.
func NewMatcher(mode Mode, patterns []string) (*Matcher, error) {
	m := &Matcher{mode: mode, rules: make([]Rule, 0, len(patterns))}
	for _, pat := range patterns {
		expr, dirOnly, err := Translate(pat)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, pat, err)
		}
		m.rules = append(m.rules, Rule{Text: pat, DirOnly: dirOnly, re: re})
	}
	return m, nil
}

// Mode returns the matcher's mode.
func (m *Matcher) Mode() Mode { return m.mode }

// Len returns the number of compiled rules.
func (m *Matcher) Len() int { return len(m.rules) }

// Excluded reports whether a root-relative path is out of scope. The
// path must keep its leading separator ("/sub/name"); isDir reports
// whether it names a real directory.
func (m *Matcher) Excluded(rel string, isDir bool) bool {
	for _, r := range m.rules {
		if r.DirOnly && !isDir {
			continue
		}
		if r.re.MatchString(rel) {
			return m.mode == ModeExclude
		}
	}
	return m.mode == ModeInclude
}

// Translate converts one rsync-style pattern into a regular
// expression source and reports whether the rule is directory-only.
// A rule matches whole trailing components, never a fragment of one,
// so every expression is anchored to the end of the path. A leading
// separator additionally pins it to the start; any other pattern may
// begin at any component boundary.
func Translate(pat string) (string, bool, error) {
	dirOnly := strings.HasSuffix(pat, "/")
	body := strings.TrimSuffix(pat, "/")
	if body == "" {
		return "", false, fmt.Errorf("%w: empty pattern", ErrBadPattern)
	}
	anchored := strings.HasPrefix(body, "/")

	var b strings.Builder
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '\\':
			if i+1 < len(runes) {
				i++
			}
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(`.*`)
				i++
			} else {
				b.WriteString(`[^/]*`)
			}
		case '?':
			b.WriteString(`[^/]`)
		case '[':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == ']' {
					end = j
					break
				}
			}
			if end < 0 {
				return "", false, fmt.Errorf("%w: unterminated character class in %q", ErrBadPattern, pat)
			}
			b.WriteString(string(runes[i : end+1]))
			i = end
		case '/':
			b.WriteRune('/')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	expr := b.String()
	switch {
	case anchored:
		expr = "^" + expr
	case !strings.HasPrefix(body, "**"):
		expr = "(^|/)" + expr
	}
	return expr + "$", dirOnly, nil
}

// Rel strips base from path, keeping the leading separator, so the
// result is the root-relative form patterns are written against:
// Rel("/data", "/data/a/b") == "/a/b". Both arguments must use
// forward slashes.
func Rel(base, path string) string {
	base = strings.TrimSuffix(base, "/")
	rel := strings.TrimPrefix(path, base)
	if rel == "" {
		return "/"
	}
	return rel
}
