package pattern

import (
	"errors"
	"testing"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		pattern string
		expr    string
		dirOnly bool
	}{
		{pattern: "*.txt", expr: `(^|/)[^/]*\.txt$`},
		{pattern: "**/cache/", expr: `.*/cache$`, dirOnly: true},
		{pattern: "build?", expr: `(^|/)build[^/]$`},
		{pattern: ".git/**", expr: `(^|/)\.git/.*$`},
		{pattern: "/top", expr: `^/top$`},
		{pattern: "/top/", expr: `^/top$`, dirOnly: true},
		{pattern: "docs/notes.md", expr: `(^|/)docs/notes\.md$`},
		{pattern: `\*.txt`, expr: `(^|/)\*\.txt$`},
		{pattern: "[a-c]log", expr: `(^|/)[a-c]log$`},
		{pattern: "tmp/", expr: `(^|/)tmp$`, dirOnly: true},
		{pattern: "a**b", expr: `(^|/)a.*b$`},
		{pattern: "??", expr: `(^|/)[^/][^/]$`},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			expr, dirOnly, err := Translate(tt.pattern)
			if err != nil {
				t.Fatalf("Translate(%q): %v", tt.pattern, err)
			}
			if expr != tt.expr {
				t.Errorf("Translate(%q) = %q, want %q", tt.pattern, expr, tt.expr)
			}
			if dirOnly != tt.dirOnly {
				t.Errorf("Translate(%q) dirOnly = %v, want %v", tt.pattern, dirOnly, tt.dirOnly)
			}
		})
	}
}

func TestTranslateErrors(t *testing.T) {
	for _, pat := range []string{"", "/", "[abc"} {
		if _, _, err := Translate(pat); !errors.Is(err, ErrBadPattern) {
			t.Errorf("Translate(%q) error = %v, want ErrBadPattern", pat, err)
		}
	}
}

// TestMatcherRsyncClassification pins the matcher to rsync's observed
// treatment of the same pattern/path pairs.
func TestMatcherRsyncClassification(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		isDir    bool
		excluded bool
	}{
		{"txt at root", "*.txt", "/notes.txt", false, true},
		{"txt nested", "*.txt", "/docs/report.txt", false, true},
		{"txt not a suffix", "*.txt", "/notes.txt.bak", false, false},
		{"txt names a directory", "*.txt", "/archive.txt", true, true},
		{"txt other extension", "*.txt", "/docs/report.md", false, false},
		{"cache at depth", "**/cache/", "/var/app/cache", true, true},
		{"cache at root", "**/cache/", "/cache", true, true},
		{"cache is a file", "**/cache/", "/var/cache", false, false},
		{"cache other name", "**/cache/", "/var/notcache", true, false},
		{"cache partial name", "**/cache/", "/var/cachenew", true, false},
		{"log whole component", "log", "/var/log", true, true},
		{"log inside a name", "log", "/catalog", false, false},
		{"build one extra char", "build?", "/build2", false, true},
		{"build nested", "build?", "/src/build7", false, true},
		{"build exact name", "build?", "/build", false, false},
		{"build two extra chars", "build?", "/build22", false, false},
		{"git file contents", ".git/**", "/proj/.git/config", false, true},
		{"git nested dir", ".git/**", "/proj/.git/objects", true, true},
		{"git dir itself", ".git/**", "/proj/.git", true, false},
		{"github is not git", ".git/**", "/proj/.github/workflows", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(ModeExclude, []string{tt.pattern})
			if err != nil {
				t.Fatalf("NewMatcher(%q): %v", tt.pattern, err)
			}
			if got := m.Excluded(tt.path, tt.isDir); got != tt.excluded {
				t.Errorf("pattern %q path %q (dir=%v): excluded = %v, want %v",
					tt.pattern, tt.path, tt.isDir, got, tt.excluded)
			}
		})
	}
}

func TestMatcherAnchoredPattern(t *testing.T) {
	m, err := NewMatcher(ModeExclude, []string{"/build"})
	if err != nil {
		t.Fatal(err)
	}

	if !m.Excluded("/build", true) {
		t.Error("/build should match the root-level build directory")
	}
	if m.Excluded("/src/build", true) {
		t.Error("/build should not match a nested build directory")
	}
	if m.Excluded("/build2", true) {
		t.Error("/build should not match a longer name")
	}
}

func TestMatcherFirstMatchWins(t *testing.T) {
	m, err := NewMatcher(ModeInclude, []string{"*.go", "*.txt"})
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/main.go", "/docs/readme.txt"} {
		if m.Excluded(path, false) {
			t.Errorf("%s should be included", path)
		}
	}
	if !m.Excluded("/main.o", false) {
		t.Error("/main.o matches no include rule and should be excluded")
	}
}

func TestMatcherIncludeDirectoryIdiom(t *testing.T) {
	// The rsync idiom for "all .go files anywhere" includes every
	// directory so descent can reach them.
	m, err := NewMatcher(ModeInclude, []string{"*/", "*.go"})
	if err != nil {
		t.Fatal(err)
	}

	if m.Excluded("/pkg", true) {
		t.Error("*/ should include directories")
	}
	if m.Excluded("/pkg/parser.go", false) {
		t.Error("*.go should include nested sources")
	}
	if !m.Excluded("/pkg/parser.o", false) {
		t.Error("files matching no rule should be excluded in include mode")
	}
}

// TestMatcherIncludeModeEmptyPatterns pins the degenerate include
// mode: with no rules, nothing matches, so everything is excluded.
// This is intentional "include nothing by default" behavior.
func TestMatcherIncludeModeEmptyPatterns(t *testing.T) {
	m, err := NewMatcher(ModeInclude, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !m.Excluded("/anything", false) {
		t.Error("include mode with zero patterns must exclude files")
	}
	if !m.Excluded("/dir", true) {
		t.Error("include mode with zero patterns must exclude directories")
	}
}

func TestMatcherExcludeModeEmptyPatterns(t *testing.T) {
	m, err := NewMatcher(ModeExclude, nil)
	if err != nil {
		t.Fatal(err)
	}

	if m.Excluded("/anything", false) || m.Excluded("/dir", true) {
		t.Error("exclude mode with zero patterns must include everything")
	}
}

func TestMatcherDirOnlyNeverMatchesFiles(t *testing.T) {
	m, err := NewMatcher(ModeExclude, []string{"tmp/"})
	if err != nil {
		t.Fatal(err)
	}

	if !m.Excluded("/tmp", true) {
		t.Error("tmp/ should match a directory named tmp")
	}
	if m.Excluded("/tmp", false) {
		t.Error("tmp/ must not match a regular file named tmp")
	}
}

func TestRel(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"/data", "/data/a/b", "/a/b"},
		{"/data/", "/data/a", "/a"},
		{"/data", "/data", "/"},
		{"/", "/a/b", "/a/b"},
	}

	for _, tt := range tests {
		if got := Rel(tt.base, tt.path); got != tt.want {
			t.Errorf("Rel(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
