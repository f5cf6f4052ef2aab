// Package output provides formatters for rendering audit reports in
// various formats (pretty, plain, json, yaml, tsv).
//
// The package uses a registry pattern so the formatter can be selected
// at runtime by name.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/intact-sh/intact/pkg/intact/types"
)

// Formatter is the interface all report formatters implement.
type Formatter interface {
	// Format writes the rendered report to the buffer.
	Format(w *bytes.Buffer, r *types.Report) error
}

// FormatterFactory creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory, replacing any existing one with
// the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// kindOrder fixes the presentation order of finding groups.
var kindOrder = []types.FindingKind{
	types.FindingDrift,
	types.FindingVanished,
	types.FindingStale,
	types.FindingNew,
	types.FindingError,
}

// groupFindings splits findings by kind, preserving their order.
func groupFindings(findings []types.Finding) map[types.FindingKind][]types.Finding {
	groups := make(map[types.FindingKind][]types.Finding)
	for _, f := range findings {
		groups[f.Kind] = append(groups[f.Kind], f)
	}
	return groups
}
