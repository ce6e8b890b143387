package importer

import (
	"io"
	"sort"
	"strings"

	"github.com/cleared-dev/cashflow/internal/common"
)

// RawTable is a decoded statement: one header row and its data rows.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Parser decodes one statement export format.
type Parser interface {
	Parse(r io.Reader) (*RawTable, error)
	Format() string
}

// DefaultFormat is used when a caller names no format.
const DefaultFormat = "semicolon"

// Registry maps format names to parsers. Names are case-insensitive.
type Registry struct {
	byName map[string]Parser
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Parser{}}
}

// Register adds p under its format name. Registering a name twice is a
// programming error and panics.
func (r *Registry) Register(p Parser) {
	name := strings.ToLower(p.Format())
	if _, dup := r.byName[name]; dup {
		panic("importer: format registered twice: " + name)
	}
	r.byName[name] = p
}

// Lookup returns the parser for format. An empty format selects
// DefaultFormat; an unknown one is an invalid-input error.
func (r *Registry) Lookup(format string) (Parser, error) {
	if format == "" {
		format = DefaultFormat
	}
	p, ok := r.byName[strings.ToLower(format)]
	if !ok {
		return nil, common.Invalidf("unknown statement format %q (known: %s)",
			format, strings.Join(r.Formats(), ", "))
	}
	return p, nil
}

// Formats returns the registered names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry knows the semicolon export and a plain comma variant.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewSemicolonParser())
	r.Register(&DelimitedParser{Name: "comma", Comma: ','})
	return r
}
