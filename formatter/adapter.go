package formatter

import (
	"fmt"

	"github.com/philipp01105/nlog-channels/core"
)

// Adapter wraps a formatter selected at configuration time by type tag.
// The wrapped formatter is built once, in NewAdapter; Format and
// FormatBatch delegate to it without touching input or output.
type Adapter struct {
	typeRef   string
	formatter Formatter
}

// NewAdapter resolves typeRef in reg and invokes its constructor with
// params. An unknown tag or a failing constructor is reported here rather
// than on first use.
func NewAdapter(reg *Registry, typeRef string, params ...any) (*Adapter, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	ctor, ok := reg.Lookup(typeRef)
	if !ok {
		return nil, fmt.Errorf("%w: unknown formatter type %q", core.ErrInvalidConfiguration, typeRef)
	}
	f, err := ctor(params...)
	if err != nil {
		return nil, fmt.Errorf("formatter %q: %w", typeRef, err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: formatter %q constructor returned nil", core.ErrInvalidConfiguration, typeRef)
	}
	return &Adapter{typeRef: typeRef, formatter: f}, nil
}

// Type returns the type tag the adapter was built from.
func (a *Adapter) Type() string { return a.typeRef }

// Unwrap returns the wrapped formatter.
func (a *Adapter) Unwrap() Formatter { return a.formatter }

// Format delegates to the wrapped formatter.
func (a *Adapter) Format(entry *core.Entry) ([]byte, error) {
	return a.formatter.Format(entry)
}

// FormatBatch delegates to the wrapped formatter.
func (a *Adapter) FormatBatch(entries []*core.Entry) ([][]byte, error) {
	return a.formatter.FormatBatch(entries)
}
