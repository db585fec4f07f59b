// Package processor turns processor references from configuration into an
// ordered pipeline of record transforms shared by every channel.
package processor

import (
	"fmt"

	"github.com/philipp01105/nlog-channels/core"
)

// Func transforms a record. Returning nil drops the record.
type Func func(entry *core.Entry) *core.Entry

// RecordProcessor is implemented by objects that transform records.
type RecordProcessor interface {
	Process(entry *core.Entry) *core.Entry
}

// Build converts refs into a pipeline, preserving their order. A ref is
// either a Func (or a plain func with the same signature), a
// RecordProcessor, or a name resolved through r. Resolution failures are
// returned with the offending name; nothing is skipped.
func Build(refs []any, r core.Resolver) ([]Func, error) {
	pipeline := make([]Func, 0, len(refs))
	for i, ref := range refs {
		name, isName := ref.(string)
		if isName {
			if r == nil {
				return nil, fmt.Errorf("processor %q: %w: no resolver configured", name, core.ErrNotResolved)
			}
			v, err := r.Resolve(name)
			if err != nil {
				return nil, fmt.Errorf("processor %q: %w", name, err)
			}
			ref = v
		}

		fn, ok := toFunc(ref)
		if !ok {
			if isName {
				return nil, fmt.Errorf("%w: processor must be callable: %q resolved to %T", core.ErrInvalidConfiguration, name, ref)
			}
			return nil, fmt.Errorf("%w: processor must be callable: entry %d is %T", core.ErrInvalidConfiguration, i, ref)
		}
		pipeline = append(pipeline, fn)
	}
	return pipeline, nil
}

func toFunc(v any) (Func, bool) {
	switch p := v.(type) {
	case Func:
		return p, p != nil
	case func(*core.Entry) *core.Entry:
		return p, p != nil
	case RecordProcessor:
		return p.Process, p != nil
	default:
		return nil, false
	}
}

// Apply runs entry through the pipeline in order. It returns nil as soon
// as a processor drops the record.
func Apply(pipeline []Func, entry *core.Entry) *core.Entry {
	for _, fn := range pipeline {
		if entry = fn(entry); entry == nil {
			return nil
		}
	}
	return entry
}
