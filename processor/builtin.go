package processor

import (
	"os"

	"github.com/google/uuid"

	"github.com/philipp01105/nlog-channels/core"
)

// Builtins returns a resolver for the processors configs can name:
//
//	hostname  adds the machine host name
//	pid       adds the process id
//	uid       adds an id that is unique per pipeline build
//
// Every Resolve call returns a fresh processor.
func Builtins() core.Resolver {
	return core.ResolverFunc(func(name string) (any, error) {
		switch name {
		case "hostname":
			return Hostname(), nil
		case "pid":
			return PID(), nil
		case "uid":
			return NewUID(), nil
		default:
			return core.MapResolver(nil).Resolve(name)
		}
	})
}

// Hostname adds a "hostname" field. The name is looked up once.
func Hostname() Func {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return Tags(core.String("hostname", host))
}

// PID adds a "pid" field with the current process id
func PID() Func {
	return Tags(core.Int("pid", os.Getpid()))
}

// UID tags every record with the same random id, which lets records from
// one run be grouped.
type UID struct {
	id string
}

// NewUID creates a UID processor with a fresh id
func NewUID() *UID {
	return &UID{id: uuid.NewString()}
}

// ID returns the id added to records
func (u *UID) ID() string { return u.id }

// Process adds the "uid" field
func (u *UID) Process(entry *core.Entry) *core.Entry {
	entry.Fields = append(entry.Fields, core.String("uid", u.id))
	return entry
}

// Tags returns a processor that appends fixed fields to every record
func Tags(fields ...core.Field) Func {
	tags := make([]core.Field, len(fields))
	copy(tags, fields)
	return func(entry *core.Entry) *core.Entry {
		entry.Fields = append(entry.Fields, tags...)
		return entry
	}
}
