package formatter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/philipp01105/nlog-channels/core"
)

// PrettyFormatter renders entries as colorized console lines using
// zerolog's ConsoleWriter. Entries are encoded as JSON first and the
// console writer turns that into the human-readable form.
type PrettyFormatter struct {
	json    *JSONFormatter
	noColor bool
	timeFmt string
}

// NewPrettyFormatter creates a pretty formatter. An empty timeFormat uses
// a millisecond-precision clock time.
func NewPrettyFormatter(noColor bool, timeFormat string) *PrettyFormatter {
	if timeFormat == "" {
		timeFormat = "15:04:05.000"
	}
	return &PrettyFormatter{
		json:    NewJSONFormatter(Config{TimestampFormat: time.RFC3339Nano}),
		noColor: noColor,
		timeFmt: timeFormat,
	}
}

// Format formats an entry as a console line
func (f *PrettyFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.json.FormatEntry(entry, buf)

	var out bytes.Buffer
	w := zerolog.ConsoleWriter{
		Out:        &out,
		NoColor:    f.noColor,
		TimeFormat: f.timeFmt,
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("pretty format: %w", err)
	}
	return out.Bytes(), nil
}

// FormatBatch formats each entry as one console line
func (f *PrettyFormatter) FormatBatch(entries []*core.Entry) ([][]byte, error) {
	return Batch(f.Format, entries)
}

func newPretty(params ...any) (Formatter, error) {
	noColor, err := boolParam("pretty", params, 0)
	if err != nil {
		return nil, err
	}
	timeFmt, err := stringParam("pretty", params, 1)
	if err != nil {
		return nil, err
	}
	return NewPrettyFormatter(noColor, timeFmt), nil
}
