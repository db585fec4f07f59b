package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/philipp01105/nlog-channels/core"
)

// TextFormatter formats log entries as human-readable text:
//
//	2026-02-18T13:00:00Z [INFO] app: message key=value
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format formats an entry as text
func (f *TextFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatEntry(entry, buf)

	// Copy buffer content to return
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatBatch formats each entry as one text line
func (f *TextFormatter) FormatBatch(entries []*core.Entry) ([][]byte, error) {
	return Batch(f.Format, entries)
}

// FormatTo formats an entry and writes it directly to the writer
func (f *TextFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	buf := getBuffer()

	f.FormatEntry(entry, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// pre-formatted level strings to avoid multiple WriteString calls
var levelBrackets = [...]string{
	core.DebugLevel: " [DEBUG] ",
	core.InfoLevel:  " [INFO] ",
	core.WarnLevel:  " [WARN] ",
	core.ErrorLevel: " [ERROR] ",
	core.FatalLevel: " [FATAL] ",
	core.PanicLevel: " [PANIC] ",
}

// FormatEntry writes the formatted entry into the given buffer
func (f *TextFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	if entry.Level >= 0 && int(entry.Level) < len(levelBrackets) {
		buf.WriteString(levelBrackets[entry.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	if entry.Channel != "" {
		buf.WriteString(entry.Channel)
		buf.WriteString(": ")
	}

	if f.IncludeCaller && entry.Caller.Defined {
		buf.WriteByte('[')
		buf.WriteString(entry.Caller.ShortFile)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(entry.Caller.Line))
		buf.WriteString("] ")
	}

	buf.WriteString(entry.Message)

	for _, field := range entry.Fields {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.WriteString(field.StringValue())
	}

	buf.WriteByte('\n')
}
