package formatter

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/nlog-channels/core"
)

// ZapFormatter encodes entries with a zapcore.Encoder, so output matches
// what a zap logger with the same encoder config would write.
type ZapFormatter struct {
	enc zapcore.Encoder
}

// NewZapJSONFormatter uses zap's production JSON encoding.
func NewZapJSONFormatter() *ZapFormatter {
	return &ZapFormatter{enc: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())}
}

// NewZapConsoleFormatter uses zap's development console encoding.
func NewZapConsoleFormatter() *ZapFormatter {
	return &ZapFormatter{enc: zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())}
}

// Format encodes one entry
func (f *ZapFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf, err := f.enc.EncodeEntry(ZapEntry(entry), ZapFields(entry.Fields))
	if err != nil {
		return nil, err
	}
	defer buf.Free()

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatBatch encodes each entry on its own line
func (f *ZapFormatter) FormatBatch(entries []*core.Entry) ([][]byte, error) {
	return Batch(f.Format, entries)
}

// ZapLevel maps a core level to the zap level of the same severity.
func ZapLevel(l core.Level) zapcore.Level {
	switch l {
	case core.DebugLevel:
		return zapcore.DebugLevel
	case core.InfoLevel:
		return zapcore.InfoLevel
	case core.WarnLevel:
		return zapcore.WarnLevel
	case core.ErrorLevel:
		return zapcore.ErrorLevel
	case core.FatalLevel:
		return zapcore.FatalLevel
	case core.PanicLevel:
		return zapcore.PanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// ZapEntry converts the entry header into a zapcore.Entry. The channel name
// becomes the zap logger name.
func ZapEntry(entry *core.Entry) zapcore.Entry {
	ze := zapcore.Entry{
		Level:      ZapLevel(entry.Level),
		Time:       entry.Time,
		LoggerName: entry.Channel,
		Message:    entry.Message,
	}
	if entry.Caller.Defined {
		ze.Caller = zapcore.EntryCaller{
			Defined:  true,
			File:     entry.Caller.File,
			Line:     entry.Caller.Line,
			Function: entry.Caller.Function,
		}
	}
	return ze
}

// ZapFields converts entry fields into zap fields.
func ZapFields(fields []core.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch f.Type {
		case core.StringType:
			out = append(out, zap.String(f.Key, f.Str))
		case core.IntType, core.Int64Type:
			out = append(out, zap.Int64(f.Key, f.Int64))
		case core.Float64Type:
			out = append(out, zap.Float64(f.Key, f.Float64))
		case core.BoolType:
			out = append(out, zap.Bool(f.Key, f.Int64 == 1))
		case core.TimeType, core.DurationType:
			out = append(out, zap.Any(f.Key, f.Value()))
		case core.ErrorType:
			out = append(out, zap.String(f.Key, f.Str))
		default:
			out = append(out, zap.Any(f.Key, f.Any))
		}
	}
	return out
}

func newZapJSON(params ...any) (Formatter, error) {
	return NewZapJSONFormatter(), nil
}

func newZapConsole(params ...any) (Formatter, error) {
	return NewZapConsoleFormatter(), nil
}
