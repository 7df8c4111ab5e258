package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// Level is the severity of a log entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// ParseLevel maps a configuration level name to a Level. Unknown names yield
// LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	}
	return LevelInfo, false
}

// Options configures the console provider.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel Level
}

type provider struct {
	out      io.Writer
	clock    func() time.Time
	minLevel Level
	mu       sync.Mutex
}

// NewProvider returns a provider writing logfmt-style lines. Writer defaults to
// stderr so rendered pages written to stdout by the CLI stay clean.
func NewProvider(opts Options) interfaces.LoggerProvider {
	p := &provider{
		out:      opts.Writer,
		clock:    opts.TimeFunc,
		minLevel: opts.MinLevel,
	}
	if p.out == nil {
		p.out = os.Stderr
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	return p
}

func (p *provider) GetLogger(name string) interfaces.Logger {
	return &entryLogger{
		provider: p,
		fields:   map[string]any{"logger": name},
	}
}

type entryLogger struct {
	provider *provider
	fields   map[string]any
	ctx      context.Context
}

var (
	_ interfaces.Logger       = (*entryLogger)(nil)
	_ interfaces.FieldsLogger = (*entryLogger)(nil)
)

func (l *entryLogger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *entryLogger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *entryLogger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *entryLogger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *entryLogger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *entryLogger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

func (l *entryLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := maps.Clone(l.fields)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return &entryLogger{provider: l.provider, fields: merged, ctx: l.ctx}
}

func (l *entryLogger) WithContext(ctx context.Context) interfaces.Logger {
	return &entryLogger{provider: l.provider, fields: maps.Clone(l.fields), ctx: ctx}
}

func (l *entryLogger) write(level Level, msg string, args []any) {
	if l.provider == nil || level < l.provider.minLevel {
		return
	}

	fields := maps.Clone(l.fields)
	if fields == nil {
		fields = map[string]any{}
	}
	maps.Copy(fields, logging.ContextFields(l.ctx))
	maps.Copy(fields, pairs(args))

	line := format(l.provider.clock().UTC(), level, msg, fields)

	l.provider.mu.Lock()
	defer l.provider.mu.Unlock()
	_, _ = io.WriteString(l.provider.out, line+"\n")
}

// pairs turns key/value variadic arguments into fields. A trailing key with no
// value and non-string keys are stored under positional names.
func pairs(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]any, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i == len(args)-1 {
			fields[fmt.Sprintf("arg_%d", i)] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = fmt.Sprintf("arg_%d", i)
		}
		fields[key] = args[i+1]
	}
	return fields
}

func format(ts time.Time, level Level, msg string, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(level.String())
	b.WriteByte(' ')
	b.WriteString(msg)

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value(fields[key]))
	}
	return b.String()
}

func value(v any) string {
	switch typed := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(typed)
	case time.Time:
		return quote(typed.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return typed.String()
	case error:
		return quote(typed.Error())
	case fmt.Stringer:
		return quote(typed.String())
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return quote(fmt.Sprint(typed))
	}
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
