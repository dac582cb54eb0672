// Package gologger builds the zerolog loggers shared by every package of the clipper.
//
// Output is JSON on stdout with an RFC3339 "time" field and a "caller" of the form
// dir/file.go:line pkg.func(). PRETTY=1 switches to console output on stderr and
// DEBUG=1 enables debug events such as per-window bounds.
package gologger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

// ReqIDKey holds the request id in a context.Context
const ReqIDKey ctxKey = "reqID"

func init() {
	l := NewLogger()
	zerolog.DefaultContextLogger = &l
	zerolog.CallerMarshalFunc = shortCaller
}

func shortCaller(pc uintptr, file string, line int) string {
	caller := filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file)) + ":" + strconv.Itoa(line)
	if fun := runtime.FuncForPC(pc); fun != nil {
		name := fun.Name()
		if slash := strings.LastIndex(name, "/"); slash > 0 {
			name = name[slash+1:]
		}
		caller += " " + name + "()"
	}
	return caller
}

func NewLogger() zerolog.Logger {
	return newLogger(os.Stdout)
}

func newLogger(out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"

	logger := zerolog.New(out).With().Timestamp().Logger().Hook(callerHook{})
	if os.Getenv("PRETTY") == "1" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level := zerolog.InfoLevel
	if os.Getenv("DEBUG") == "1" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	return logger
}

type callerHook struct{}

func (callerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Caller(3)
}

// WithRequestID stores id in ctx together with a child of base tagged reqID=id,
// so zerolog.Ctx(ctx) logs carry the id of the upload being clipped.
func WithRequestID(ctx context.Context, base zerolog.Logger, id string) context.Context {
	ctx = context.WithValue(ctx, ReqIDKey, id)
	return base.With().Str(string(ReqIDKey), id).Logger().WithContext(ctx)
}

// RequestID returns the id stored by WithRequestID, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ReqIDKey).(string)
	return id
}
