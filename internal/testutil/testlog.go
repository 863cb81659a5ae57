package testlog

import (
	"sync"

	"delivery-dispatch/internal/logx"
)

// Entry is one captured log record.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Recorder captures log output for assertions in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty Recorder.
func New() *Recorder { return &Recorder{} }

// Logger returns a logx.Logger writing into the recorder.
func (r *Recorder) Logger() logx.Logger {
	return capture{r: r}
}

// Entries returns a snapshot of everything logged so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Recorder) record(level, msg string, fields []logx.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Level:  level,
		Msg:    msg,
		Fields: append([]logx.Field(nil), fields...),
	})
}

// capture is the logx.Logger facade over a Recorder. With() accumulates
// fields that are prepended to every record.
type capture struct {
	r    *Recorder
	with []logx.Field
}

var _ logx.Logger = capture{}

func (c capture) Debug(msg string, f ...logx.Field) { c.emit("debug", msg, f) }
func (c capture) Info(msg string, f ...logx.Field)  { c.emit("info", msg, f) }
func (c capture) Warn(msg string, f ...logx.Field)  { c.emit("warn", msg, f) }
func (c capture) Error(msg string, f ...logx.Field) { c.emit("error", msg, f) }

func (c capture) emit(level, msg string, f []logx.Field) {
	all := make([]logx.Field, 0, len(c.with)+len(f))
	all = append(all, c.with...)
	all = append(all, f...)
	c.r.record(level, msg, all)
}

func (c capture) With(f ...logx.Field) logx.Logger {
	with := append([]logx.Field(nil), c.with...)
	return capture{r: c.r, with: append(with, f...)}
}

func (c capture) Sync() error { return nil }
