package telemetry

import (
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelBroken
	LevelCount
)

// Report is a single call captured by Recorder.
type Report struct {
	Level  Level
	Id     string
	Params []any
}

// Recorder is an API that keeps every report in memory, it is used by tests to assert
// on what a component reported.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level Level, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Level: level, Id: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any)  { r.add(LevelBroken, id, params) }
func (r *Recorder) ReportWarning(id string, params ...any) { r.add(LevelWarning, id, params) }
func (r *Recorder) ReportDebug(msg string, params ...any)  { r.add(LevelDebug, msg, params) }
func (r *Recorder) ReportInfo(msg string, params ...any)   { r.add(LevelInfo, msg, params) }

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(LevelCount, id, []any{count})
}

// Reports returns a copy of the captured reports at the given level.
func (r *Recorder) Reports(level Level) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Level == level {
			out = append(out, report)
		}
	}
	return out
}

// Has reports whether a report at the given level has an id containing substr.
func (r *Recorder) Has(level Level, substr string) bool {
	for _, report := range r.Reports(level) {
		if strings.Contains(report.Id, substr) {
			return true
		}
	}
	return false
}
