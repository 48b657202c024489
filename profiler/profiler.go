// Package profiler collects per-session counters and operation timings.
//
// A Tracker is owned by exactly one sampling session and updated on the
// session's goroutine; it starts no background work of its own.
package profiler

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Tracker accumulates counters and operation timings for one session.
type Tracker struct {
	now       Clock
	startTime time.Time

	counters       map[string]int64
	customMetrics  map[string]*MetricTracker
	operationTimes map[string]*TimeTracker
}

// MetricTracker tracks statistics for a recorded value.
type MetricTracker struct {
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int64   `json:"count"`
}

// Avg returns the mean of the recorded values.
func (m *MetricTracker) Avg() float64 {
	if m.Count == 0 {
		return 0
	}
	return m.Sum / float64(m.Count)
}

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Count int64         `json:"count"`
}

// Avg returns the mean duration.
func (t *TimeTracker) Avg() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Count)
}

// NewTracker creates a Tracker reading time from now. A nil clock uses time.Now.
func NewTracker(now Clock) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now:            now,
		startTime:      now(),
		counters:       make(map[string]int64),
		customMetrics:  make(map[string]*MetricTracker),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// Inc adds delta to the named counter.
func (t *Tracker) Inc(name string, delta int64) {
	t.counters[name] += delta
}

// Counter returns the value of the named counter.
func (t *Tracker) Counter(name string) int64 {
	return t.counters[name]
}

// RecordMetric records a value for the named metric.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (t *Tracker) RecordMetric(name string, value float64) {
	m, ok := t.customMetrics[name]
	if !ok {
		m = &MetricTracker{Min: value, Max: value}
		t.customMetrics[name] = m
	}
	m.Sum += value
	m.Count++
	if value < m.Min {
		m.Min = value
	}
	if value > m.Max {
		m.Max = value
	}
}

// Metric returns the tracker for the named metric, or nil.
func (t *Tracker) Metric(name string) *MetricTracker {
	return t.customMetrics[name]
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
//
// @example
// done := tracker.StartOperation("write")
// err := sink.Write(i, frame)
// done()
func (t *Tracker) StartOperation(name string) func() {
	start := t.now()
	return func() {
		t.recordOperationTime(name, t.now().Sub(start))
	}
}

// Operation returns the timing tracker for the named operation, or nil.
func (t *Tracker) Operation(name string) *TimeTracker {
	return t.operationTimes[name]
}

func (t *Tracker) recordOperationTime(name string, d time.Duration) {
	op, ok := t.operationTimes[name]
	if !ok {
		op = &TimeTracker{Min: d, Max: d}
		t.operationTimes[name] = op
	}
	op.Total += d
	op.Count++
	if d < op.Min {
		op.Min = d
	}
	if d > op.Max {
		op.Max = d
	}
}

// Elapsed returns the time since the tracker was created.
func (t *Tracker) Elapsed() time.Duration {
	return t.now().Sub(t.startTime)
}

// Fields flattens the tracker into log fields: counters by name, metrics as
// "<name>_avg" and operations as "<name>_avg_ms".
func (t *Tracker) Fields() logrus.Fields {
	fields := logrus.Fields{"elapsed": t.Elapsed().Truncate(time.Millisecond).String()}
	for name, v := range t.counters {
		fields[name] = v
	}
	for name, m := range t.customMetrics {
		fields[name+"_avg"] = m.Avg()
	}
	for name, op := range t.operationTimes {
		fields[name+"_avg_ms"] = float64(op.Avg().Microseconds()) / 1000
	}
	return fields
}

// Report logs a one-line summary at info level.
func (t *Tracker) Report(log logrus.FieldLogger, msg string) {
	log.WithFields(t.Fields()).Info(msg)
}

// String renders counters and timings sorted by name.
func (t *Tracker) String() string {
	names := make([]string, 0, len(t.counters)+len(t.operationTimes))
	for name := range t.counters {
		names = append(names, name)
	}
	sort.Strings(names)

	s := fmt.Sprintf("elapsed=%v", t.Elapsed().Truncate(time.Millisecond))
	for _, name := range names {
		s += fmt.Sprintf(" %s=%d", name, t.counters[name])
	}

	ops := make([]string, 0, len(t.operationTimes))
	for name := range t.operationTimes {
		ops = append(ops, name)
	}
	sort.Strings(ops)
	for _, name := range ops {
		op := t.operationTimes[name]
		s += fmt.Sprintf(" %s(avg=%v,min=%v,max=%v,count=%d)", name,
			op.Avg().Truncate(time.Microsecond), op.Min.Truncate(time.Microsecond),
			op.Max.Truncate(time.Microsecond), op.Count)
	}
	return s
}
