package dispatcher

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/markstorm/internal/dispatcher/handler"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	actionMetrics map[string]*ActionMetrics

	totalDispatches uint64
	totalErrors     uint64
	totalPanics     uint64
	totalAsync      uint64

	totalDuration time.Duration
}

// ActionMetrics holds metrics for a specific action.
type ActionMetrics struct {
	Name          string
	DispatchCount uint64
	ErrorCount    uint64
	AsyncCount    uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastStatus    handler.ResultStatus
	LastDispatch  time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		actionMetrics: make(map[string]*ActionMetrics),
	}
}

// RecordDispatch records a dispatch event.
func (m *Metrics) RecordDispatch(actionName string, duration time.Duration, status handler.ResultStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += duration

	am := m.actionMetrics[actionName]
	if am == nil {
		am = &ActionMetrics{
			Name:        actionName,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.actionMetrics[actionName] = am
	}

	am.DispatchCount++
	am.TotalDuration += duration
	am.LastStatus = status
	am.LastDispatch = time.Now()
	am.MinDuration = min(am.MinDuration, duration)
	am.MaxDuration = max(am.MaxDuration, duration)

	switch status {
	case handler.StatusError:
		m.totalErrors++
		am.ErrorCount++
	case handler.StatusAsync:
		m.totalAsync++
		am.AsyncCount++
	}
}

// RecordPanic records a panic recovery. The dispatch itself is recorded
// separately as an error.
func (m *Metrics) RecordPanic(actionName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPanics++
}

// TotalDispatches returns the total number of dispatches.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDispatches
}

// TopActions returns the top N most dispatched actions.
func (m *Metrics) TopActions(n int) []*ActionMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	actions := make([]*ActionMetrics, 0, len(m.actionMetrics))
	for _, am := range m.actionMetrics {
		stats := *am
		actions = append(actions, &stats)
	}

	sort.Slice(actions, func(i, j int) bool {
		if actions[i].DispatchCount != actions[j].DispatchCount {
			return actions[i].DispatchCount > actions[j].DispatchCount
		}
		return actions[i].Name < actions[j].Name
	})

	if n > len(actions) {
		n = len(actions)
	}
	return actions[:n]
}

// MetricsSnapshot is a point-in-time copy of the global counters.
type MetricsSnapshot struct {
	TotalDispatches uint64
	TotalErrors     uint64
	TotalPanics     uint64
	TotalAsync      uint64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	ActionCount     int
	Timestamp       time.Time
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		TotalDispatches: m.totalDispatches,
		TotalErrors:     m.totalErrors,
		TotalPanics:     m.totalPanics,
		TotalAsync:      m.totalAsync,
		TotalDuration:   m.totalDuration,
		ActionCount:     len(m.actionMetrics),
		Timestamp:       time.Now(),
	}

	if m.totalDispatches > 0 {
		snapshot.AverageDuration = m.totalDuration / time.Duration(m.totalDispatches)
	}

	return snapshot
}

// AverageActionDuration returns the average duration for a specific action.
func (am *ActionMetrics) AverageActionDuration() time.Duration {
	if am.DispatchCount == 0 {
		return 0
	}
	return am.TotalDuration / time.Duration(am.DispatchCount)
}

// ErrorRate returns the error rate as a percentage.
func (am *ActionMetrics) ErrorRate() float64 {
	if am.DispatchCount == 0 {
		return 0
	}
	return float64(am.ErrorCount) / float64(am.DispatchCount) * 100
}
