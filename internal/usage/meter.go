// Package usage meters free-tier processing with a process-wide daily
// counter. The count is intentionally not persisted: a restart resets it,
// which errs in the user's favor and keeps the service stateless.
package usage

import (
	"sync"
	"time"
)

const dayFormat = "2006-01-02"

// Meter counts processed files per UTC day against a fixed limit.
// A limit of zero or less means unlimited.
type Meter struct {
	mu    sync.Mutex
	limit int
	day   string
	used  int
	now   func() time.Time
}

// NewMeter creates a Meter with the given daily limit.
func NewMeter(limit int) *Meter {
	return &Meter{limit: limit, now: time.Now}
}

// CanProcess reports whether another file fits under today's limit.
func (m *Meter) CanProcess() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollLocked()
	return m.limit <= 0 || m.used < m.limit
}

// Record counts one processed file against today.
func (m *Meter) Record() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollLocked()
	m.used++
}

// Remaining reports how many files are left today; unlimited meters
// report -1.
func (m *Meter) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollLocked()
	if m.limit <= 0 {
		return -1
	}
	if m.used >= m.limit {
		return 0
	}
	return m.limit - m.used
}

// rollLocked resets the counter when the UTC day has changed since the
// last call.
func (m *Meter) rollLocked() {
	today := m.now().UTC().Format(dayFormat)
	if today != m.day {
		m.day = today
		m.used = 0
	}
}
