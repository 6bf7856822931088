package chat

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable deferred callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules on the wall clock.
var RealScheduler Scheduler = realScheduler{}

// ManualScheduler runs callbacks only when Advance moves its clock past
// their due time.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	owner *ManualScheduler
	at    time.Duration
	seq   int
	f     func()
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{owner: m, at: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	m := t.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, other := range m.tasks {
		if other == t {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, running every callback that
// falls due in order. Callbacks scheduled while advancing run too if
// they fall due before the new time.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		sort.SliceStable(m.tasks, func(i, j int) bool {
			if m.tasks[i].at != m.tasks[j].at {
				return m.tasks[i].at < m.tasks[j].at
			}
			return m.tasks[i].seq < m.tasks[j].seq
		})
		if len(m.tasks) == 0 || m.tasks[0].at > target {
			break
		}
		next := m.tasks[0]
		m.tasks = m.tasks[1:]
		m.now = next.at
		m.mu.Unlock()
		next.f()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending reports how many callbacks are waiting.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
