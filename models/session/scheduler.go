package session

import (
	"slices"
	"sync"
	"time"
)

// Scheduler runs fn once after d unless the returned cancel is called
// first.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

type manualTask struct {
	id        int
	due       time.Duration
	fn        func()
	cancelled bool
}

// ManualScheduler only runs actions when Advance moves its clock. It is
// meant for tests and replays.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	tasks  []*manualTask
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Schedule(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &manualTask{id: s.nextID, due: s.now + d, fn: fn}
	s.nextID++
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.cancelled = true
	}
}

// Advance moves the clock forward and runs every due action in order,
// including actions scheduled by the ones it runs.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		s.tasks = slices.DeleteFunc(s.tasks, func(t *manualTask) bool { return t.cancelled })
		i := -1
		for j, t := range s.tasks {
			if t.due <= target && (i < 0 || t.due < s.tasks[i].due || (t.due == s.tasks[i].due && t.id < s.tasks[i].id)) {
				i = j
			}
		}
		if i < 0 {
			s.now = target
			s.mu.Unlock()
			return
		}
		task := s.tasks[i]
		s.tasks = slices.Delete(s.tasks, i, i+1)
		s.now = max(s.now, task.due)
		s.mu.Unlock()

		task.fn()
	}
}

// Pending counts actions that are scheduled and not cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
