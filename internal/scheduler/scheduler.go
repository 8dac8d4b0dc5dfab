package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs deferred work. Production code uses TimerScheduler, tests
// drive time explicitly through ManualScheduler.
type Scheduler interface {
	Schedule(delay time.Duration, attempt int, fn func()) *Task
	Now() time.Time
}

type Task struct {
	Delay   time.Duration
	Attempt int
	DueAt   time.Time

	fn    func()
	stop  func() bool
	state atomic.Int32
}

const (
	taskScheduled int32 = iota
	taskFired
	taskCancelled
)

// Cancel prevents the task from running. It returns false if the task already
// ran or was cancelled before.
func (t *Task) Cancel() bool {
	if !t.state.CompareAndSwap(taskScheduled, taskCancelled) {
		return false
	}
	if t.stop != nil {
		t.stop()
	}
	return true
}

func (t *Task) Cancelled() bool {
	return t.state.Load() == taskCancelled
}

func (t *Task) run() {
	if !t.state.CompareAndSwap(taskScheduled, taskFired) {
		return
	}
	t.fn()
}

type TimerScheduler struct{}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) Schedule(delay time.Duration, attempt int, fn func()) *Task {
	task := &Task{
		Delay:   delay,
		Attempt: attempt,
		DueAt:   time.Now().Add(delay),
		fn:      fn,
	}
	timer := time.AfterFunc(delay, task.run)
	task.stop = timer.Stop
	return task
}

func (s *TimerScheduler) Now() time.Time {
	return time.Now()
}

// ManualScheduler only fires tasks when Advance moves its clock past their due time.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*Task
}

func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (s *ManualScheduler) Schedule(delay time.Duration, attempt int, fn func()) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &Task{
		Delay:   delay,
		Attempt: attempt,
		DueAt:   s.now.Add(delay),
		fn:      fn,
	}
	s.tasks = append(s.tasks, task)
	return task
}

func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d and synchronously runs every task that
// became due, in due order. Tasks scheduled while advancing are picked up if
// they also fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		task := s.popDue(target)
		if task == nil {
			break
		}
		task.run()
	}

	s.mu.Lock()
	if s.now.Before(target) {
		s.now = target
	}
	s.mu.Unlock()
}

// Pending returns the tasks that have neither run nor been cancelled.
func (s *ManualScheduler) Pending() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*Task
	for _, task := range s.tasks {
		if !task.Cancelled() {
			pending = append(pending, task)
		}
	}
	return pending
}

func (s *ManualScheduler) popDue(target time.Time) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, task := range s.tasks {
		if task.Cancelled() || task.DueAt.After(target) {
			continue
		}
		if idx == -1 || task.DueAt.Before(s.tasks[idx].DueAt) {
			idx = i
		}
	}
	// Drop cancelled tasks while we hold the lock
	remaining := s.tasks[:0]
	var due *Task
	for i, task := range s.tasks {
		if i == idx {
			due = task
			continue
		}
		if !task.Cancelled() {
			remaining = append(remaining, task)
		}
	}
	s.tasks = remaining
	if due != nil && due.DueAt.After(s.now) {
		s.now = due.DueAt
	}
	return due
}
