package tui

import (
	"time"

	"github.com/sadopc/focusboard/internal/insight"
	"github.com/sadopc/focusboard/internal/store"
)

// timerState tracks the current state of the focus timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// focusTimer counts up while the user works on the focus task. It only keeps
// time; booking the minutes is up to the caller.
type focusTimer struct {
	now func() time.Time

	state     timerState
	startTime time.Time
	pausedAt  time.Time
	pauseGap  time.Duration

	projectID   string
	taskID      store.TaskID
	projectName string
	taskText    string

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newFocusTimer(now func() time.Time) focusTimer {
	return focusTimer{
		now:          now,
		state:        timerStopped,
		lastActivity: now(),
		idleTimeout:  10 * time.Minute,
	}
}

// start times work on f's task. The ids are kept so the session can be
// closed on that task even after the suggestion moves on.
func (t *focusTimer) start(f insight.Focus) {
	t.state = timerRunning
	t.startTime = t.now()
	t.pauseGap = 0
	t.projectID = f.Project.ID
	t.taskID = f.Task.ID
	t.projectName = f.Project.Name
	t.taskText = f.Task.Text
	t.lastActivity = t.startTime
	t.isIdle = false
}

// stop ends the session and returns the time worked, pauses excluded.
func (t *focusTimer) stop() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	elapsed := t.elapsed()
	t.state = timerStopped
	t.isIdle = false
	return elapsed
}

func (t *focusTimer) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.now()
}

func (t *focusTimer) resume() {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += t.now().Sub(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = t.now()
}

func (t *focusTimer) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

// tick pauses a running timer that has seen no key press for idleTimeout.
// The pause is backdated to the last activity.
func (t *focusTimer) tick() {
	if t.state != timerRunning || t.isIdle {
		return
	}
	if t.now().Sub(t.lastActivity) > t.idleTimeout {
		t.state = timerPaused
		t.pausedAt = t.lastActivity
		t.isIdle = true
	}
}

func (t *focusTimer) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
	}
}

func (t focusTimer) running() bool {
	return t.state != timerStopped
}

func (t focusTimer) paused() bool {
	return t.state == timerPaused
}

func (t focusTimer) elapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return t.now().Sub(t.startTime) - t.pauseGap
}
