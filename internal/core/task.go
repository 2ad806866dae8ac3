// Package core holds the task lifecycle rules. Nothing here touches the network or
// the database: callers hand the results to the persistence layer themselves.
package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BuzzLyutic/task-core-api/internal/model"
)

// MaxNameLength matches the width of tasks.name.
const MaxNameLength = 128

var (
	ErrInvalidName      = errors.New("task name must be non-blank and at most 128 characters")
	ErrAlreadyCompleted = errors.New("task already completed")
)

// Clock returns the current time.
type Clock func() time.Time

// TaskCore creates and completes tasks using its clock.
type TaskCore struct {
	now Clock
}

// Default uses UTC wall time.
var Default = New(nil)

func New(clock Clock) *TaskCore {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &TaskCore{now: clock}
}

// Create builds a new, not yet persisted task. The name is taken as is; run
// ValidateName first if it comes from outside.
func (c *TaskCore) Create(name string) model.Task {
	return model.Task{
		Name:      name,
		CreatedAt: c.now(),
	}
}

// Complete stamps the completion time and returns the task. A second call
// overwrites the previous time; use CheckCompletable to refuse that.
// CompletedAt is never earlier than CreatedAt: if the clock stalls or runs
// backwards it is clamped to CreatedAt, so the two may be equal.
func (c *TaskCore) Complete(t model.Task) model.Task {
	now := c.now()
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.CompletedAt = &now
	return t
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return ErrInvalidName
	}
	return nil
}

func CheckCompletable(t model.Task) error {
	if t.Completed() {
		return ErrAlreadyCompleted
	}
	return nil
}
