package model

import "time"

// Task is the only entity of the service. ID stays zero until the row is inserted.
// A nil CompletedAt means the task is still open.
type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (t Task) Completed() bool {
	return t.CompletedAt != nil
}
