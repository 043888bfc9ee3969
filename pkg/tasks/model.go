package tasks

import (
	"errors"
	"time"
)

// ErrTaskNotFound is returned when no task exists for an id.
var ErrTaskNotFound = errors.New("task not found")

// ErrInvalidSortField is returned when a list request names an unknown
// sort field.
var ErrInvalidSortField = errors.New("invalid sort field")

// SortField orders task listings.
type SortField string

const (
	SortByID      SortField = "id"
	SortByTitle   SortField = "title"
	SortByStatus  SortField = "status"
	SortByDueDate SortField = "dueDate"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortByID, SortByTitle, SortByStatus, SortByDueDate:
		return true
	}
	return false
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a unit of work inside a project, optionally assigned to a user.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ProjectID   int64      `json:"project_id"`
	AssigneeID  *int64     `json:"assignee_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StatusCount is one row of the tasks-by-status aggregation.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}
