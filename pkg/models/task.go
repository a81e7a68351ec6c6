package models

import "time"

// TaskStatus represents the lifecycle of an assigned job opening.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// Urgency is a derived classification of a task deadline. It is computed on
// read and never persisted.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyUrgent  Urgency = "urgent"
	UrgencySoon    Urgency = "soon"
	UrgencyNormal  Urgency = "normal"
)

// Task is an assignment record (job opening) that can seed a search.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	JobRole     string     `json:"job_role"`
	Skills      []string   `json:"skills"`
	Description string     `json:"description"`
	AssignedBy  string     `json:"assigned_by"`
	AssignedTo  string     `json:"assigned_to"`
	Status      TaskStatus `json:"status"`
	Deadline    time.Time  `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UrgencyAt classifies the task deadline relative to now: past deadlines are
// overdue, anything due within a day is urgent, within three days is soon.
func (t Task) UrgencyAt(now time.Time) Urgency {
	remaining := t.Deadline.Sub(now)
	switch {
	case remaining < 0:
		return UrgencyOverdue
	case remaining <= 24*time.Hour:
		return UrgencyUrgent
	case remaining <= 72*time.Hour:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}
