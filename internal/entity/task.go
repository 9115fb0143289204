package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task priorities accepted by the API.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Task is an embedded sub-document; completed tasks are copied into the
// owning user's History.
type Task struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	Desc      string             `json:"desc"`
	Completed bool               `json:"completed"`
	CreatedAt time.Time          `json:"createdAt"`
	DeadLine  *time.Time         `json:"deadLine,omitempty"`
	Priority  string             `json:"priority"`
}

// Overdue reports whether the task has a deadline in the past and is
// still incomplete.
func (t *Task) Overdue(now time.Time) bool {
	return !t.Completed && t.DeadLine != nil && t.DeadLine.Before(now)
}

// DueWithin reports whether the incomplete task's deadline falls inside
// (now, now+window].
func (t *Task) DueWithin(now time.Time, window time.Duration) bool {
	if t.Completed || t.DeadLine == nil {
		return false
	}
	return t.DeadLine.After(now) && !t.DeadLine.After(now.Add(window))
}
