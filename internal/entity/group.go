package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group owns an ordered list of step tasks that must be completed in
// sequence.
type Group struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	StepTasks []StepTask         `json:"stepTasks"`
	Completed bool               `json:"completed"`
	CreatedAt time.Time          `json:"createdAt"`
}

// StepTask order values are 1-based and contiguous within a group.
type StepTask struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	Completed bool               `json:"completed"`
	Order     int                `json:"order"`
}

// AllStepsCompleted reports whether every step task is completed. An empty
// group counts as completed, matching the recompute done on delete.
func (g *Group) AllStepsCompleted() bool {
	for i := range g.StepTasks {
		if !g.StepTasks[i].Completed {
			return false
		}
	}
	return true
}

// FindStepTask returns the step task with the given id, or nil.
func (g *Group) FindStepTask(id primitive.ObjectID) *StepTask {
	for i := range g.StepTasks {
		if g.StepTasks[i].ID == id {
			return &g.StepTasks[i]
		}
	}
	return nil
}
