package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskOverdue   TaskStatus = "overdue"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskCompleted, TaskOverdue:
		return true
	}
	return false
}

// Task is a to-do created by one user and optionally assigned to another.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	DueDate     time.Time           `bson:"dueDate" json:"dueDate"`
	Status      TaskStatus          `bson:"status" json:"status"`
	CreatedBy   primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Deletable   bool                `bson:"deletable" json:"deletable"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsOverdueAt reports whether the lazy pending -> overdue transition applies at now.
// Completed and overdue tasks only move through explicit updates.
func (t *Task) IsOverdueAt(now time.Time) bool {
	return t.Status == TaskPending && now.After(t.DueDate)
}

// CanChangeStatus reports whether userID may update the task status.
func (t *Task) CanChangeStatus(userID primitive.ObjectID) bool {
	return t.CreatedBy == userID || (t.AssignedTo != nil && *t.AssignedTo == userID)
}
