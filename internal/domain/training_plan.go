// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekdays follow time.Weekday: 0 is Sunday, 6 is Saturday.
const (
	MinWeekday = 0
	MaxWeekday = 6
)

// ValidWeekday reports whether d is in [0,6].
func ValidWeekday(d int) bool {
	return d >= MinWeekday && d <= MaxWeekday
}

// TrainingPlan ("treino") is one weekday's set of exercises for a student.
// There is at most one plan per (StudentID, Weekday).
type TrainingPlan struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID   primitive.ObjectID  `bson:"studentId" json:"alunoId"`
	TrainerID   *primitive.ObjectID `bson:"trainerId,omitempty" json:"personalId,omitempty"` // Who wrote the plan
	Weekday     int                 `bson:"weekday" json:"diaSemana"`
	Name        string              `bson:"name,omitempty" json:"nome,omitempty"`
	Description string              `bson:"description,omitempty" json:"descricao,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`

	// Loaded from the exercises collection, never stored on the plan document.
	Exercises []Exercise `bson:"-" json:"exercicios"`
}
