// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExerciseStatus string

const (
	ExerciseNotStarted ExerciseStatus = "not-started"
	ExerciseInProgress ExerciseStatus = "inprogress"
	ExerciseCompleted  ExerciseStatus = "completed"
)

func (s ExerciseStatus) Valid() bool {
	switch s {
	case ExerciseNotStarted, ExerciseInProgress, ExerciseCompleted:
		return true
	}
	return false
}

// MediaType tells how MediaURL should be rendered by clients.
type MediaType string

const (
	MediaImage   MediaType = "image"
	MediaVideo   MediaType = "video"
	MediaGIF     MediaType = "gif"
	MediaYouTube MediaType = "youtube"
)

// Exercise belongs to exactly one TrainingPlan. StudentID is denormalized
// from the plan so ownership checks need a single lookup.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID      primitive.ObjectID `bson:"planId" json:"treinoId"`
	StudentID   primitive.ObjectID `bson:"studentId" json:"alunoId"`
	Name        string             `bson:"name" json:"name"`
	Sets        int                `bson:"sets" json:"sets"`
	RepsPerSet  int                `bson:"repsPerSet" json:"repsPerSet"`
	WorkSeconds int                `bson:"time" json:"time"`
	RestSeconds int                `bson:"restTime" json:"restTime"`
	Order       int                `bson:"order" json:"ordem"`
	Status      ExerciseStatus     `bson:"status" json:"status"`
	MediaType   MediaType          `bson:"mediaType,omitempty" json:"mediaType,omitempty"`
	MediaURL    string             `bson:"mediaUrl,omitempty" json:"image,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
