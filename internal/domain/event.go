package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audience restricts which roles see an event.
type Audience string

const (
	AudienceStudents Audience = "ALUNO"
	AudienceTrainers Audience = "PERSONAL"
	AudienceAll      Audience = "TODOS"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceStudents, AudienceTrainers, AudienceAll:
		return true
	}
	return false
}

// Includes reports whether a member of role is part of the audience.
func (a Audience) Includes(role Role) bool {
	if a == AudienceAll {
		return true
	}
	switch role {
	case RoleStudent:
		return a == AudienceStudents
	case RoleTrainer:
		return a == AudienceTrainers
	}
	return false
}

// Event belongs to one gym.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GymID       primitive.ObjectID `bson:"gymId" json:"academiaId"`
	Title       string             `bson:"title" json:"titulo"`
	Description string             `bson:"description,omitempty" json:"descricao,omitempty"`
	StartDate   time.Time          `bson:"startDate" json:"dataInicio"`
	EndDate     *time.Time         `bson:"endDate,omitempty" json:"dataFim,omitempty"`
	Location    string             `bson:"location,omitempty" json:"local,omitempty"`
	Audience    Audience           `bson:"audience" json:"tipo"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EventAttendance is unique per (EventID, UserID).
type EventAttendance struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"eventId" json:"eventoId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Comment   string             `bson:"comment,omitempty" json:"comentario,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
