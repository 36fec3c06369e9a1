package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Wire values match the ones stored in the users collection.
const (
	RoleGym     Role = "ACADEMIA"
	RoleTrainer Role = "PERSONAL"
	RoleStudent Role = "ALUNO"
	RoleGeneric Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGym, RoleTrainer, RoleStudent, RoleGeneric:
		return true
	}
	return false
}

// User represents an identity record. Every user carries exactly one role,
// set at registration and never changed afterwards.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Lowercased, unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	AvatarURL    string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsGym() bool {
	return u.Role == RoleGym
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
