package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GymPlan is one membership plan advertised by a gym.
type GymPlan struct {
	Name        string  `bson:"name" json:"name"`
	Price       float64 `bson:"price" json:"price"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
}

// GymProfile is owned by exactly one user with RoleGym.
type GymProfile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Name        string             `bson:"name" json:"name"`
	TaxID       string             `bson:"taxId" json:"cnpj"` // Unique
	Address     string             `bson:"address,omitempty" json:"endereco,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"telefone,omitempty"`
	Hours       string             `bson:"hours,omitempty" json:"horarioFuncionamento,omitempty"`
	Description string             `bson:"description,omitempty" json:"descricao,omitempty"`
	Amenities   []string           `bson:"amenities,omitempty" json:"comodidades,omitempty"`
	Plans       []GymPlan          `bson:"plans,omitempty" json:"planos,omitempty"`
	Website     string             `bson:"website,omitempty" json:"website,omitempty"`
	Instagram   string             `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Facebook    string             `bson:"facebook,omitempty" json:"facebook,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TrainerProfile is owned by exactly one user with RoleTrainer.
// GymID is nil for independent trainers.
type TrainerProfile struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID  `bson:"userId" json:"userId"`
	LicenseID         string              `bson:"licenseId" json:"cref"` // Unique
	BirthDate         *time.Time          `bson:"birthDate,omitempty" json:"-"`
	Gender            string              `bson:"gender,omitempty" json:"gender,omitempty"`
	Specializations   []string            `bson:"specializations,omitempty" json:"specializations,omitempty"`
	YearsOfExperience int                 `bson:"yearsOfExperience" json:"yearsOfExperience"`
	WorkSchedule      string              `bson:"workSchedule,omitempty" json:"workSchedule,omitempty"`
	Certifications    []string            `bson:"certifications,omitempty" json:"certifications,omitempty"`
	Biography         string              `bson:"biography,omitempty" json:"biography,omitempty"`
	WorkLocation      string              `bson:"workLocation,omitempty" json:"workLocation,omitempty"`
	PricePerHour      float64             `bson:"pricePerHour" json:"pricePerHour"`
	Languages         []string            `bson:"languages,omitempty" json:"languages,omitempty"`
	Instagram         string              `bson:"instagram,omitempty" json:"instagram,omitempty"`
	LinkedIn          string              `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	GymID             *primitive.ObjectID `bson:"gymId,omitempty" json:"academiaId,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// StudentProfile is owned by exactly one user with RoleStudent.
// A student may be unaffiliated, affiliated with a gym only, or with a gym and a trainer.
type StudentProfile struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID              primitive.ObjectID  `bson:"userId" json:"userId"`
	BirthDate           *time.Time          `bson:"birthDate,omitempty" json:"-"`
	Gender              string              `bson:"gender,omitempty" json:"gender,omitempty"`
	Goal                string              `bson:"goal,omitempty" json:"goal,omitempty"`
	HealthCondition     string              `bson:"healthCondition,omitempty" json:"healthCondition,omitempty"`
	Experience          string              `bson:"experience,omitempty" json:"experience,omitempty"`
	Height              float64             `bson:"height,omitempty" json:"height,omitempty"` // cm
	Weight              float64             `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	ActivityLevel       string              `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`
	PhysicalLimitations string              `bson:"physicalLimitations,omitempty" json:"physicalLimitations,omitempty"`
	GymID               *primitive.ObjectID `bson:"gymId,omitempty" json:"academiaId,omitempty"`
	TrainerID           *primitive.ObjectID `bson:"trainerId,omitempty" json:"personalId,omitempty"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// SameID compares two optional references. Two nil references are equal.
func SameID(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// IDRef returns a pointer to a copy of id.
func IDRef(id primitive.ObjectID) *primitive.ObjectID {
	return &id
}
