package repository

import (
	"context"
	"time"

	"gymconnect/backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	// ErrConflict is returned by conditional writes whose precondition no longer holds.
	ErrConflict = RepositoryError("conditional write lost")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn as a single all-or-nothing unit. Repository calls made
// with the ctx passed to fn take part in the unit.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error
	SetAvatarURL(ctx context.Context, id primitive.ObjectID, url string) error
}

// GymRepository stores gym profiles.
type GymRepository interface {
	Create(ctx context.Context, gym *domain.GymProfile) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GymProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.GymProfile, error)
	List(ctx context.Context) ([]domain.GymProfile, error)
	Update(ctx context.Context, gym *domain.GymProfile) error
}

// TrainerRepository stores trainer profiles.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *domain.TrainerProfile) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error)
	// List returns every trainer, or only those of gymID when it is set.
	List(ctx context.Context, gymID *primitive.ObjectID) ([]domain.TrainerProfile, error)
	Update(ctx context.Context, trainer *domain.TrainerProfile) error
	// Touch bumps the profile's updatedAt so concurrent transactions that
	// depend on it conflict.
	Touch(ctx context.Context, id primitive.ObjectID) error
}

// StudentRepository stores student profiles and their relationship edges.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.StudentProfile) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.StudentProfile, error)
	ListByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.StudentProfile, error)
	ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.StudentProfile, error)
	// Update writes the descriptive fields and the gym reference. The trainer edge is left alone.
	Update(ctx context.Context, student *domain.StudentProfile) error
	// SetTrainerIf sets the trainer edge only when the stored edge equals expected.
	// It returns ErrConflict when the precondition fails.
	SetTrainerIf(ctx context.Context, studentID primitive.ObjectID, expected *primitive.ObjectID, trainerID primitive.ObjectID) error
	// SetGymIf sets the gym edge only when the stored edge equals expected.
	SetGymIf(ctx context.Context, studentID primitive.ObjectID, expected *primitive.ObjectID, gymID primitive.ObjectID) error
	// CountByTrainerOutsideGym counts students of trainerID whose gym differs from gymID.
	CountByTrainerOutsideGym(ctx context.Context, trainerID primitive.ObjectID, gymID *primitive.ObjectID) (int64, error)
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
type TrainingPlanRepository interface {
	// Upsert creates or updates the plan keyed by (StudentID, Weekday) and sets plan.ID.
	Upsert(ctx context.Context, plan *domain.TrainingPlan) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetByStudentAndWeekday(ctx context.Context, studentID primitive.ObjectID, weekday int) (*domain.TrainingPlan, error)
	ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.TrainingPlan, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Touch bumps the plan's updatedAt. See TrainerRepository.Touch.
	Touch(ctx context.Context, id primitive.ObjectID) error
	CountByTrainerCreatedBetween(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) (int64, error)
}

// ExerciseRepository stores the exercises of training plans.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, exercises []domain.Exercise) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	ListByPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]domain.Exercise, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ExerciseStatus) error
	SetMedia(ctx context.Context, id primitive.ObjectID, mediaType domain.MediaType, url string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error
}

// ReportRepository stores measurement samples.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Report, error)
	Update(ctx context.Context, report *domain.Report) error
	// ListByStudent returns samples newest first.
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Report, error)
	// GetByStudentTypeAndDate finds the sample of a type recorded on a calendar day.
	GetByStudentTypeAndDate(ctx context.Context, studentID primitive.ObjectID, reportType domain.ReportType, day time.Time) (*domain.Report, error)
}

// PaymentRepository stores payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error)
	// ListByStudent returns payments by due date, latest first.
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Payment, error)
	ListByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Payment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus, paidAt *time.Time) error
}

// EventFilter narrows event listings.
type EventFilter struct {
	Audiences []domain.Audience // Empty means any audience
	// Upcoming selects events starting at or after Now, Past selects the ones before.
	Upcoming *bool
	Now      time.Time
}

// EventRepository stores gym events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Event, error)
	ListByGym(ctx context.Context, gymID primitive.ObjectID, filter EventFilter) ([]domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AttendanceRepository stores event attendance confirmations.
type AttendanceRepository interface {
	Get(ctx context.Context, eventID, userID primitive.ObjectID) (*domain.EventAttendance, error)
	// Upsert creates the (event, user) confirmation or updates its comment.
	Upsert(ctx context.Context, eventID, userID primitive.ObjectID, comment string) (*domain.EventAttendance, error)
	Delete(ctx context.Context, eventID, userID primitive.ObjectID) error
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]domain.EventAttendance, error)
	DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) error
}

// TaskRepository stores tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Task, error)
	// ListForUser returns tasks created by or assigned to userID, by due date.
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Task, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.TaskStatus) error
	// MarkOverdue moves the given tasks from pending to overdue when due before now.
	// It returns how many tasks changed.
	MarkOverdue(ctx context.Context, ids []primitive.ObjectID, now time.Time) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByURL(ctx context.Context, url string) (*domain.Upload, error)
	DeleteByURL(ctx context.Context, url string) error
}

// Store bundles every repository behind one persistence handle.
type Store struct {
	Users       UserRepository
	Gyms        GymRepository
	Trainers    TrainerRepository
	Students    StudentRepository
	Plans       TrainingPlanRepository
	Exercises   ExerciseRepository
	Reports     ReportRepository
	Payments    PaymentRepository
	Events      EventRepository
	Attendances AttendanceRepository
	Tasks       TaskRepository
	Uploads     UploadRepository
	Tx          Transactor
}
