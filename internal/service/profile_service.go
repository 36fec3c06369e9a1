package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GymProfileInput struct {
	Name        string
	TaxID       string
	Address     string
	Phone       string
	Hours       string
	Description string
	Amenities   []string
	Plans       []domain.GymPlan
	Website     string
	Instagram   string
	Facebook    string
}

// TrainerPreferencesInput replaces every descriptive field of a trainer profile.
// A nil GymID keeps the current affiliation.
type TrainerPreferencesInput struct {
	LicenseID         string
	BirthDate         string
	Gender            string
	Specializations   []string
	YearsOfExperience int
	WorkSchedule      string
	Certifications    []string
	Biography         string
	WorkLocation      string
	PricePerHour      float64
	Languages         []string
	Instagram         string
	LinkedIn          string
	GymID             *primitive.ObjectID
}

// TrainerProfilePatch changes only the fields that are set.
type TrainerProfilePatch struct {
	BirthDate         *string
	Gender            *string
	Specializations   []string
	YearsOfExperience *int
	WorkSchedule      *string
	Certifications    []string
	Biography         *string
	WorkLocation      *string
	PricePerHour      *float64
	Languages         []string
	Instagram         *string
	LinkedIn          *string
}

// StudentPreferencesInput replaces every descriptive field of a student profile.
// A nil GymID keeps the current affiliation.
type StudentPreferencesInput struct {
	BirthDate           string
	Gender              string
	Goal                string
	HealthCondition     string
	Experience          string
	Height              float64
	Weight              float64
	ActivityLevel       string
	PhysicalLimitations string
	GymID               *primitive.ObjectID
}

type StudentProfilePatch struct {
	BirthDate           *string
	Gender              *string
	Goal                *string
	HealthCondition     *string
	Experience          *string
	Height              *float64
	Weight              *float64
	ActivityLevel       *string
	PhysicalLimitations *string
}

type GymDetails struct {
	Gym  *domain.GymProfile
	User *domain.User
}

type TrainerDetails struct {
	Trainer *domain.TrainerProfile
	User    *domain.User
}

type StudentDetails struct {
	Student *domain.StudentProfile
	User    *domain.User
}

type ProfileService interface {
	GymProfile(ctx context.Context, p domain.Principal) (*domain.GymProfile, error)
	SaveGymProfile(ctx context.Context, p domain.Principal, in GymProfileInput) (*domain.GymProfile, error)
	GymDetails(ctx context.Context, gymID primitive.ObjectID) (*GymDetails, error)

	TrainerDetails(ctx context.Context, trainerID primitive.ObjectID) (*TrainerDetails, error)
	SaveTrainerPreferences(ctx context.Context, p domain.Principal, in TrainerPreferencesInput) (*domain.TrainerProfile, error)
	EditTrainerProfile(ctx context.Context, p domain.Principal, patch TrainerProfilePatch) (*domain.TrainerProfile, error)

	// StudentPreferences reads the caller's own profile when studentID is nil.
	StudentPreferences(ctx context.Context, p domain.Principal, studentID *primitive.ObjectID) (*StudentDetails, error)
	SaveStudentPreferences(ctx context.Context, p domain.Principal, studentID *primitive.ObjectID, in StudentPreferencesInput) (*domain.StudentProfile, error)
	EditStudentProfile(ctx context.Context, p domain.Principal, patch StudentProfilePatch) (*domain.StudentProfile, error)
}

type profileService struct {
	*Core
}

func NewProfileService(core *Core) ProfileService {
	return &profileService{Core: core}
}

func parseBirthDate(s string) (*time.Time, error) {
	t, err := domain.ParseCalendarDate(s)
	if err != nil {
		return nil, invalidInput("birthDate: %s", err)
	}
	return &t, nil
}

// === Gym ===

func (s *profileService) GymProfile(ctx context.Context, p domain.Principal) (*domain.GymProfile, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}
	return s.Graph.Gym(ctx, gp.Gym.ID)
}

func (s *profileService) SaveGymProfile(ctx context.Context, p domain.Principal, in GymProfileInput) (*domain.GymProfile, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}

	var saved *domain.GymProfile
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		gym, err := s.Graph.Gym(ctx, gp.Gym.ID)
		if err != nil {
			return err
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			gym.Name = name
		}
		if taxID := strings.TrimSpace(in.TaxID); taxID != "" {
			gym.TaxID = taxID
		}
		gym.Address = in.Address
		gym.Phone = in.Phone
		gym.Hours = in.Hours
		gym.Description = in.Description
		gym.Amenities = in.Amenities
		gym.Plans = in.Plans
		gym.Website = in.Website
		gym.Instagram = in.Instagram
		gym.Facebook = in.Facebook

		if err := s.Store.Gyms.Update(ctx, gym); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrTaxIDTaken
			}
			return err
		}
		saved = gym
		return nil
	})
	return saved, err
}

func (s *profileService) GymDetails(ctx context.Context, gymID primitive.ObjectID) (*GymDetails, error) {
	gym, err := s.Graph.Gym(ctx, gymID)
	if err != nil {
		return nil, err
	}
	user, err := s.Store.Users.GetByID(ctx, gym.UserID)
	if err != nil {
		return nil, notFoundAs(err, ErrGymNotFound)
	}
	user.PasswordHash = ""
	return &GymDetails{Gym: gym, User: user}, nil
}

// === Trainer ===

func (s *profileService) TrainerDetails(ctx context.Context, trainerID primitive.ObjectID) (*TrainerDetails, error) {
	trainer, err := s.Graph.Trainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	user, err := s.Store.Users.GetByID(ctx, trainer.UserID)
	if err != nil {
		return nil, notFoundAs(err, ErrTrainerNotFound)
	}
	user.PasswordHash = ""
	return &TrainerDetails{Trainer: trainer, User: user}, nil
}

func (s *profileService) SaveTrainerPreferences(ctx context.Context, p domain.Principal, in TrainerPreferencesInput) (*domain.TrainerProfile, error) {
	tp, err := RequireTrainer(p)
	if err != nil {
		return nil, err
	}
	birthDate, err := parseBirthDate(in.BirthDate)
	if err != nil {
		return nil, err
	}

	var saved *domain.TrainerProfile
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		trainer, err := s.Graph.Trainer(ctx, tp.Trainer.ID)
		if err != nil {
			return err
		}
		if in.GymID != nil {
			if err := s.Enforce.CheckTrainerGymChange(ctx, trainer, in.GymID); err != nil {
				return err
			}
			trainer.GymID = in.GymID
		}
		if license := strings.TrimSpace(in.LicenseID); license != "" {
			trainer.LicenseID = license
		}
		trainer.BirthDate = birthDate
		trainer.Gender = in.Gender
		trainer.Specializations = in.Specializations
		trainer.YearsOfExperience = in.YearsOfExperience
		trainer.WorkSchedule = in.WorkSchedule
		trainer.Certifications = in.Certifications
		trainer.Biography = in.Biography
		trainer.WorkLocation = in.WorkLocation
		trainer.PricePerHour = in.PricePerHour
		trainer.Languages = in.Languages
		trainer.Instagram = in.Instagram
		trainer.LinkedIn = in.LinkedIn

		if err := s.Store.Trainers.Update(ctx, trainer); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrLicenseTaken
			}
			return err
		}
		saved = trainer
		return nil
	})
	return saved, err
}

func (s *profileService) EditTrainerProfile(ctx context.Context, p domain.Principal, patch TrainerProfilePatch) (*domain.TrainerProfile, error) {
	tp, err := RequireTrainer(p)
	if err != nil {
		return nil, err
	}
	var birthDate *time.Time
	if patch.BirthDate != nil {
		if birthDate, err = parseBirthDate(*patch.BirthDate); err != nil {
			return nil, err
		}
	}

	var saved *domain.TrainerProfile
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		trainer, err := s.Graph.Trainer(ctx, tp.Trainer.ID)
		if err != nil {
			return err
		}
		if birthDate != nil {
			trainer.BirthDate = birthDate
		}
		setIf(&trainer.Gender, patch.Gender)
		setIf(&trainer.YearsOfExperience, patch.YearsOfExperience)
		setIf(&trainer.WorkSchedule, patch.WorkSchedule)
		setIf(&trainer.Biography, patch.Biography)
		setIf(&trainer.WorkLocation, patch.WorkLocation)
		setIf(&trainer.PricePerHour, patch.PricePerHour)
		setIf(&trainer.Instagram, patch.Instagram)
		setIf(&trainer.LinkedIn, patch.LinkedIn)
		if patch.Specializations != nil {
			trainer.Specializations = patch.Specializations
		}
		if patch.Certifications != nil {
			trainer.Certifications = patch.Certifications
		}
		if patch.Languages != nil {
			trainer.Languages = patch.Languages
		}

		if err := s.Store.Trainers.Update(ctx, trainer); err != nil {
			return err
		}
		saved = trainer
		return nil
	})
	return saved, err
}

// === Student ===

// targetStudent resolves the student a preferences call is about: the
// caller itself, or the student named by id when the caller is staff.
func (s *profileService) targetStudent(ctx context.Context, p domain.Principal, studentID *primitive.ObjectID) (*domain.StudentProfile, error) {
	if sp, ok := p.(*domain.StudentPrincipal); ok && (studentID == nil || *studentID == sp.Student.ID) {
		return s.Graph.Student(ctx, sp.Student.ID)
	}
	if studentID == nil {
		return nil, ErrWrongRole
	}
	student, err := s.Graph.Student(ctx, *studentID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.StudentRecord(p, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *profileService) StudentPreferences(ctx context.Context, p domain.Principal, studentID *primitive.ObjectID) (*StudentDetails, error) {
	student, err := s.targetStudent(ctx, p, studentID)
	if err != nil {
		return nil, err
	}
	user, err := s.Store.Users.GetByID(ctx, student.UserID)
	if err != nil {
		return nil, notFoundAs(err, ErrStudentNotFound)
	}
	user.PasswordHash = ""
	return &StudentDetails{Student: student, User: user}, nil
}

func (s *profileService) SaveStudentPreferences(ctx context.Context, p domain.Principal, studentID *primitive.ObjectID, in StudentPreferencesInput) (*domain.StudentProfile, error) {
	switch p.(type) {
	case *domain.StudentPrincipal, *domain.GymPrincipal:
	default:
		return nil, ErrWrongRole
	}
	birthDate, err := parseBirthDate(in.BirthDate)
	if err != nil {
		return nil, err
	}

	var saved *domain.StudentProfile
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		student, err := s.targetStudent(ctx, p, studentID)
		if err != nil {
			return err
		}
		if in.GymID != nil && !domain.SameID(in.GymID, student.GymID) {
			// A gym can only pull students into itself.
			if gp, ok := p.(*domain.GymPrincipal); ok && *in.GymID != gp.Gym.ID {
				return ErrOutsideGym
			}
			if err := s.Enforce.CheckStudentAffiliation(ctx, student, in.GymID); err != nil {
				return err
			}
			student.GymID = in.GymID
		}
		student.BirthDate = birthDate
		student.Gender = in.Gender
		student.Goal = in.Goal
		student.HealthCondition = in.HealthCondition
		student.Experience = in.Experience
		student.Height = in.Height
		student.Weight = in.Weight
		student.ActivityLevel = in.ActivityLevel
		student.PhysicalLimitations = in.PhysicalLimitations

		if err := s.Store.Students.Update(ctx, student); err != nil {
			return err
		}
		saved = student
		return nil
	})
	return saved, err
}

func (s *profileService) EditStudentProfile(ctx context.Context, p domain.Principal, patch StudentProfilePatch) (*domain.StudentProfile, error) {
	sp, err := RequireStudent(p)
	if err != nil {
		return nil, err
	}
	var birthDate *time.Time
	if patch.BirthDate != nil {
		if birthDate, err = parseBirthDate(*patch.BirthDate); err != nil {
			return nil, err
		}
	}

	var saved *domain.StudentProfile
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		student, err := s.Graph.Student(ctx, sp.Student.ID)
		if err != nil {
			return err
		}
		if birthDate != nil {
			student.BirthDate = birthDate
		}
		setIf(&student.Gender, patch.Gender)
		setIf(&student.Goal, patch.Goal)
		setIf(&student.HealthCondition, patch.HealthCondition)
		setIf(&student.Experience, patch.Experience)
		setIf(&student.Height, patch.Height)
		setIf(&student.Weight, patch.Weight)
		setIf(&student.ActivityLevel, patch.ActivityLevel)
		setIf(&student.PhysicalLimitations, patch.PhysicalLimitations)

		if err := s.Store.Students.Update(ctx, student); err != nil {
			return err
		}
		saved = student
		return nil
	})
	return saved, err
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
