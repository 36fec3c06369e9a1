package service

import (
	"context"
	"errors"
	"strings"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExerciseInput struct {
	Name        string
	Sets        int
	RepsPerSet  int
	WorkSeconds int
	RestSeconds int
	Order       *int
	Status      domain.ExerciseStatus
	MediaType   domain.MediaType
	MediaURL    string
}

type PlanInput struct {
	Name        string
	Description string
	Exercises   []ExerciseInput
}

// StudentPlans is one roster entry of the trainer's plan overview.
type StudentPlans struct {
	Student domain.StudentProfile
	User    domain.User
	Plans   []domain.TrainingPlan
}

type TrainingService interface {
	// Trainer side
	TrainerPlans(ctx context.Context, p domain.Principal) ([]StudentPlans, error)
	StudentPlan(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, weekday int) (*domain.TrainingPlan, error)
	// ReplacePlan writes the plan of a weekday and swaps its exercise list as one unit.
	ReplacePlan(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, weekday int, in PlanInput) (plan *domain.TrainingPlan, created bool, err error)
	DeletePlan(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, weekday int) error
	AddExercise(ctx context.Context, p domain.Principal, planID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID) error

	// Student side
	Week(ctx context.Context, p domain.Principal) (map[int][]domain.Exercise, error)
	Day(ctx context.Context, p domain.Principal, weekday int) (*domain.TrainingPlan, error)
	SetExerciseStatus(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID, status domain.ExerciseStatus) (*domain.Exercise, error)
}

type trainingService struct {
	*Core
}

func NewTrainingService(core *Core) TrainingService {
	return &trainingService{Core: core}
}

func validateExercise(in ExerciseInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidInput("exercise name is required")
	}
	if in.Sets < 0 || in.RepsPerSet < 0 || in.WorkSeconds < 0 || in.RestSeconds < 0 {
		return invalidInput("exercise %q: sets, reps and timings cannot be negative", in.Name)
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalidInput("exercise %q: unknown status %q", in.Name, in.Status)
	}
	if in.MediaType == domain.MediaYouTube && !IsYouTubeEmbed(in.MediaURL) {
		return ErrInvalidYouTubeURL
	}
	return nil
}

func exerciseFromInput(in ExerciseInput, order int) domain.Exercise {
	if in.Order != nil {
		order = *in.Order
	}
	return domain.Exercise{
		Name:        strings.TrimSpace(in.Name),
		Sets:        in.Sets,
		RepsPerSet:  in.RepsPerSet,
		WorkSeconds: in.WorkSeconds,
		RestSeconds: in.RestSeconds,
		Order:       order,
		Status:      in.Status,
		MediaType:   in.MediaType,
		MediaURL:    in.MediaURL,
	}
}

// linkedStudent loads a student and checks the calling trainer holds the edge.
func (s *trainingService) linkedStudent(ctx context.Context, p domain.Principal, studentID primitive.ObjectID) (*domain.StudentProfile, error) {
	if _, err := RequireTrainer(p); err != nil {
		return nil, err
	}
	student, err := s.Graph.Student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.TrainerStudent(p, student); err != nil {
		return nil, err
	}
	return student, nil
}

// withExercises attaches the exercises of each plan.
func (s *trainingService) withExercises(ctx context.Context, plans []domain.TrainingPlan) error {
	if len(plans) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, len(plans))
	for i, pl := range plans {
		ids[i] = pl.ID
	}
	exercises, err := s.Store.Exercises.ListByPlans(ctx, ids)
	if err != nil {
		return err
	}
	byPlan := make(map[primitive.ObjectID][]domain.Exercise, len(plans))
	for _, e := range exercises {
		byPlan[e.PlanID] = append(byPlan[e.PlanID], e)
	}
	for i := range plans {
		plans[i].Exercises = byPlan[plans[i].ID]
		if plans[i].Exercises == nil {
			plans[i].Exercises = []domain.Exercise{}
		}
	}
	return nil
}

func (s *trainingService) planOf(ctx context.Context, studentID primitive.ObjectID, weekday int) (*domain.TrainingPlan, error) {
	if !domain.ValidWeekday(weekday) {
		return nil, ErrInvalidWeekday
	}
	plan, err := s.Store.Plans.GetByStudentAndWeekday(ctx, studentID, weekday)
	if err != nil {
		return nil, notFoundAs(err, ErrPlanNotFound)
	}
	plans := []domain.TrainingPlan{*plan}
	if err := s.withExercises(ctx, plans); err != nil {
		return nil, err
	}
	return &plans[0], nil
}

// === Trainer side ===

func (s *trainingService) TrainerPlans(ctx context.Context, p domain.Principal) ([]StudentPlans, error) {
	if _, err := RequireTrainer(p); err != nil {
		return nil, err
	}
	students, err := s.Graph.StudentsOf(ctx, p)
	if err != nil {
		return nil, err
	}
	cards, err := s.studentCards(ctx, students)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	plans, err := s.Store.Plans.ListByStudents(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := s.withExercises(ctx, plans); err != nil {
		return nil, err
	}
	byStudent := make(map[primitive.ObjectID][]domain.TrainingPlan, len(students))
	for _, pl := range plans {
		byStudent[pl.StudentID] = append(byStudent[pl.StudentID], pl)
	}

	result := make([]StudentPlans, 0, len(cards))
	for _, c := range cards {
		studentPlans := byStudent[c.Student.ID]
		if studentPlans == nil {
			studentPlans = []domain.TrainingPlan{}
		}
		result = append(result, StudentPlans{Student: c.Student, User: c.User, Plans: studentPlans})
	}
	return result, nil
}

func (s *trainingService) StudentPlan(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, weekday int) (*domain.TrainingPlan, error) {
	student, err := s.linkedStudent(ctx, p, studentID)
	if err != nil {
		return nil, err
	}
	return s.planOf(ctx, student.ID, weekday)
}

func (s *trainingService) ReplacePlan(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, weekday int, in PlanInput) (*domain.TrainingPlan, bool, error) {
	if !domain.ValidWeekday(weekday) {
		return nil, false, ErrInvalidWeekday
	}
	for _, ex := range in.Exercises {
		if err := validateExercise(ex); err != nil {
			return nil, false, err
		}
	}
	if _, err := s.linkedStudent(ctx, p, studentID); err != nil {
		return nil, false, err
	}
	trainerID := p.(*domain.TrainerPrincipal).Trainer.ID

	var (
		plan    *domain.TrainingPlan
		created bool
	)
	err := s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// The edge may have moved since the guard ran.
		student, err := s.Enforce.CheckStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if err := s.Guard.TrainerStudent(p, student); err != nil {
			return err
		}

		_, err = s.Store.Plans.GetByStudentAndWeekday(ctx, studentID, weekday)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			created = true
		case err != nil:
			return err
		}

		plan = &domain.TrainingPlan{
			StudentID:   studentID,
			TrainerID:   domain.IDRef(trainerID),
			Weekday:     weekday,
			Name:        in.Name,
			Description: in.Description,
		}
		if err := s.Store.Plans.Upsert(ctx, plan); err != nil {
			return err
		}
		if err := s.Store.Exercises.DeleteByPlan(ctx, plan.ID); err != nil {
			return err
		}

		exercises := make([]domain.Exercise, len(in.Exercises))
		for i, ex := range in.Exercises {
			exercises[i] = exerciseFromInput(ex, i)
			exercises[i].PlanID = plan.ID
			exercises[i].StudentID = studentID
		}
		if len(exercises) > 0 {
			if err := s.Store.Exercises.CreateMany(ctx, exercises); err != nil {
				return err
			}
		}
		plan.Exercises = exercises
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	log.WithFields(log.Fields{
		"student_id": studentID.Hex(),
		"weekday":    weekday,
		"exercises":  len(plan.Exercises),
	}).Debug("training plan replaced")
	return plan, created, nil
}

func (s *trainingService) DeletePlan(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, weekday int) error {
	if !domain.ValidWeekday(weekday) {
		return ErrInvalidWeekday
	}
	if _, err := s.linkedStudent(ctx, p, studentID); err != nil {
		return err
	}
	return s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.Store.Plans.GetByStudentAndWeekday(ctx, studentID, weekday)
		if err != nil {
			return notFoundAs(err, ErrPlanNotFound)
		}
		if err := s.Store.Exercises.DeleteByPlan(ctx, plan.ID); err != nil {
			return err
		}
		return notFoundAs(s.Store.Plans.Delete(ctx, plan.ID), ErrPlanNotFound)
	})
}

func (s *trainingService) AddExercise(ctx context.Context, p domain.Principal, planID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if _, err := RequireTrainer(p); err != nil {
		return nil, err
	}
	if err := validateExercise(in); err != nil {
		return nil, err
	}
	plan, student, err := s.Graph.PlanOwner(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.TrainerStudent(p, student); err != nil {
		return nil, err
	}

	var exercise domain.Exercise
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Concurrent adds to one plan write the plan document first, so only
		// one of them reads the current highest order.
		if err := s.Store.Plans.Touch(ctx, plan.ID); err != nil {
			return notFoundAs(err, ErrPlanNotFound)
		}
		existing, err := s.Store.Exercises.ListByPlans(ctx, []primitive.ObjectID{plan.ID})
		if err != nil {
			return err
		}
		order := 0
		for _, e := range existing {
			if e.Order >= order {
				order = e.Order + 1
			}
		}

		exercise = exerciseFromInput(in, order)
		exercise.PlanID = plan.ID
		exercise.StudentID = plan.StudentID
		_, err = s.Store.Exercises.Create(ctx, &exercise)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (s *trainingService) UpdateExercise(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if _, err := RequireTrainer(p); err != nil {
		return nil, err
	}
	if err := validateExercise(in); err != nil {
		return nil, err
	}
	exercise, student, err := s.Graph.ExerciseOwner(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.TrainerStudent(p, student); err != nil {
		return nil, err
	}

	updated := exerciseFromInput(in, exercise.Order)
	updated.ID = exercise.ID
	updated.PlanID = exercise.PlanID
	updated.StudentID = exercise.StudentID
	updated.CreatedAt = exercise.CreatedAt
	if updated.Status == "" {
		updated.Status = exercise.Status
	}
	if updated.MediaURL == "" {
		updated.MediaType, updated.MediaURL = exercise.MediaType, exercise.MediaURL
	}
	if err := s.Store.Exercises.Update(ctx, &updated); err != nil {
		return nil, notFoundAs(err, ErrExerciseNotFound)
	}
	return s.reloadExercise(ctx, exercise.ID)
}

func (s *trainingService) DeleteExercise(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID) error {
	if _, err := RequireTrainer(p); err != nil {
		return err
	}
	_, student, err := s.Graph.ExerciseOwner(ctx, exerciseID)
	if err != nil {
		return err
	}
	if err := s.Guard.TrainerStudent(p, student); err != nil {
		return err
	}
	return notFoundAs(s.Store.Exercises.Delete(ctx, exerciseID), ErrExerciseNotFound)
}

func (s *Core) reloadExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.Store.Exercises.GetByID(ctx, id)
	return exercise, notFoundAs(err, ErrExerciseNotFound)
}

// === Student side ===

// Week returns the student's exercises keyed by weekday. Every weekday is
// present, days without a plan map to an empty list.
func (s *trainingService) Week(ctx context.Context, p domain.Principal) (map[int][]domain.Exercise, error) {
	sp, err := RequireStudent(p)
	if err != nil {
		return nil, err
	}
	plans, err := s.Store.Plans.ListByStudents(ctx, []primitive.ObjectID{sp.Student.ID})
	if err != nil {
		return nil, err
	}
	if err := s.withExercises(ctx, plans); err != nil {
		return nil, err
	}

	week := make(map[int][]domain.Exercise, domain.MaxWeekday+1)
	for d := domain.MinWeekday; d <= domain.MaxWeekday; d++ {
		week[d] = []domain.Exercise{}
	}
	for _, pl := range plans {
		week[pl.Weekday] = pl.Exercises
	}
	return week, nil
}

func (s *trainingService) Day(ctx context.Context, p domain.Principal, weekday int) (*domain.TrainingPlan, error) {
	sp, err := RequireStudent(p)
	if err != nil {
		return nil, err
	}
	return s.planOf(ctx, sp.Student.ID, weekday)
}

func (s *trainingService) SetExerciseStatus(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID, status domain.ExerciseStatus) (*domain.Exercise, error) {
	sp, err := RequireStudent(p)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalidInput("unknown exercise status %q", status)
	}
	exercise, err := s.Store.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, notFoundAs(err, ErrExerciseNotFound)
	}
	if exercise.StudentID != sp.Student.ID {
		return nil, ErrForbidden
	}
	if err := s.Store.Exercises.UpdateStatus(ctx, exerciseID, status); err != nil {
		return nil, notFoundAs(err, ErrExerciseNotFound)
	}
	return s.reloadExercise(ctx, exerciseID)
}
