package service

import (
	"context"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelationshipGraph answers ownership questions between gyms, trainers,
// students and events. Nothing is cached: every loader reads the store.
type RelationshipGraph struct {
	store *repository.Store
}

func NewRelationshipGraph(store *repository.Store) *RelationshipGraph {
	return &RelationshipGraph{store: store}
}

// TrainerHasStudent reports whether the student's trainer edge points at trainer.
func (g *RelationshipGraph) TrainerHasStudent(trainer *domain.TrainerProfile, student *domain.StudentProfile) bool {
	return student.TrainerID != nil && *student.TrainerID == trainer.ID
}

func (g *RelationshipGraph) GymOwnsStudent(gym *domain.GymProfile, student *domain.StudentProfile) bool {
	return student.GymID != nil && *student.GymID == gym.ID
}

func (g *RelationshipGraph) GymOwnsTrainer(gym *domain.GymProfile, trainer *domain.TrainerProfile) bool {
	return trainer.GymID != nil && *trainer.GymID == gym.ID
}

// AffiliatedGym is the gym a principal acts within: its own for a gym, the
// affiliated one for students and trainers, nil otherwise.
func (g *RelationshipGraph) AffiliatedGym(p domain.Principal) *primitive.ObjectID {
	return domain.MatchPrincipal(p,
		func(gp *domain.GymPrincipal) *primitive.ObjectID { return domain.IDRef(gp.Gym.ID) },
		func(tp *domain.TrainerPrincipal) *primitive.ObjectID { return tp.Trainer.GymID },
		func(sp *domain.StudentPrincipal) *primitive.ObjectID { return sp.Student.GymID },
		func(*domain.GenericPrincipal) *primitive.ObjectID { return nil },
	)
}

// EventVisibleTo reports whether p may see event. The owning gym always does;
// students and trainers need the same gym and an audience that includes them.
func (g *RelationshipGraph) EventVisibleTo(p domain.Principal, event *domain.Event) bool {
	member := func(gymID *primitive.ObjectID, role domain.Role) bool {
		return gymID != nil && *gymID == event.GymID && event.Audience.Includes(role)
	}
	return domain.MatchPrincipal(p,
		func(gp *domain.GymPrincipal) bool { return gp.Gym.ID == event.GymID },
		func(tp *domain.TrainerPrincipal) bool { return member(tp.Trainer.GymID, domain.RoleTrainer) },
		func(sp *domain.StudentPrincipal) bool { return member(sp.Student.GymID, domain.RoleStudent) },
		func(*domain.GenericPrincipal) bool { return false },
	)
}

// --- Loaders ---

func (g *RelationshipGraph) Student(ctx context.Context, id primitive.ObjectID) (*domain.StudentProfile, error) {
	student, err := g.store.Students.GetByID(ctx, id)
	return student, notFoundAs(err, ErrStudentNotFound)
}

func (g *RelationshipGraph) Trainer(ctx context.Context, id primitive.ObjectID) (*domain.TrainerProfile, error) {
	trainer, err := g.store.Trainers.GetByID(ctx, id)
	return trainer, notFoundAs(err, ErrTrainerNotFound)
}

func (g *RelationshipGraph) Gym(ctx context.Context, id primitive.ObjectID) (*domain.GymProfile, error) {
	gym, err := g.store.Gyms.GetByID(ctx, id)
	return gym, notFoundAs(err, ErrGymNotFound)
}

func (g *RelationshipGraph) Event(ctx context.Context, id primitive.ObjectID) (*domain.Event, error) {
	event, err := g.store.Events.GetByID(ctx, id)
	return event, notFoundAs(err, ErrEventNotFound)
}

// ExerciseOwner loads an exercise together with the student it belongs to.
func (g *RelationshipGraph) ExerciseOwner(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, *domain.StudentProfile, error) {
	exercise, err := g.store.Exercises.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrExerciseNotFound)
	}
	student, err := g.Student(ctx, exercise.StudentID)
	if err != nil {
		return nil, nil, err
	}
	return exercise, student, nil
}

// PlanOwner loads a training plan together with its student.
func (g *RelationshipGraph) PlanOwner(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, *domain.StudentProfile, error) {
	plan, err := g.store.Plans.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrPlanNotFound)
	}
	student, err := g.Student(ctx, plan.StudentID)
	if err != nil {
		return nil, nil, err
	}
	return plan, student, nil
}

// StudentsOf lists the students in the roster of p: a gym's affiliated
// students or a trainer's linked ones. Other roles have none.
func (g *RelationshipGraph) StudentsOf(ctx context.Context, p domain.Principal) ([]domain.StudentProfile, error) {
	return domain.MatchPrincipal(p,
		func(gp *domain.GymPrincipal) func() ([]domain.StudentProfile, error) {
			return func() ([]domain.StudentProfile, error) { return g.store.Students.ListByGym(ctx, gp.Gym.ID) }
		},
		func(tp *domain.TrainerPrincipal) func() ([]domain.StudentProfile, error) {
			return func() ([]domain.StudentProfile, error) { return g.store.Students.ListByTrainer(ctx, tp.Trainer.ID) }
		},
		func(*domain.StudentPrincipal) func() ([]domain.StudentProfile, error) { return noStudents },
		func(*domain.GenericPrincipal) func() ([]domain.StudentProfile, error) { return noStudents },
	)()
}

func noStudents() ([]domain.StudentProfile, error) {
	return []domain.StudentProfile{}, nil
}
