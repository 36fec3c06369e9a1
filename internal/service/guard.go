package service

import (
	"gymconnect/backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Guard decides whether a principal may act on an already loaded target.
// Targets are loaded before the guard runs, so a missing target surfaces as
// NotFound and an out-of-scope one as Forbidden. The guard never writes.
type Guard struct {
	graph *RelationshipGraph
}

func NewGuard(graph *RelationshipGraph) *Guard {
	return &Guard{graph: graph}
}

// OwnProfile allows a principal to act on records owned by its own user.
func (g *Guard) OwnProfile(p domain.Principal, ownerID primitive.ObjectID) error {
	if p.UserID() != ownerID {
		return ErrForbidden
	}
	return nil
}

// TrainerStudent allows a trainer on the plans and reports of its linked
// students. There is no implicit binding: the edge must already exist.
func (g *Guard) TrainerStudent(p domain.Principal, student *domain.StudentProfile) error {
	tp, err := RequireTrainer(p)
	if err != nil {
		return err
	}
	if !g.graph.TrainerHasStudent(tp.Trainer, student) {
		return ErrNotYourStudent
	}
	return nil
}

// GymStudent allows a gym on the profile of a student affiliated with it.
func (g *Guard) GymStudent(p domain.Principal, student *domain.StudentProfile) error {
	gp, err := RequireGym(p)
	if err != nil {
		return err
	}
	if !g.graph.GymOwnsStudent(gp.Gym, student) {
		return ErrOutsideGym
	}
	return nil
}

// GymTrainer allows a gym on the profile of a trainer affiliated with it.
func (g *Guard) GymTrainer(p domain.Principal, trainer *domain.TrainerProfile) error {
	gp, err := RequireGym(p)
	if err != nil {
		return err
	}
	if !g.graph.GymOwnsTrainer(gp.Gym, trainer) {
		return ErrOutsideGym
	}
	return nil
}

// StudentRecord allows the student itself, its gym or its trainer.
func (g *Guard) StudentRecord(p domain.Principal, student *domain.StudentProfile) error {
	allowed := domain.MatchPrincipal(p,
		func(gp *domain.GymPrincipal) bool { return g.graph.GymOwnsStudent(gp.Gym, student) },
		func(tp *domain.TrainerPrincipal) bool { return g.graph.TrainerHasStudent(tp.Trainer, student) },
		func(sp *domain.StudentPrincipal) bool { return sp.Student.ID == student.ID },
		func(*domain.GenericPrincipal) bool { return false },
	)
	if !allowed {
		return ErrForbidden
	}
	return nil
}

// StudentReports guards reads of a student's measurement history.
// The audience is the one of StudentRecord.
func (g *Guard) StudentReports(p domain.Principal, student *domain.StudentProfile) error {
	return g.StudentRecord(p, student)
}

// ManageEvent allows the owning gym to change an event and read its confirmations.
func (g *Guard) ManageEvent(p domain.Principal, event *domain.Event) error {
	gp, err := RequireGym(p)
	if err != nil {
		return err
	}
	if gp.Gym.ID != event.GymID {
		return ErrOutsideGym
	}
	return nil
}

// AttendEvent allows students and trainers of the event's gym when the
// audience includes their role.
func (g *Guard) AttendEvent(p domain.Principal, event *domain.Event) error {
	switch p.(type) {
	case *domain.StudentPrincipal, *domain.TrainerPrincipal:
	default:
		return ErrWrongRole
	}
	if !g.graph.EventVisibleTo(p, event) {
		return ErrNotYourEvent
	}
	return nil
}
