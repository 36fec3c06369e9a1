package service

import (
	"context"
	"errors"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConsistencyEnforcer validates cross-entity references before they are
// written. Edge writes run in their own transaction and use conditional
// updates; the Check* helpers are meant to be called inside the caller's.
type ConsistencyEnforcer struct {
	store *repository.Store
}

func NewConsistencyEnforcer(store *repository.Store) *ConsistencyEnforcer {
	return &ConsistencyEnforcer{store: store}
}

// edgeWriteError maps the outcome of a conditional edge write.
func edgeWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return ErrConcurrentUpdate
	case errors.Is(err, repository.ErrNotFound):
		return ErrStudentNotFound
	}
	return err
}

// BindStudentToTrainer links an unlinked student to trainerID.
// A student that already has a trainer is refused, whoever that trainer is.
func (e *ConsistencyEnforcer) BindStudentToTrainer(ctx context.Context, studentID, trainerID primitive.ObjectID) (*domain.StudentProfile, error) {
	var bound *domain.StudentProfile
	err := e.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		student, err := e.store.Students.GetByID(ctx, studentID)
		if err != nil {
			return notFoundAs(err, ErrStudentNotFound)
		}
		if student.TrainerID != nil {
			return ErrAlreadyLinked
		}
		trainer, err := e.store.Trainers.GetByID(ctx, trainerID)
		if err != nil {
			return notFoundAs(err, ErrTrainerNotFound)
		}
		if trainer.GymID != nil && !domain.SameID(trainer.GymID, student.GymID) {
			return ErrTrainerOutsideGym
		}

		// Writing the trainer document makes a concurrent gym change of the
		// same trainer conflict with this bind.
		if err := e.store.Trainers.Touch(ctx, trainer.ID); err != nil {
			return notFoundAs(err, ErrTrainerNotFound)
		}
		if err := e.store.Students.SetTrainerIf(ctx, student.ID, nil, trainer.ID); err != nil {
			return edgeWriteError(err)
		}
		student.TrainerID = domain.IDRef(trainer.ID)
		bound = student
		return nil
	})
	return bound, err
}

// AssociateStudentWithGym affiliates an unaffiliated student with gymID.
// Repeating the call for the same gym is a no-op.
func (e *ConsistencyEnforcer) AssociateStudentWithGym(ctx context.Context, studentID, gymID primitive.ObjectID) (*domain.StudentProfile, error) {
	var associated *domain.StudentProfile
	err := e.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		student, err := e.store.Students.GetByID(ctx, studentID)
		if err != nil {
			return notFoundAs(err, ErrStudentNotFound)
		}
		if student.GymID != nil {
			if *student.GymID == gymID {
				associated = student
				return nil
			}
			return ErrAlreadyAffiliated
		}
		if _, err := e.CheckGym(ctx, gymID); err != nil {
			return err
		}
		if err := e.checkTrainerFits(ctx, student, domain.IDRef(gymID)); err != nil {
			return err
		}

		if err := e.store.Students.SetGymIf(ctx, student.ID, nil, gymID); err != nil {
			return edgeWriteError(err)
		}
		student.GymID = domain.IDRef(gymID)
		associated = student
		return nil
	})
	return associated, err
}

// CheckStudentAffiliation validates a gym change requested through the
// student's own preferences.
func (e *ConsistencyEnforcer) CheckStudentAffiliation(ctx context.Context, student *domain.StudentProfile, gymID *primitive.ObjectID) error {
	if gymID != nil {
		if _, err := e.CheckGym(ctx, *gymID); err != nil {
			return err
		}
	}
	return e.checkTrainerFits(ctx, student, gymID)
}

// checkTrainerFits holds the student's trainer, if any, to gymID.
func (e *ConsistencyEnforcer) checkTrainerFits(ctx context.Context, student *domain.StudentProfile, gymID *primitive.ObjectID) error {
	if student.TrainerID == nil {
		return nil
	}
	trainer, err := e.store.Trainers.GetByID(ctx, *student.TrainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil // dangling edge, nothing to conflict with
	}
	if err != nil {
		return err
	}
	if trainer.GymID != nil && !domain.SameID(trainer.GymID, gymID) {
		return ErrTrainerOutsideGym
	}
	return nil
}

// CheckTrainerGymChange refuses to move a trainer into a gym while any of its
// students sits in another one.
func (e *ConsistencyEnforcer) CheckTrainerGymChange(ctx context.Context, trainer *domain.TrainerProfile, gymID *primitive.ObjectID) error {
	if gymID == nil || domain.SameID(trainer.GymID, gymID) {
		return nil
	}
	if _, err := e.CheckGym(ctx, *gymID); err != nil {
		return err
	}
	outside, err := e.store.Students.CountByTrainerOutsideGym(ctx, trainer.ID, gymID)
	if err != nil {
		return err
	}
	if outside > 0 {
		return ErrTrainerOutsideGym
	}
	return nil
}

// CheckPayment loads the student a payment refers to and holds the payment's
// gym to the student's current gym.
func (e *ConsistencyEnforcer) CheckPayment(ctx context.Context, studentID, gymID primitive.ObjectID) (*domain.StudentProfile, error) {
	student, err := e.CheckStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.GymID == nil || *student.GymID != gymID {
		return nil, ErrGymMismatch
	}
	return student, nil
}

func (e *ConsistencyEnforcer) CheckStudent(ctx context.Context, id primitive.ObjectID) (*domain.StudentProfile, error) {
	student, err := e.store.Students.GetByID(ctx, id)
	return student, notFoundAs(err, ErrUnknownStudent)
}

func (e *ConsistencyEnforcer) CheckGym(ctx context.Context, id primitive.ObjectID) (*domain.GymProfile, error) {
	gym, err := e.store.Gyms.GetByID(ctx, id)
	return gym, notFoundAs(err, ErrUnknownGym)
}

func (e *ConsistencyEnforcer) CheckUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := e.store.Users.GetByID(ctx, id)
	return user, notFoundAs(err, ErrUnknownUser)
}
