package service

import (
	"context"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdentityResolver turns a verified user id into a Principal carrying the
// profile of the user's role.
type IdentityResolver struct {
	store *repository.Store
}

func NewIdentityResolver(store *repository.Store) *IdentityResolver {
	return &IdentityResolver{store: store}
}

// Resolve fetches the user and its role profile. A missing user means the
// token outlived its account.
func (r *IdentityResolver) Resolve(ctx context.Context, userID primitive.ObjectID) (domain.Principal, error) {
	user, err := r.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	switch user.Role {
	case domain.RoleGym:
		gym, err := r.store.Gyms.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, notFoundAs(err, ErrProfileNotFound)
		}
		return &domain.GymPrincipal{User: user, Gym: gym}, nil
	case domain.RoleTrainer:
		trainer, err := r.store.Trainers.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, notFoundAs(err, ErrProfileNotFound)
		}
		return &domain.TrainerPrincipal{User: user, Trainer: trainer}, nil
	case domain.RoleStudent:
		student, err := r.store.Students.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, notFoundAs(err, ErrProfileNotFound)
		}
		return &domain.StudentPrincipal{User: user, Student: student}, nil
	default:
		return &domain.GenericPrincipal{User: user}, nil
	}
}

// RequireGym narrows p to a gym principal or fails with ErrWrongRole.
func RequireGym(p domain.Principal) (*domain.GymPrincipal, error) {
	if gp, ok := p.(*domain.GymPrincipal); ok {
		return gp, nil
	}
	return nil, ErrWrongRole
}

func RequireTrainer(p domain.Principal) (*domain.TrainerPrincipal, error) {
	if tp, ok := p.(*domain.TrainerPrincipal); ok {
		return tp, nil
	}
	return nil, ErrWrongRole
}

func RequireStudent(p domain.Principal) (*domain.StudentPrincipal, error) {
	if sp, ok := p.(*domain.StudentPrincipal); ok {
		return sp, nil
	}
	return nil, ErrWrongRole
}

// UserOf returns the user behind any principal.
func UserOf(p domain.Principal) *domain.User {
	return domain.MatchPrincipal(p,
		func(g *domain.GymPrincipal) *domain.User { return g.User },
		func(t *domain.TrainerPrincipal) *domain.User { return t.User },
		func(s *domain.StudentPrincipal) *domain.User { return s.User },
		func(u *domain.GenericPrincipal) *domain.User { return u.User },
	)
}
