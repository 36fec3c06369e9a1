package memory

import (
	"context"
	"strings"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Users ---

type userRepo struct{ d *db }

func (r *userRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	email := strings.ToLower(user.Email)
	if _, err := first(r.d.users, func(u domain.User) bool { return u.Email == email }); err == nil {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.d.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.d.lock(ctx)()
	email = strings.ToLower(email)
	return first(r.d.users, func(u domain.User) bool { return u.Email == email })
}

func (r *userRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	defer r.d.lock(ctx)()
	return get(r.d.users, id)
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	defer r.d.lock(ctx)()
	set := idSet(ids)
	return filter(r.d.users,
		func(u domain.User) bool { return set[u.ID] },
		func(a, b domain.User) bool { return a.Name < b.Name },
	), nil
}

func (r *userRepo) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	defer r.d.lock(ctx)()
	u, ok := r.d.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = name
	u.UpdatedAt = time.Now().UTC()
	r.d.users[id] = u
	return nil
}

func (r *userRepo) SetAvatarURL(ctx context.Context, id primitive.ObjectID, url string) error {
	defer r.d.lock(ctx)()
	u, ok := r.d.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.AvatarURL = url
	u.UpdatedAt = time.Now().UTC()
	r.d.users[id] = u
	return nil
}

// --- Gyms ---

type gymRepo struct{ d *db }

func (r *gymRepo) taken(gym *domain.GymProfile) bool {
	_, err := first(r.d.gyms, func(g domain.GymProfile) bool {
		return g.ID != gym.ID && (g.UserID == gym.UserID || g.TaxID == gym.TaxID)
	})
	return err == nil
}

func (r *gymRepo) Create(ctx context.Context, gym *domain.GymProfile) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	gym.ID = primitive.NewObjectID()
	if r.taken(gym) {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	gym.CreatedAt = time.Now().UTC()
	gym.UpdatedAt = gym.CreatedAt
	r.d.gyms[gym.ID] = *gym
	return gym.ID, nil
}

func (r *gymRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GymProfile, error) {
	defer r.d.lock(ctx)()
	return get(r.d.gyms, id)
}

func (r *gymRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.GymProfile, error) {
	defer r.d.lock(ctx)()
	return first(r.d.gyms, func(g domain.GymProfile) bool { return g.UserID == userID })
}

func (r *gymRepo) List(ctx context.Context) ([]domain.GymProfile, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.gyms,
		func(domain.GymProfile) bool { return true },
		func(a, b domain.GymProfile) bool { return a.Name < b.Name },
	), nil
}

func (r *gymRepo) Update(ctx context.Context, gym *domain.GymProfile) error {
	defer r.d.lock(ctx)()
	stored, ok := r.d.gyms[gym.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.taken(gym) {
		return repository.ErrDuplicate
	}
	gym.UserID = stored.UserID
	gym.CreatedAt = stored.CreatedAt
	gym.UpdatedAt = time.Now().UTC()
	r.d.gyms[gym.ID] = *gym
	return nil
}

// --- Trainers ---

type trainerRepo struct{ d *db }

func (r *trainerRepo) taken(t *domain.TrainerProfile) bool {
	_, err := first(r.d.trainers, func(o domain.TrainerProfile) bool {
		return o.ID != t.ID && (o.UserID == t.UserID || o.LicenseID == t.LicenseID)
	})
	return err == nil
}

func (r *trainerRepo) Create(ctx context.Context, trainer *domain.TrainerProfile) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	trainer.ID = primitive.NewObjectID()
	if r.taken(trainer) {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	trainer.CreatedAt = time.Now().UTC()
	trainer.UpdatedAt = trainer.CreatedAt
	r.d.trainers[trainer.ID] = *trainer
	return trainer.ID, nil
}

func (r *trainerRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainerProfile, error) {
	defer r.d.lock(ctx)()
	return get(r.d.trainers, id)
}

func (r *trainerRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainerProfile, error) {
	defer r.d.lock(ctx)()
	return first(r.d.trainers, func(t domain.TrainerProfile) bool { return t.UserID == userID })
}

func (r *trainerRepo) List(ctx context.Context, gymID *primitive.ObjectID) ([]domain.TrainerProfile, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.trainers,
		func(t domain.TrainerProfile) bool { return gymID == nil || domain.SameID(t.GymID, gymID) },
		func(a, b domain.TrainerProfile) bool { return a.CreatedAt.Before(b.CreatedAt) },
	), nil
}

func (r *trainerRepo) Update(ctx context.Context, trainer *domain.TrainerProfile) error {
	defer r.d.lock(ctx)()
	stored, ok := r.d.trainers[trainer.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.taken(trainer) {
		return repository.ErrDuplicate
	}
	trainer.UserID = stored.UserID
	trainer.CreatedAt = stored.CreatedAt
	trainer.UpdatedAt = time.Now().UTC()
	r.d.trainers[trainer.ID] = *trainer
	return nil
}

func (r *trainerRepo) Touch(ctx context.Context, id primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	stored, ok := r.d.trainers[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.UpdatedAt = time.Now().UTC()
	r.d.trainers[id] = stored
	return nil
}

// --- Students ---

type studentRepo struct{ d *db }

func (r *studentRepo) Create(ctx context.Context, student *domain.StudentProfile) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	if _, err := first(r.d.students, func(s domain.StudentProfile) bool { return s.UserID == student.UserID }); err == nil {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	student.ID = primitive.NewObjectID()
	student.CreatedAt = time.Now().UTC()
	student.UpdatedAt = student.CreatedAt
	r.d.students[student.ID] = *student
	return student.ID, nil
}

func (r *studentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentProfile, error) {
	defer r.d.lock(ctx)()
	return get(r.d.students, id)
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.StudentProfile, error) {
	defer r.d.lock(ctx)()
	return first(r.d.students, func(s domain.StudentProfile) bool { return s.UserID == userID })
}

func byCreation(a, b domain.StudentProfile) bool { return a.CreatedAt.Before(b.CreatedAt) }

func (r *studentRepo) ListByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.StudentProfile, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.students, func(s domain.StudentProfile) bool {
		return s.GymID != nil && *s.GymID == gymID
	}, byCreation), nil
}

func (r *studentRepo) ListByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.StudentProfile, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.students, func(s domain.StudentProfile) bool {
		return s.TrainerID != nil && *s.TrainerID == trainerID
	}, byCreation), nil
}

func (r *studentRepo) Update(ctx context.Context, student *domain.StudentProfile) error {
	defer r.d.lock(ctx)()
	stored, ok := r.d.students[student.ID]
	if !ok {
		return repository.ErrNotFound
	}
	student.UserID = stored.UserID
	student.TrainerID = stored.TrainerID
	student.CreatedAt = stored.CreatedAt
	student.UpdatedAt = time.Now().UTC()
	r.d.students[student.ID] = *student
	return nil
}

func (r *studentRepo) SetTrainerIf(ctx context.Context, studentID primitive.ObjectID, expected *primitive.ObjectID, trainerID primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	s, ok := r.d.students[studentID]
	if !ok {
		return repository.ErrNotFound
	}
	if !domain.SameID(s.TrainerID, expected) {
		return repository.ErrConflict
	}
	s.TrainerID = domain.IDRef(trainerID)
	s.UpdatedAt = time.Now().UTC()
	r.d.students[studentID] = s
	return nil
}

func (r *studentRepo) SetGymIf(ctx context.Context, studentID primitive.ObjectID, expected *primitive.ObjectID, gymID primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	s, ok := r.d.students[studentID]
	if !ok {
		return repository.ErrNotFound
	}
	if !domain.SameID(s.GymID, expected) {
		return repository.ErrConflict
	}
	s.GymID = domain.IDRef(gymID)
	s.UpdatedAt = time.Now().UTC()
	r.d.students[studentID] = s
	return nil
}

func (r *studentRepo) CountByTrainerOutsideGym(ctx context.Context, trainerID primitive.ObjectID, gymID *primitive.ObjectID) (int64, error) {
	defer r.d.lock(ctx)()
	rows := filter(r.d.students, func(s domain.StudentProfile) bool {
		if s.TrainerID == nil || *s.TrainerID != trainerID {
			return false
		}
		if gymID == nil {
			return s.GymID != nil
		}
		return !domain.SameID(s.GymID, gymID)
	}, nil)
	return int64(len(rows)), nil
}
