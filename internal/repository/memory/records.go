package memory

import (
	"context"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Payments ---

type paymentRepo struct{ d *db }

func (r *paymentRepo) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = time.Now().UTC()
	payment.UpdatedAt = payment.CreatedAt
	r.d.payments[payment.ID] = *payment
	return payment.ID, nil
}

func (r *paymentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	defer r.d.lock(ctx)()
	return get(r.d.payments, id)
}

func latestDue(a, b domain.Payment) bool { return a.DueDate.After(b.DueDate) }

func (r *paymentRepo) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Payment, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.payments, func(p domain.Payment) bool { return p.StudentID == studentID }, latestDue), nil
}

func (r *paymentRepo) ListByGym(ctx context.Context, gymID primitive.ObjectID) ([]domain.Payment, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.payments, func(p domain.Payment) bool { return p.GymID == gymID }, latestDue), nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus, paidAt *time.Time) error {
	defer r.d.lock(ctx)()
	p, ok := r.d.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.PaidAt = paidAt
	p.UpdatedAt = time.Now().UTC()
	r.d.payments[id] = p
	return nil
}

// --- Events ---

type eventRepo struct{ d *db }

func (r *eventRepo) Create(ctx context.Context, event *domain.Event) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	event.ID = primitive.NewObjectID()
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt
	r.d.events[event.ID] = *event
	return event.ID, nil
}

func (r *eventRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Event, error) {
	defer r.d.lock(ctx)()
	return get(r.d.events, id)
}

func (r *eventRepo) ListByGym(ctx context.Context, gymID primitive.ObjectID, f repository.EventFilter) ([]domain.Event, error) {
	defer r.d.lock(ctx)()
	audiences := make(map[domain.Audience]bool, len(f.Audiences))
	for _, a := range f.Audiences {
		audiences[a] = true
	}
	past := f.Upcoming != nil && !*f.Upcoming

	return filter(r.d.events,
		func(e domain.Event) bool {
			if e.GymID != gymID {
				return false
			}
			if len(audiences) > 0 && !audiences[e.Audience] {
				return false
			}
			if f.Upcoming != nil && *f.Upcoming == e.StartDate.Before(f.Now) {
				return false
			}
			return true
		},
		func(a, b domain.Event) bool {
			if past {
				return a.StartDate.After(b.StartDate)
			}
			return a.StartDate.Before(b.StartDate)
		},
	), nil
}

func (r *eventRepo) Update(ctx context.Context, event *domain.Event) error {
	defer r.d.lock(ctx)()
	stored, ok := r.d.events[event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	event.GymID = stored.GymID
	event.CreatedAt = stored.CreatedAt
	event.UpdatedAt = time.Now().UTC()
	r.d.events[event.ID] = *event
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	if _, ok := r.d.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.events, id)
	return nil
}

// --- Attendance ---

type attendanceRepo struct{ d *db }

func (r *attendanceRepo) find(eventID, userID primitive.ObjectID) (*domain.EventAttendance, error) {
	return first(r.d.attendances, func(a domain.EventAttendance) bool {
		return a.EventID == eventID && a.UserID == userID
	})
}

func (r *attendanceRepo) Get(ctx context.Context, eventID, userID primitive.ObjectID) (*domain.EventAttendance, error) {
	defer r.d.lock(ctx)()
	return r.find(eventID, userID)
}

func (r *attendanceRepo) Upsert(ctx context.Context, eventID, userID primitive.ObjectID, comment string) (*domain.EventAttendance, error) {
	defer r.d.lock(ctx)()
	now := time.Now().UTC()
	a, err := r.find(eventID, userID)
	if err != nil {
		a = &domain.EventAttendance{
			ID:        primitive.NewObjectID(),
			EventID:   eventID,
			UserID:    userID,
			CreatedAt: now,
		}
	}
	a.Comment = comment
	a.UpdatedAt = now
	r.d.attendances[a.ID] = *a
	return a, nil
}

func (r *attendanceRepo) Delete(ctx context.Context, eventID, userID primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	a, err := r.find(eventID, userID)
	if err != nil {
		return err
	}
	delete(r.d.attendances, a.ID)
	return nil
}

func (r *attendanceRepo) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]domain.EventAttendance, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.attendances,
		func(a domain.EventAttendance) bool { return a.EventID == eventID },
		func(a, b domain.EventAttendance) bool { return a.CreatedAt.Before(b.CreatedAt) },
	), nil
}

func (r *attendanceRepo) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	for id, a := range r.d.attendances {
		if a.EventID == eventID {
			delete(r.d.attendances, id)
		}
	}
	return nil
}

// --- Tasks ---

type taskRepo struct{ d *db }

func (r *taskRepo) Create(ctx context.Context, task *domain.Task) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	r.d.tasks[task.ID] = *task
	return task.ID, nil
}

func (r *taskRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Task, error) {
	defer r.d.lock(ctx)()
	return get(r.d.tasks, id)
}

func (r *taskRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Task, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.tasks,
		func(t domain.Task) bool {
			return t.CreatedBy == userID || (t.AssignedTo != nil && *t.AssignedTo == userID)
		},
		func(a, b domain.Task) bool { return a.DueDate.Before(b.DueDate) },
	), nil
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.TaskStatus) error {
	defer r.d.lock(ctx)()
	t, ok := r.d.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	r.d.tasks[id] = t
	return nil
}

func (r *taskRepo) MarkOverdue(ctx context.Context, ids []primitive.ObjectID, now time.Time) (int64, error) {
	defer r.d.lock(ctx)()
	var changed int64
	for _, id := range ids {
		t, ok := r.d.tasks[id]
		if !ok || !t.IsOverdueAt(now) {
			continue
		}
		t.Status = domain.TaskOverdue
		t.UpdatedAt = now.UTC()
		r.d.tasks[id] = t
		changed++
	}
	return changed, nil
}

func (r *taskRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	if _, ok := r.d.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.tasks, id)
	return nil
}

// --- Uploads ---

type uploadRepo struct{ d *db }

func (r *uploadRepo) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	upload.ID = primitive.NewObjectID()
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}
	r.d.uploads[upload.ID] = *upload
	return upload.ID, nil
}

func (r *uploadRepo) GetByURL(ctx context.Context, url string) (*domain.Upload, error) {
	defer r.d.lock(ctx)()
	return first(r.d.uploads, func(u domain.Upload) bool { return u.URL == url })
}

func (r *uploadRepo) DeleteByURL(ctx context.Context, url string) error {
	defer r.d.lock(ctx)()
	for id, u := range r.d.uploads {
		if u.URL == url {
			delete(r.d.uploads, id)
		}
	}
	return nil
}
