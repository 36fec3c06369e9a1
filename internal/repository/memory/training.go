package memory

import (
	"context"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Training plans ---

type planRepo struct{ d *db }

func (r *planRepo) Upsert(ctx context.Context, plan *domain.TrainingPlan) error {
	defer r.d.lock(ctx)()
	now := time.Now().UTC()
	stored, err := first(r.d.plans, func(p domain.TrainingPlan) bool {
		return p.StudentID == plan.StudentID && p.Weekday == plan.Weekday
	})
	if err != nil {
		plan.ID = primitive.NewObjectID()
		plan.CreatedAt = now
	} else {
		plan.ID = stored.ID
		plan.CreatedAt = stored.CreatedAt
		if plan.TrainerID == nil {
			plan.TrainerID = stored.TrainerID
		}
	}
	plan.UpdatedAt = now

	row := *plan
	row.Exercises = nil
	r.d.plans[row.ID] = row
	return nil
}

func (r *planRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	defer r.d.lock(ctx)()
	return get(r.d.plans, id)
}

func (r *planRepo) GetByStudentAndWeekday(ctx context.Context, studentID primitive.ObjectID, weekday int) (*domain.TrainingPlan, error) {
	defer r.d.lock(ctx)()
	return first(r.d.plans, func(p domain.TrainingPlan) bool {
		return p.StudentID == studentID && p.Weekday == weekday
	})
}

func (r *planRepo) ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.TrainingPlan, error) {
	defer r.d.lock(ctx)()
	set := idSet(studentIDs)
	return filter(r.d.plans,
		func(p domain.TrainingPlan) bool { return set[p.StudentID] },
		func(a, b domain.TrainingPlan) bool {
			if a.StudentID != b.StudentID {
				return a.StudentID.Hex() < b.StudentID.Hex()
			}
			return a.Weekday < b.Weekday
		},
	), nil
}

func (r *planRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	if _, ok := r.d.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.plans, id)
	return nil
}

func (r *planRepo) Touch(ctx context.Context, id primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	stored, ok := r.d.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.UpdatedAt = time.Now().UTC()
	r.d.plans[id] = stored
	return nil
}

func (r *planRepo) CountByTrainerCreatedBetween(ctx context.Context, trainerID primitive.ObjectID, from, to time.Time) (int64, error) {
	defer r.d.lock(ctx)()
	rows := filter(r.d.plans, func(p domain.TrainingPlan) bool {
		return p.TrainerID != nil && *p.TrainerID == trainerID &&
			!p.CreatedAt.Before(from) && !p.CreatedAt.After(to)
	}, nil)
	return int64(len(rows)), nil
}

// --- Exercises ---

type exerciseRepo struct{ d *db }

func stamp(e *domain.Exercise, now time.Time) {
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = domain.ExerciseNotStarted
	}
}

func (r *exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	stamp(exercise, time.Now().UTC())
	r.d.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepo) CreateMany(ctx context.Context, exercises []domain.Exercise) error {
	defer r.d.lock(ctx)()
	now := time.Now().UTC()
	for i := range exercises {
		stamp(&exercises[i], now)
		r.d.exercises[exercises[i].ID] = exercises[i]
	}
	return nil
}

func (r *exerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	defer r.d.lock(ctx)()
	return get(r.d.exercises, id)
}

func byPlanOrder(a, b domain.Exercise) bool {
	if a.PlanID != b.PlanID {
		return a.PlanID.Hex() < b.PlanID.Hex()
	}
	return a.Order < b.Order
}

func (r *exerciseRepo) ListByPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]domain.Exercise, error) {
	defer r.d.lock(ctx)()
	set := idSet(planIDs)
	return filter(r.d.exercises, func(e domain.Exercise) bool { return set[e.PlanID] }, byPlanOrder), nil
}

func (r *exerciseRepo) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Exercise, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.exercises, func(e domain.Exercise) bool { return e.StudentID == studentID }, byPlanOrder), nil
}

func (r *exerciseRepo) modify(id primitive.ObjectID, fn func(e *domain.Exercise)) error {
	e, ok := r.d.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&e)
	e.UpdatedAt = time.Now().UTC()
	r.d.exercises[id] = e
	return nil
}

func (r *exerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	defer r.d.lock(ctx)()
	return r.modify(exercise.ID, func(e *domain.Exercise) {
		e.Name = exercise.Name
		e.Sets = exercise.Sets
		e.RepsPerSet = exercise.RepsPerSet
		e.WorkSeconds = exercise.WorkSeconds
		e.RestSeconds = exercise.RestSeconds
		e.Order = exercise.Order
		e.Status = exercise.Status
		e.MediaType = exercise.MediaType
		e.MediaURL = exercise.MediaURL
	})
}

func (r *exerciseRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.ExerciseStatus) error {
	defer r.d.lock(ctx)()
	return r.modify(id, func(e *domain.Exercise) { e.Status = status })
}

func (r *exerciseRepo) SetMedia(ctx context.Context, id primitive.ObjectID, mediaType domain.MediaType, url string) error {
	defer r.d.lock(ctx)()
	return r.modify(id, func(e *domain.Exercise) {
		e.MediaType = mediaType
		e.MediaURL = url
	})
}

func (r *exerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	if _, ok := r.d.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.exercises, id)
	return nil
}

func (r *exerciseRepo) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	defer r.d.lock(ctx)()
	for id, e := range r.d.exercises {
		if e.PlanID == planID {
			delete(r.d.exercises, id)
		}
	}
	return nil
}

// --- Reports ---

type reportRepo struct{ d *db }

func (r *reportRepo) Create(ctx context.Context, report *domain.Report) (primitive.ObjectID, error) {
	defer r.d.lock(ctx)()
	report.ID = primitive.NewObjectID()
	report.CreatedAt = time.Now().UTC()
	report.UpdatedAt = report.CreatedAt
	r.d.reports[report.ID] = *report
	return report.ID, nil
}

func (r *reportRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Report, error) {
	defer r.d.lock(ctx)()
	return get(r.d.reports, id)
}

func (r *reportRepo) Update(ctx context.Context, report *domain.Report) error {
	defer r.d.lock(ctx)()
	stored, ok := r.d.reports[report.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Type = report.Type
	stored.Value = report.Value
	stored.Date = report.Date
	stored.Note = report.Note
	if report.TrainerID != nil {
		stored.TrainerID = report.TrainerID
	}
	stored.UpdatedAt = time.Now().UTC()
	report.UpdatedAt = stored.UpdatedAt
	r.d.reports[report.ID] = stored
	return nil
}

func (r *reportRepo) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Report, error) {
	defer r.d.lock(ctx)()
	return filter(r.d.reports,
		func(rep domain.Report) bool { return rep.StudentID == studentID },
		func(a, b domain.Report) bool {
			if !a.Date.Equal(b.Date) {
				return a.Date.After(b.Date)
			}
			return a.CreatedAt.After(b.CreatedAt)
		},
	), nil
}

func (r *reportRepo) GetByStudentTypeAndDate(ctx context.Context, studentID primitive.ObjectID, reportType domain.ReportType, day time.Time) (*domain.Report, error) {
	defer r.d.lock(ctx)()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return first(r.d.reports, func(rep domain.Report) bool {
		return rep.StudentID == studentID && rep.Type == reportType &&
			!rep.Date.Before(start) && rep.Date.Before(end)
	})
}
