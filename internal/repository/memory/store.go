// Package memory keeps every repository in process memory. It backs the
// "memory" database driver used for local runs and the service tests.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

// db holds all tables behind one lock. A transaction holds the lock for its
// whole duration and restores a snapshot when it fails.
type db struct {
	mu sync.Mutex

	users       map[primitive.ObjectID]domain.User
	gyms        map[primitive.ObjectID]domain.GymProfile
	trainers    map[primitive.ObjectID]domain.TrainerProfile
	students    map[primitive.ObjectID]domain.StudentProfile
	plans       map[primitive.ObjectID]domain.TrainingPlan
	exercises   map[primitive.ObjectID]domain.Exercise
	reports     map[primitive.ObjectID]domain.Report
	payments    map[primitive.ObjectID]domain.Payment
	events      map[primitive.ObjectID]domain.Event
	attendances map[primitive.ObjectID]domain.EventAttendance
	tasks       map[primitive.ObjectID]domain.Task
	uploads     map[primitive.ObjectID]domain.Upload
}

// NewStore returns a repository.Store whose repositories share one in-memory database.
func NewStore() *repository.Store {
	d := &db{
		users:       map[primitive.ObjectID]domain.User{},
		gyms:        map[primitive.ObjectID]domain.GymProfile{},
		trainers:    map[primitive.ObjectID]domain.TrainerProfile{},
		students:    map[primitive.ObjectID]domain.StudentProfile{},
		plans:       map[primitive.ObjectID]domain.TrainingPlan{},
		exercises:   map[primitive.ObjectID]domain.Exercise{},
		reports:     map[primitive.ObjectID]domain.Report{},
		payments:    map[primitive.ObjectID]domain.Payment{},
		events:      map[primitive.ObjectID]domain.Event{},
		attendances: map[primitive.ObjectID]domain.EventAttendance{},
		tasks:       map[primitive.ObjectID]domain.Task{},
		uploads:     map[primitive.ObjectID]domain.Upload{},
	}
	return &repository.Store{
		Users:       &userRepo{d},
		Gyms:        &gymRepo{d},
		Trainers:    &trainerRepo{d},
		Students:    &studentRepo{d},
		Plans:       &planRepo{d},
		Exercises:   &exerciseRepo{d},
		Reports:     &reportRepo{d},
		Payments:    &paymentRepo{d},
		Events:      &eventRepo{d},
		Attendances: &attendanceRepo{d},
		Tasks:       &taskRepo{d},
		Uploads:     &uploadRepo{d},
		Tx:          d,
	}
}

// lock acquires the database lock unless ctx belongs to a running transaction of d.
func (d *db) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) == d {
		return func() {}
	}
	d.mu.Lock()
	return d.mu.Unlock
}

func (d *db) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == d {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	snap := d.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, d)); err != nil {
		d.restore(snap)
		return err
	}
	return nil
}

func (d *db) snapshot() *db {
	return &db{
		users:       maps.Clone(d.users),
		gyms:        maps.Clone(d.gyms),
		trainers:    maps.Clone(d.trainers),
		students:    maps.Clone(d.students),
		plans:       maps.Clone(d.plans),
		exercises:   maps.Clone(d.exercises),
		reports:     maps.Clone(d.reports),
		payments:    maps.Clone(d.payments),
		events:      maps.Clone(d.events),
		attendances: maps.Clone(d.attendances),
		tasks:       maps.Clone(d.tasks),
		uploads:     maps.Clone(d.uploads),
	}
}

func (d *db) restore(s *db) {
	d.users = s.users
	d.gyms = s.gyms
	d.trainers = s.trainers
	d.students = s.students
	d.plans = s.plans
	d.exercises = s.exercises
	d.reports = s.reports
	d.payments = s.payments
	d.events = s.events
	d.attendances = s.attendances
	d.tasks = s.tasks
	d.uploads = s.uploads
}

// get returns a copy of the row with id.
func get[T any](table map[primitive.ObjectID]T, id primitive.ObjectID) (*T, error) {
	row, ok := table[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

// filter returns the rows matching keep, ordered by less.
func filter[T any](table map[primitive.ObjectID]T, keep func(T) bool, less func(a, b T) bool) []T {
	rows := []T{}
	for _, row := range table {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	if less != nil {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}
	return rows
}

func first[T any](table map[primitive.ObjectID]T, keep func(T) bool) (*T, error) {
	for _, row := range table {
		if keep(row) {
			return &row, nil
		}
	}
	return nil, repository.ErrNotFound
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
