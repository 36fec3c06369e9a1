package service_test

import (
	"context"
	"testing"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"
	"gymconnect/backend/internal/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListTasks_MarksPastDueAsOverdue(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	student := f.student(&gym.Gym.ID)

	yesterday := time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339)
	tomorrow := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	late, err := f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "Enviar atestado", DueDate: yesterday, AssignedTo: &student.User.ID})
	require.NoError(t, err)
	_, err = f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "Renovar plano", DueDate: tomorrow})
	require.NoError(t, err)
	done, err := f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "Avaliação física", DueDate: yesterday})
	require.NoError(t, err)
	_, err = f.tasks.UpdateStatus(f.ctx, gym, done.ID, domain.TaskCompleted)
	require.NoError(t, err)

	listed, err := f.tasks.List(f.ctx, student)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, domain.TaskOverdue, listed[0].Status)
	require.NotNil(t, listed[0].Creator)
	assert.Equal(t, gym.User.ID, listed[0].Creator.ID)
	require.NotNil(t, listed[0].Assignee)
	assert.Equal(t, student.User.ID, listed[0].Assignee.ID)

	stored, err := f.store.Tasks.GetByID(f.ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskOverdue, stored.Status)

	statuses := map[string]domain.TaskStatus{}
	all, err := f.tasks.List(f.ctx, gym)
	require.NoError(t, err)
	for _, task := range all {
		statuses[task.Title] = task.Status
	}
	assert.Equal(t, map[string]domain.TaskStatus{
		"Enviar atestado":  domain.TaskOverdue,
		"Renovar plano":    domain.TaskPending,
		"Avaliação física": domain.TaskCompleted,
	}, statuses)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterTasksOverdue))
}

// completingTasks completes the given tasks right before the overdue write,
// as a concurrent status update would.
type completingTasks struct {
	repository.TaskRepository
	complete []primitive.ObjectID
}

func (r completingTasks) MarkOverdue(ctx context.Context, ids []primitive.ObjectID, now time.Time) (int64, error) {
	for _, id := range r.complete {
		if err := r.TaskRepository.UpdateStatus(ctx, id, domain.TaskCompleted); err != nil {
			return 0, err
		}
	}
	return r.TaskRepository.MarkOverdue(ctx, ids, now)
}

func TestListTasks_ReportsStoredStatusAfterOverdueWrite(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()

	yesterday := time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339)
	finished, err := f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "Conferir catraca", DueDate: yesterday})
	require.NoError(t, err)
	late, err := f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "Trocar cabos", DueDate: yesterday})
	require.NoError(t, err)

	racing := *f.store
	racing.Tasks = completingTasks{TaskRepository: f.store.Tasks, complete: []primitive.ObjectID{finished.ID}}
	tasks := service.NewTaskService(service.NewCore(&racing, nil))

	listed, err := tasks.List(f.ctx, gym)
	require.NoError(t, err)
	statuses := map[primitive.ObjectID]domain.TaskStatus{}
	for _, task := range listed {
		statuses[task.ID] = task.Status
	}
	assert.Equal(t, map[primitive.ObjectID]domain.TaskStatus{
		finished.ID: domain.TaskCompleted,
		late.ID:     domain.TaskOverdue,
	}, statuses)

	stored, err := f.store.Tasks.GetByID(f.ctx, finished.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, stored.Status)
}

func TestTasks_Permissions(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	student := f.student(&gym.Gym.ID)
	stranger := f.student(nil)
	due := time.Now().Add(time.Hour).Format(time.RFC3339)

	keep := false
	pinned, err := f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "Fixa", DueDate: due, AssignedTo: &student.User.ID, Deletable: &keep})
	require.NoError(t, err)
	assert.False(t, pinned.Deletable)
	task, err := f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "Comum", DueDate: due, AssignedTo: &student.User.ID})
	require.NoError(t, err)
	assert.True(t, task.Deletable)

	updated, err := f.tasks.UpdateStatus(f.ctx, student, task.ID, domain.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, updated.Status)

	_, err = f.tasks.UpdateStatus(f.ctx, stranger, task.ID, domain.TaskPending)
	assert.ErrorIs(t, err, service.ErrNotYourTask)
	_, err = f.tasks.UpdateStatus(f.ctx, gym, task.ID, "done")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	assert.ErrorIs(t, f.tasks.Delete(f.ctx, student, task.ID), service.ErrNotYourTask)
	assert.ErrorIs(t, f.tasks.Delete(f.ctx, gym, pinned.ID), service.ErrTaskNotDeletable)
	require.NoError(t, f.tasks.Delete(f.ctx, gym, task.ID))
	assert.ErrorIs(t, f.tasks.Delete(f.ctx, gym, task.ID), service.ErrTaskNotFound)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	ghost := primitive.NewObjectID()

	_, err := f.tasks.Create(f.ctx, gym, service.TaskInput{DueDate: "2024-05-01"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "x"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = f.tasks.Create(f.ctx, gym, service.TaskInput{Title: "x", DueDate: "2024-05-01", AssignedTo: &ghost})
	assert.ErrorIs(t, err, service.ErrUnknownUser)
}

func TestUsersForTasks(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	linked := f.link(trainer, f.student(&gym.Gym.ID))
	f.student(&gym.Gym.ID)

	users, err := f.directory.UsersForTasks(f.ctx, gym)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	users, err = f.directory.UsersForTasks(f.ctx, trainer)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, linked.User.ID, users[0].ID)

	users, err = f.directory.UsersForTasks(f.ctx, linked)
	require.NoError(t, err)
	assert.Empty(t, users)
}
