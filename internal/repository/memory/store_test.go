package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"
	"gymconnect/backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUsers_EmailIsUniqueIgnoringCase(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_, err := store.Users.Create(ctx, &domain.User{Email: "Ana@Gym.com", Role: domain.RoleStudent})
	require.NoError(t, err)

	_, err = store.Users.Create(ctx, &domain.User{Email: "ana@gym.com", Role: domain.RoleTrainer})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := store.Users.GetByEmail(ctx, "ANA@gym.com")
	require.NoError(t, err)
	assert.Equal(t, "ana@gym.com", got.Email)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := store.Users.Create(ctx, &domain.User{Email: "a@b.c"}); err != nil {
			return err
		}
		// Nested units join the outer one.
		return store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := store.Users.GetByEmail(ctx, "a@b.c")
			require.NoError(t, err)
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Users.GetByEmail(ctx, "a@b.c")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStudents_SetTrainerIf(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	id, err := store.Students.Create(ctx, &domain.StudentProfile{UserID: primitive.NewObjectID()})
	require.NoError(t, err)

	t1, t2 := primitive.NewObjectID(), primitive.NewObjectID()
	require.NoError(t, store.Students.SetTrainerIf(ctx, id, nil, t1))
	assert.ErrorIs(t, store.Students.SetTrainerIf(ctx, id, nil, t2), repository.ErrConflict)
	assert.ErrorIs(t, store.Students.SetTrainerIf(ctx, primitive.NewObjectID(), nil, t2), repository.ErrNotFound)

	got, err := store.Students.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, t1, *got.TrainerID)
}

func TestPlans_ConcurrentUpsertKeepsOnePlanPerWeekday(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	studentID := primitive.NewObjectID()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
				plan := &domain.TrainingPlan{StudentID: studentID, Weekday: 1, Name: "A"}
				if err := store.Plans.Upsert(ctx, plan); err != nil {
					return err
				}
				if err := store.Exercises.DeleteByPlan(ctx, plan.ID); err != nil {
					return err
				}
				return store.Exercises.CreateMany(ctx, []domain.Exercise{
					{PlanID: plan.ID, StudentID: studentID, Name: "squat", Order: 0},
					{PlanID: plan.ID, StudentID: studentID, Name: "lunge", Order: 1},
				})
			})
		}(i)
	}
	wg.Wait()

	plans, err := store.Plans.ListByStudents(ctx, []primitive.ObjectID{studentID})
	require.NoError(t, err)
	require.Len(t, plans, 1)

	exercises, err := store.Exercises.ListByPlans(ctx, []primitive.ObjectID{plans[0].ID})
	require.NoError(t, err)
	require.Len(t, exercises, 2)
	assert.Equal(t, "squat", exercises[0].Name)
	assert.Equal(t, domain.ExerciseNotStarted, exercises[0].Status)
}

func TestTasks_MarkOverdueOnlyTouchesPendingPastDue(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Now().UTC()
	owner := primitive.NewObjectID()

	past, _ := store.Tasks.Create(ctx, &domain.Task{CreatedBy: owner, Status: domain.TaskPending, DueDate: now.Add(-time.Hour)})
	done, _ := store.Tasks.Create(ctx, &domain.Task{CreatedBy: owner, Status: domain.TaskCompleted, DueDate: now.Add(-time.Hour)})
	future, _ := store.Tasks.Create(ctx, &domain.Task{CreatedBy: owner, Status: domain.TaskPending, DueDate: now.Add(time.Hour)})

	changed, err := store.Tasks.MarkOverdue(ctx, []primitive.ObjectID{past, done, future}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	tasks, err := store.Tasks.ListForUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	statuses := map[primitive.ObjectID]domain.TaskStatus{}
	for _, task := range tasks {
		statuses[task.ID] = task.Status
	}
	assert.Equal(t, domain.TaskOverdue, statuses[past])
	assert.Equal(t, domain.TaskCompleted, statuses[done])
	assert.Equal(t, domain.TaskPending, statuses[future])
}

func TestEvents_ListByGymFilters(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	gym := primitive.NewObjectID()
	now := time.Now().UTC()

	_, _ = store.Events.Create(ctx, &domain.Event{GymID: gym, Title: "later", StartDate: now.Add(48 * time.Hour), Audience: domain.AudienceAll})
	_, _ = store.Events.Create(ctx, &domain.Event{GymID: gym, Title: "soon", StartDate: now.Add(time.Hour), Audience: domain.AudienceStudents})
	_, _ = store.Events.Create(ctx, &domain.Event{GymID: gym, Title: "staff", StartDate: now.Add(2 * time.Hour), Audience: domain.AudienceTrainers})
	_, _ = store.Events.Create(ctx, &domain.Event{GymID: gym, Title: "gone", StartDate: now.Add(-time.Hour), Audience: domain.AudienceAll})

	upcoming := true
	events, err := store.Events.ListByGym(ctx, gym, repository.EventFilter{
		Audiences: []domain.Audience{domain.AudienceStudents, domain.AudienceAll},
		Upcoming:  &upcoming,
		Now:       now,
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "soon", events[0].Title)
	assert.Equal(t, "later", events[1].Title)

	past := false
	events, err = store.Events.ListByGym(ctx, gym, repository.EventFilter{Upcoming: &past, Now: now})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "gone", events[0].Title)
}
