package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"
	"gymconnect/backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReplacePlan_SecondWriteReplacesExercises(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))

	first, created, err := f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 1, service.PlanInput{
		Name:      "Pernas",
		Exercises: exercises("Agachamento", "Leg press"),
	})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 1, service.PlanInput{
		Name:      "Pernas B",
		Exercises: exercises("Stiff", "Cadeira extensora", "Panturrilha"),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	plans, err := f.store.Plans.ListByStudents(f.ctx, []primitive.ObjectID{student.Student.ID})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Pernas B", plans[0].Name)

	stored, err := f.store.Exercises.ListByPlans(f.ctx, []primitive.ObjectID{first.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Stiff", "Cadeira extensora", "Panturrilha"}, exerciseNames(stored))

	plan, err := f.training.Day(f.ctx, student, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Stiff", "Cadeira extensora", "Panturrilha"}, exerciseNames(plan.Exercises))
}

func TestReplacePlan_ConcurrentWritesKeepOneList(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))

	listA := []string{"Supino", "Crucifixo", "Triceps corda"}
	listB := []string{"Remada", "Puxada"}

	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		for _, list := range [][]string{listA, listB} {
			wg.Add(1)
			go func(names []string) {
				defer wg.Done()
				_, _, err := f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 1, service.PlanInput{
					Exercises: exercises(names...),
				})
				assert.NoError(t, err)
			}(list)
		}
		wg.Wait()

		plan, err := f.training.StudentPlan(f.ctx, trainer, student.Student.ID, 1)
		require.NoError(t, err)
		got := exerciseNames(plan.Exercises)
		if !assert.Contains(t, [][]string{listA, listB}, got, "round %d", round) {
			return
		}
	}
}

// failingExercises breaks CreateMany, the last write of a plan replace.
type failingExercises struct {
	repository.ExerciseRepository
	err error
}

func (r failingExercises) CreateMany(context.Context, []domain.Exercise) error {
	return r.err
}

func TestReplacePlan_FailedWriteKeepsPreviousPlan(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))

	original, _, err := f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 3, service.PlanInput{
		Name:        "Costas",
		Description: "Foco em dorsais",
		Exercises:   exercises("Remada curvada", "Puxada alta"),
	})
	require.NoError(t, err)

	errInsert := errors.New("insert failed")
	broken := *f.store
	broken.Exercises = failingExercises{ExerciseRepository: f.store.Exercises, err: errInsert}
	training := service.NewTrainingService(service.NewCore(&broken, nil))

	_, _, err = training.ReplacePlan(f.ctx, trainer, student.Student.ID, 3, service.PlanInput{
		Name:      "Costas B",
		Exercises: exercises("Pullover", "Serrote", "Face pull"),
	})
	require.ErrorIs(t, err, errInsert)

	plan, err := f.store.Plans.GetByStudentAndWeekday(f.ctx, student.Student.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, original.ID, plan.ID)
	assert.Equal(t, "Costas", plan.Name)
	assert.Equal(t, "Foco em dorsais", plan.Description)

	stored, err := f.store.Exercises.ListByPlans(f.ctx, []primitive.ObjectID{original.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Remada curvada", "Puxada alta"}, exerciseNames(stored))

	day, err := f.training.StudentPlan(f.ctx, trainer, student.Student.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Remada curvada", "Puxada alta"}, exerciseNames(day.Exercises))
}

func TestAddExercise_ConcurrentAddsGetDistinctOrders(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))

	plan, _, err := f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 4, service.PlanInput{
		Exercises: exercises("Supino"),
	})
	require.NoError(t, err)

	const adds = 10
	var wg sync.WaitGroup
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.training.AddExercise(f.ctx, trainer, plan.ID, service.ExerciseInput{Name: "Crucifixo", Sets: 3})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.store.Exercises.ListByPlans(f.ctx, []primitive.ObjectID{plan.ID})
	require.NoError(t, err)
	require.Len(t, stored, adds+1)
	orders := map[int]bool{}
	for _, e := range stored {
		assert.False(t, orders[e.Order], "order %d assigned twice", e.Order)
		orders[e.Order] = true
	}
	for i := 0; i <= adds; i++ {
		assert.True(t, orders[i], "order %d missing", i)
	}
}

func TestReplacePlan_Validation(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))

	_, _, err := f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 7, service.PlanInput{})
	assert.ErrorIs(t, err, service.ErrInvalidWeekday)

	_, _, err = f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 2, service.PlanInput{
		Exercises: []service.ExerciseInput{{Name: "  "}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, _, err = f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 2, service.PlanInput{
		Exercises: []service.ExerciseInput{{Name: "Corrida", MediaType: domain.MediaYouTube, MediaURL: "https://youtu.be/abc"}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidYouTubeURL)

	_, _, err = f.training.ReplacePlan(f.ctx, student, student.Student.ID, 2, service.PlanInput{})
	assert.ErrorIs(t, err, service.ErrWrongRole)
}

func TestExercises_TrainerEditsStudentCompletes(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))
	other := f.student(&gym.Gym.ID)

	plan, _, err := f.training.ReplacePlan(f.ctx, trainer, student.Student.ID, 3, service.PlanInput{
		Exercises: exercises("Barra fixa"),
	})
	require.NoError(t, err)

	added, err := f.training.AddExercise(f.ctx, trainer, plan.ID, service.ExerciseInput{Name: "Rosca direta", Sets: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, added.Order)
	assert.Equal(t, domain.ExerciseNotStarted, added.Status)

	updated, err := f.training.UpdateExercise(f.ctx, trainer, added.ID, service.ExerciseInput{Name: "Rosca martelo", Sets: 3})
	require.NoError(t, err)
	assert.Equal(t, "Rosca martelo", updated.Name)
	assert.Equal(t, 3, updated.Sets)

	_, err = f.training.SetExerciseStatus(f.ctx, other, added.ID, domain.ExerciseCompleted)
	assert.ErrorIs(t, err, service.ErrForbidden)

	done, err := f.training.SetExerciseStatus(f.ctx, student, added.ID, domain.ExerciseCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseCompleted, done.Status)

	week, err := f.training.Week(f.ctx, student)
	require.NoError(t, err)
	assert.Len(t, week, 7)
	assert.Len(t, week[3], 2)
	assert.Empty(t, week[0])

	require.NoError(t, f.training.DeleteExercise(f.ctx, trainer, added.ID))
	_, err = f.training.UpdateExercise(f.ctx, trainer, added.ID, service.ExerciseInput{Name: "x"})
	assert.ErrorIs(t, err, service.ErrExerciseNotFound)

	require.NoError(t, f.training.DeletePlan(f.ctx, trainer, student.Student.ID, 3))
	_, err = f.training.StudentPlan(f.ctx, trainer, student.Student.ID, 3)
	assert.ErrorIs(t, err, service.ErrPlanNotFound)
	err = f.training.DeletePlan(f.ctx, trainer, student.Student.ID, 3)
	assert.ErrorIs(t, err, service.ErrPlanNotFound)
}

func TestTrainerPlans_ListsEveryLinkedStudent(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	withPlan := f.link(trainer, f.student(&gym.Gym.ID))
	f.link(trainer, f.student(&gym.Gym.ID))
	f.student(&gym.Gym.ID)

	_, _, err := f.training.ReplacePlan(f.ctx, trainer, withPlan.Student.ID, 5, service.PlanInput{Exercises: exercises("Esteira")})
	require.NoError(t, err)

	overview, err := f.training.TrainerPlans(f.ctx, trainer)
	require.NoError(t, err)
	require.Len(t, overview, 2)
	for _, entry := range overview {
		if entry.Student.ID == withPlan.Student.ID {
			require.Len(t, entry.Plans, 1)
			assert.Equal(t, []string{"Esteira"}, exerciseNames(entry.Plans[0].Exercises))
		} else {
			assert.Empty(t, entry.Plans)
			assert.NotNil(t, entry.Plans)
		}
	}
}
