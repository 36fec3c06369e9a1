package domain_test

import (
	"testing"
	"time"

	"gymconnect/backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseCalendarDate(t *testing.T) {
	want := time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"15/03/1990",
		"1990-03-15",
		"1990-03-15T00:00:00Z",
		"1990-03-15T00:00:00.000Z",
		"1990-03-15T22:30:00-03:00",
		" 15/03/1990 ",
	} {
		got, err := domain.ParseCalendarDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
		assert.Equal(t, "15/03/1990", domain.FormatCalendarDate(got))
	}
}

func TestParseCalendarDate_SingleDigitParts(t *testing.T) {
	want := time.Date(1990, time.March, 5, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"5/3/1990", "05/3/1990", "5/03/1990", "05/03/1990", "1990-3-5", "1990-03-5", "1990-03-05"} {
		got, err := domain.ParseCalendarDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}
}

func TestParseCalendarDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "31/02/2020", "1990/03/15", "15-03-1990", "yesterday", "03/15/1990"} {
		_, err := domain.ParseCalendarDate(in)
		assert.ErrorIs(t, err, domain.ErrInvalidDate, in)
	}
}

func TestDeriveBMI(t *testing.T) {
	day1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	weights := []domain.Report{
		{Type: domain.ReportWeight, Value: 80, Date: day1},
		{Type: domain.ReportWeight, Value: 78, Date: day2},
	}
	heights := []domain.Report{
		{Type: domain.ReportHeight, Value: 180, Date: day1},
		{Type: domain.ReportHeight, Value: 181, Date: day2.AddDate(0, 0, 1)}, // no matching weight
	}

	bmi := domain.DeriveBMI(weights, heights)
	require.Len(t, bmi, 1)
	assert.Equal(t, domain.ReportBMI, bmi[0].Type)
	assert.Equal(t, 24.69, bmi[0].Value)
	assert.True(t, bmi[0].Date.Equal(day1))
	assert.True(t, bmi[0].ID.IsZero())
	assert.Contains(t, bmi[0].Note, "Peso 80kg, Altura 180cm")
}

func TestGroupReportsByType(t *testing.T) {
	reports := []domain.Report{
		{Type: domain.ReportWeight, Value: 1},
		{Type: domain.ReportWaist, Value: 2},
		{Type: domain.ReportWeight, Value: 3},
	}
	grouped := domain.GroupReportsByType(reports)
	assert.Len(t, grouped, 2)
	assert.Equal(t, []float64{1, 3}, []float64{grouped[domain.ReportWeight][0].Value, grouped[domain.ReportWeight][1].Value})
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, domain.DaysUntil(now.Add(2*time.Hour), now))
	assert.Equal(t, 10, domain.DaysUntil(now.Add(240*time.Hour), now))
	assert.Equal(t, 0, domain.DaysUntil(now.Add(-2*time.Hour), now))
	assert.Equal(t, -1, domain.DaysUntil(now.Add(-25*time.Hour), now))
}

func TestTaskIsOverdueAt(t *testing.T) {
	now := time.Now()
	task := domain.Task{Status: domain.TaskPending, DueDate: now.Add(-time.Minute)}
	assert.True(t, task.IsOverdueAt(now))

	task.Status = domain.TaskCompleted
	assert.False(t, task.IsOverdueAt(now))

	task = domain.Task{Status: domain.TaskPending, DueDate: now.Add(time.Hour)}
	assert.False(t, task.IsOverdueAt(now))
}

func TestAudienceIncludes(t *testing.T) {
	assert.True(t, domain.AudienceAll.Includes(domain.RoleStudent))
	assert.True(t, domain.AudienceAll.Includes(domain.RoleTrainer))
	assert.True(t, domain.AudienceStudents.Includes(domain.RoleStudent))
	assert.False(t, domain.AudienceStudents.Includes(domain.RoleTrainer))
	assert.True(t, domain.AudienceTrainers.Includes(domain.RoleTrainer))
	assert.False(t, domain.AudienceTrainers.Includes(domain.RoleGym))
}

func TestMatchPrincipal(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID()}
	name := func(p domain.Principal) string {
		return domain.MatchPrincipal(p,
			func(*domain.GymPrincipal) string { return "gym" },
			func(*domain.TrainerPrincipal) string { return "trainer" },
			func(*domain.StudentPrincipal) string { return "student" },
			func(*domain.GenericPrincipal) string { return "generic" },
		)
	}

	assert.Equal(t, "gym", name(&domain.GymPrincipal{User: user}))
	assert.Equal(t, "trainer", name(&domain.TrainerPrincipal{User: user}))
	assert.Equal(t, "student", name(&domain.StudentPrincipal{User: user}))
	assert.Equal(t, "generic", name(&domain.GenericPrincipal{User: user}))
}

func TestSameID(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	assert.True(t, domain.SameID(nil, nil))
	assert.False(t, domain.SameID(&a, nil))
	assert.True(t, domain.SameID(domain.IDRef(a), domain.IDRef(a)))
	assert.False(t, domain.SameID(&a, &b))
}
