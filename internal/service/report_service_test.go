package service_test

import (
	"testing"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpsertReport(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))
	other := f.link(trainer, f.student(&gym.Gym.ID))

	report, created, err := f.reports.UpsertReport(f.ctx, trainer, student.Student.ID, service.ReportInput{
		Type: domain.ReportWeight, Value: 82.4, Date: "10/01/2024",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, trainer.Trainer.ID, *report.TrainerID)

	updated, created, err := f.reports.UpsertReport(f.ctx, trainer, student.Student.ID, service.ReportInput{
		ID: &report.ID, Type: domain.ReportWeight, Value: 81.9, Date: "10/01/2024", Note: "jejum",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, report.ID, updated.ID)

	// An id of another student's report is not found from here.
	_, _, err = f.reports.UpsertReport(f.ctx, trainer, other.Student.ID, service.ReportInput{
		ID: &report.ID, Type: domain.ReportWeight, Value: 1,
	})
	assert.ErrorIs(t, err, service.ErrReportNotFound)

	_, _, err = f.reports.UpsertReport(f.ctx, trainer, student.Student.ID, service.ReportInput{Type: "pressao", Value: 12})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	grouped, err := f.reports.TrainerReports(f.ctx, trainer, student.Student.ID)
	require.NoError(t, err)
	require.Len(t, grouped[domain.ReportWeight], 1)
	assert.Equal(t, 81.9, grouped[domain.ReportWeight][0].Value)

	mine, err := f.reports.MyReports(f.ctx, student)
	require.NoError(t, err)
	require.Len(t, mine[domain.ReportWeight], 1)
	assert.Equal(t, trainer.User.Name, mine[domain.ReportWeight][0].TrainerName)
}

func TestSyncBMI_OneReportPerDay(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))

	saved, err := f.reports.SyncBMI(f.ctx, trainer, student.Student.ID, []service.BMISample{
		{Date: "01/03/2024", Value: 25.1},
		{Date: "2024-03-08", Value: 24.8, Note: "Após dieta"},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, domain.DefaultBMINote, saved[0].Note)

	again, err := f.reports.SyncBMI(f.ctx, trainer, student.Student.ID, []service.BMISample{
		{Date: "2024-03-01T15:00:00Z", Value: 25.0},
	})
	require.NoError(t, err)
	assert.Equal(t, saved[0].ID, again[0].ID)

	grouped, err := f.reports.StudentReports(f.ctx, student, student.Student.ID)
	require.NoError(t, err)
	assert.Len(t, grouped[domain.ReportBMI], 2)

	_, err = f.reports.SyncBMI(f.ctx, trainer, student.Student.ID, []service.BMISample{{Date: "ontem", Value: 1}})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = f.reports.SyncBMI(f.ctx, trainer, student.Student.ID, nil)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestStudentReports_DerivesBMI(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	trainer := f.trainer(&gym.Gym.ID)
	student := f.link(trainer, f.student(&gym.Gym.ID))

	for _, in := range []service.ReportInput{
		{Type: domain.ReportWeight, Value: 81, Date: "2024-02-01"},
		{Type: domain.ReportHeight, Value: 180, Date: "2024-02-01"},
	} {
		_, _, err := f.reports.UpsertReport(f.ctx, trainer, student.Student.ID, in)
		require.NoError(t, err)
	}

	grouped, err := f.reports.StudentReports(f.ctx, gym, student.Student.ID)
	require.NoError(t, err)
	require.Len(t, grouped[domain.ReportBMI], 1)
	assert.Equal(t, 25.0, grouped[domain.ReportBMI][0].Value)

	stored, err := f.store.Reports.ListByStudent(f.ctx, student.Student.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "derived values are not persisted")

	_, err = f.reports.StudentReports(f.ctx, gym, primitive.NewObjectID())
	assert.ErrorIs(t, err, service.ErrStudentNotFound)
}
