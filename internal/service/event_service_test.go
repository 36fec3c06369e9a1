package service_test

import (
	"testing"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newEvent(t *testing.T, f *fixture, gym *domain.GymPrincipal, audience domain.Audience, start time.Time) *domain.Event {
	t.Helper()
	event, err := f.events.CreateEvent(f.ctx, gym, service.EventInput{
		Title:     "Aulão de " + string(audience),
		StartDate: start.Format(time.RFC3339),
		Audience:  audience,
	})
	require.NoError(t, err)
	return event
}

func TestConfirmAttendance_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	student := f.student(&gym.Gym.ID)
	event := newEvent(t, f, gym, domain.AudienceStudents, time.Now().Add(48*time.Hour))

	status, err := f.events.AttendanceStatus(f.ctx, student, event.ID)
	require.NoError(t, err)
	assert.Nil(t, status)

	first, err := f.events.ConfirmAttendance(f.ctx, student, event.ID, "")
	require.NoError(t, err)
	second, err := f.events.ConfirmAttendance(f.ctx, student, event.ID, "Levo uma amiga")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	entries, err := f.events.EventAttendances(f.ctx, gym, event.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Levo uma amiga", entries[0].Comment)
	assert.Equal(t, student.User.Name, entries[0].User.Name)

	require.NoError(t, f.events.CancelAttendance(f.ctx, student, event.ID))
	err = f.events.CancelAttendance(f.ctx, student, event.ID)
	assert.ErrorIs(t, err, service.ErrAttendanceNotFound)
}

func TestAttendance_AudienceAndGym(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	otherGym := f.gym()
	student := f.student(&gym.Gym.ID)
	trainer := f.trainer(&gym.Gym.ID)
	outsider := f.student(&otherGym.Gym.ID)
	start := time.Now().Add(24 * time.Hour)

	forStudents := newEvent(t, f, gym, domain.AudienceStudents, start)
	forTrainers := newEvent(t, f, gym, domain.AudienceTrainers, start)
	forAll := newEvent(t, f, gym, domain.AudienceAll, start)

	_, err := f.events.ConfirmAttendance(f.ctx, student, forTrainers.ID, "")
	assert.ErrorIs(t, err, service.ErrNotYourEvent)
	_, err = f.events.ConfirmAttendance(f.ctx, trainer, forStudents.ID, "")
	assert.ErrorIs(t, err, service.ErrNotYourEvent)
	_, err = f.events.ConfirmAttendance(f.ctx, outsider, forAll.ID, "")
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.events.ConfirmAttendance(f.ctx, gym, forAll.ID, "")
	assert.ErrorIs(t, err, service.ErrWrongRole)
	_, err = f.events.ConfirmAttendance(f.ctx, student, primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, service.ErrEventNotFound)

	_, err = f.events.ConfirmAttendance(f.ctx, trainer, forAll.ID, "")
	assert.NoError(t, err)
	_, err = f.events.ConfirmAttendance(f.ctx, student, forAll.ID, "")
	assert.NoError(t, err)
}

func TestMemberEvents(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	student := f.student(&gym.Gym.ID)
	trainer := f.trainer(&gym.Gym.ID)
	now := time.Now()

	past := newEvent(t, f, gym, domain.AudienceAll, now.Add(-72*time.Hour))
	soon := newEvent(t, f, gym, domain.AudienceStudents, now.Add(24*time.Hour))
	newEvent(t, f, gym, domain.AudienceTrainers, now.Add(48*time.Hour))

	all, err := f.events.MemberEvents(f.ctx, student, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	upcoming := true
	future, err := f.events.MemberEvents(f.ctx, student, &upcoming)
	require.NoError(t, err)
	require.Len(t, future, 1)
	assert.Equal(t, soon.ID, future[0].ID)

	upcoming = false
	old, err := f.events.MemberEvents(f.ctx, trainer, &upcoming)
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, past.ID, old[0].ID)

	_, err = f.events.MemberEvents(f.ctx, f.student(nil), nil)
	assert.ErrorIs(t, err, service.ErrNoGym)
}

func TestGymEvents_Management(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	otherGym := f.gym()
	student := f.student(&gym.Gym.ID)
	event := newEvent(t, f, gym, domain.AudienceAll, time.Now().Add(time.Hour))

	_, err := f.events.CreateEvent(f.ctx, gym, service.EventInput{Title: " ", StartDate: "2024-05-01"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = f.events.CreateEvent(f.ctx, gym, service.EventInput{Title: "x", StartDate: "2024-05-01", Audience: "VIP"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = f.events.CreateEvent(f.ctx, gym, service.EventInput{Title: "x", StartDate: "2024-05-02", EndDate: "2024-05-01"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.events.UpdateEvent(f.ctx, otherGym, event.ID, service.EventInput{Title: "Hack", StartDate: "2024-05-01"})
	assert.ErrorIs(t, err, service.ErrOutsideGym)

	updated, err := f.events.UpdateEvent(f.ctx, gym, event.ID, service.EventInput{
		Title:     "Aulão de sábado",
		StartDate: "2024-06-01T09:00:00-03:00",
		Location:  "Sala 2",
		Audience:  domain.AudienceStudents,
	})
	require.NoError(t, err)
	assert.Equal(t, "Aulão de sábado", updated.Title)
	assert.Equal(t, gym.Gym.ID, updated.GymID)

	listed, err := f.events.GymEvents(f.ctx, gym)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = f.events.ConfirmAttendance(f.ctx, student, event.ID, "")
	require.NoError(t, err)
	assert.ErrorIs(t, f.events.DeleteEvent(f.ctx, otherGym, event.ID), service.ErrOutsideGym)
	require.NoError(t, f.events.DeleteEvent(f.ctx, gym, event.ID))

	_, err = f.events.EventAttendances(f.ctx, gym, event.ID)
	assert.ErrorIs(t, err, service.ErrEventNotFound)
	_, err = f.store.Attendances.Get(f.ctx, event.ID, student.User.ID)
	assert.Error(t, err)
}
