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

func TestRecordPayment_GymMustMatchStudent(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	otherGym := f.gym()
	student := f.student(&gym.Gym.ID)
	unaffiliated := f.student(nil)

	// Another gym recording for the student, defaulting to itself.
	_, err := f.payments.RecordPayment(f.ctx, otherGym, service.PaymentInput{
		StudentID: student.Student.ID,
		Amount:    120,
		DueDate:   "2024-05-10",
	})
	assert.ErrorIs(t, err, service.ErrGymMismatch)
	assert.ErrorIs(t, err, service.ErrInvalidReference)

	// The reference check runs before the ownership check.
	_, err = f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: student.Student.ID,
		GymID:     &otherGym.Gym.ID,
		Amount:    120,
		DueDate:   "2024-05-10",
	})
	assert.ErrorIs(t, err, service.ErrGymMismatch)

	_, err = f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: unaffiliated.Student.ID,
		Amount:    120,
		DueDate:   "2024-05-10",
	})
	assert.ErrorIs(t, err, service.ErrGymMismatch)

	_, err = f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: primitive.NewObjectID(),
		Amount:    120,
		DueDate:   "2024-05-10",
	})
	assert.ErrorIs(t, err, service.ErrUnknownStudent)

	// A student in otherGym paying through gym passes the reference check but
	// still belongs to another gym.
	moved := f.student(&otherGym.Gym.ID)
	_, err = f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: moved.Student.ID,
		GymID:     &otherGym.Gym.ID,
		Amount:    120,
		DueDate:   "2024-05-10",
	})
	assert.ErrorIs(t, err, service.ErrOutsideGym)

	payment, err := f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: student.Student.ID,
		Amount:    120,
		DueDate:   "2024-05-10",
		PlanType:  "Mensal",
	})
	require.NoError(t, err)
	assert.Equal(t, gym.Gym.ID, payment.GymID)
	assert.Equal(t, domain.PaymentPending, payment.Status)
	assert.Nil(t, payment.PaidAt)

	listed, err := f.payments.GymPayments(f.ctx, gym)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	listed, err = f.payments.GymPayments(f.ctx, otherGym)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRecordPayment_Validation(t *testing.T) {
	f := newFixture(t)
	gym := f.gym()
	student := f.student(&gym.Gym.ID)

	_, err := f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: student.Student.ID, Amount: 10, DueDate: "2024-05-10", Status: "LATE",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: student.Student.ID, Amount: 10, DueDate: "amanhã",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.payments.RecordPayment(f.ctx, student, service.PaymentInput{
		StudentID: student.Student.ID, Amount: 10, DueDate: "2024-05-10",
	})
	assert.ErrorIs(t, err, service.ErrWrongRole)
}

func TestPayments_StudentSummaryAndStatus(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	f.core.Now = func() time.Time { return now }
	gym := f.gym()
	otherGym := f.gym()
	student := f.student(&gym.Gym.ID)

	summary, err := f.payments.MySummary(f.ctx, student)
	require.NoError(t, err)
	assert.Nil(t, summary)

	_, err = f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: student.Student.ID, Amount: 99, DueDate: "2024-04-10", Status: domain.PaymentPaid, PlanType: "Mensal",
	})
	require.NoError(t, err)
	latest, err := f.payments.RecordPayment(f.ctx, gym, service.PaymentInput{
		StudentID: student.Student.ID, Amount: 109, DueDate: "2024-05-10", PlanType: "Mensal Plus",
	})
	require.NoError(t, err)

	history, err := f.payments.MyPayments(f.ctx, student)
	require.NoError(t, err)
	require.Len(t, history.History, 2)
	require.NotNil(t, history.Summary)
	assert.Equal(t, 109.0, history.Summary.MonthlyAmount)
	assert.Equal(t, "Mensal Plus", history.Summary.CurrentPlan)
	assert.Equal(t, 9, history.Summary.DaysRemaining)
	assert.Equal(t, domain.PaymentPending, history.Summary.Status)

	_, err = f.payments.UpdatePaymentStatus(f.ctx, otherGym, latest.ID, domain.PaymentPaid)
	assert.ErrorIs(t, err, service.ErrOutsideGym)

	paid, err := f.payments.UpdatePaymentStatus(f.ctx, gym, latest.ID, domain.PaymentPaid)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, now.Equal(*paid.PaidAt))

	overdue, err := f.payments.UpdatePaymentStatus(f.ctx, gym, latest.ID, domain.PaymentOverdue)
	require.NoError(t, err)
	assert.Nil(t, overdue.PaidAt)

	_, err = f.payments.UpdatePaymentStatus(f.ctx, gym, primitive.NewObjectID(), domain.PaymentPaid)
	assert.ErrorIs(t, err, service.ErrPaymentNotFound)
}
