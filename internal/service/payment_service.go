package service

import (
	"context"
	"time"

	"gymconnect/backend/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentInput records a payment for a student. A nil GymID means the
// caller's gym.
type PaymentInput struct {
	StudentID primitive.ObjectID
	GymID     *primitive.ObjectID
	Amount    float64
	DueDate   string
	PaidAt    string
	Status    domain.PaymentStatus
	Method    string
	PlanType  string
}

type PaymentHistory struct {
	Summary *domain.PaymentSummary
	History []domain.Payment
}

type PaymentService interface {
	// MyPayments returns the student's payments, latest due date first,
	// with the summary of the latest one.
	MyPayments(ctx context.Context, p domain.Principal) (*PaymentHistory, error)
	// MySummary returns nil when the student has no payments.
	MySummary(ctx context.Context, p domain.Principal) (*domain.PaymentSummary, error)

	GymPayments(ctx context.Context, p domain.Principal) ([]domain.Payment, error)
	RecordPayment(ctx context.Context, p domain.Principal, in PaymentInput) (*domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, p domain.Principal, paymentID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error)
}

type paymentService struct {
	*Core
}

func NewPaymentService(core *Core) PaymentService {
	return &paymentService{Core: core}
}

func (s *paymentService) MyPayments(ctx context.Context, p domain.Principal) (*PaymentHistory, error) {
	sp, err := RequireStudent(p)
	if err != nil {
		return nil, err
	}
	payments, err := s.Store.Payments.ListByStudent(ctx, sp.Student.ID)
	if err != nil {
		return nil, err
	}
	history := &PaymentHistory{History: payments}
	if len(payments) > 0 {
		summary := domain.SummarizePayment(payments[0], s.Now())
		history.Summary = &summary
	}
	return history, nil
}

func (s *paymentService) MySummary(ctx context.Context, p domain.Principal) (*domain.PaymentSummary, error) {
	history, err := s.MyPayments(ctx, p)
	if err != nil {
		return nil, err
	}
	return history.Summary, nil
}

func (s *paymentService) GymPayments(ctx context.Context, p domain.Principal) ([]domain.Payment, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}
	return s.Store.Payments.ListByGym(ctx, gp.Gym.ID)
}

// RecordPayment stores a payment whose gym must be the student's current gym.
func (s *paymentService) RecordPayment(ctx context.Context, p domain.Principal, in PaymentInput) (*domain.Payment, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}

	// 1. Validate the payload before touching the store
	if in.Amount < 0 {
		return nil, invalidInput("valor cannot be negative")
	}
	if in.Status == "" {
		in.Status = domain.PaymentPending
	}
	if !in.Status.Valid() {
		return nil, invalidInput("unknown payment status %q", in.Status)
	}
	dueDate, err := domain.ParseTimestamp(in.DueDate)
	if err != nil {
		return nil, invalidInput("dataVencimento: %s", err)
	}
	var paidAt *time.Time
	if in.PaidAt != "" {
		t, err := domain.ParseTimestamp(in.PaidAt)
		if err != nil {
			return nil, invalidInput("dataPagamento: %s", err)
		}
		paidAt = &t
	} else if in.Status == domain.PaymentPaid {
		now := s.Now()
		paidAt = &now
	}
	gymID := gp.Gym.ID
	if in.GymID != nil {
		gymID = *in.GymID
	}

	payment := &domain.Payment{
		StudentID: in.StudentID,
		GymID:     gymID,
		Amount:    in.Amount,
		DueDate:   dueDate,
		PaidAt:    paidAt,
		Status:    in.Status,
		Method:    in.Method,
		PlanType:  in.PlanType,
	}

	// 2. Check references and write as one unit
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Enforce.CheckPayment(ctx, in.StudentID, gymID); err != nil {
			return err
		}
		if gymID != gp.Gym.ID {
			return ErrOutsideGym
		}
		_, err := s.Store.Payments.Create(ctx, payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"payment_id": payment.ID.Hex(),
		"student_id": payment.StudentID.Hex(),
		"status":     payment.Status,
	}).Info("payment recorded")
	return payment, nil
}

func (s *paymentService) UpdatePaymentStatus(ctx context.Context, p domain.Principal, paymentID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalidInput("unknown payment status %q", status)
	}
	payment, err := s.Store.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, notFoundAs(err, ErrPaymentNotFound)
	}
	if payment.GymID != gp.Gym.ID {
		return nil, ErrOutsideGym
	}

	var paidAt *time.Time
	if status == domain.PaymentPaid {
		paidAt = payment.PaidAt
		if paidAt == nil {
			now := s.Now()
			paidAt = &now
		}
	}
	if err := s.Store.Payments.UpdateStatus(ctx, paymentID, status, paidAt); err != nil {
		return nil, notFoundAs(err, ErrPaymentNotFound)
	}
	payment.Status = status
	payment.PaidAt = paidAt
	return payment, nil
}
