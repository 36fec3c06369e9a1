package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus is set by the gym. Unlike tasks, payments never change status on their own.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "PAID"
	PaymentPending PaymentStatus = "PENDING"
	PaymentOverdue PaymentStatus = "OVERDUE"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentOverdue:
		return true
	}
	return false
}

// Payment belongs to one student and one gym. GymID equals the student's
// gym at the time the payment is recorded.
type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"studentId" json:"alunoId"`
	GymID     primitive.ObjectID `bson:"gymId" json:"academiaId"`
	Amount    float64            `bson:"amount" json:"valor"`
	DueDate   time.Time          `bson:"dueDate" json:"dataVencimento"`
	PaidAt    *time.Time         `bson:"paidAt,omitempty" json:"dataPagamento,omitempty"`
	Status    PaymentStatus      `bson:"status" json:"status"`
	Method    string             `bson:"method,omitempty" json:"metodoPagamento,omitempty"`
	PlanType  string             `bson:"planType,omitempty" json:"tipoPlano,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PaymentSummary describes the most recent payment of a student.
type PaymentSummary struct {
	NextDueDate   time.Time     `json:"proximoVencimento"`
	DaysRemaining int           `json:"diasRestantes"`
	CurrentPlan   string        `json:"planoAtual"`
	MonthlyAmount float64       `json:"valorMensalidade"`
	Status        PaymentStatus `json:"status"`
}

// SummarizePayment builds the summary card of p as seen at now.
// DaysRemaining is negative once the due date has passed.
func SummarizePayment(p Payment, now time.Time) PaymentSummary {
	return PaymentSummary{
		NextDueDate:   p.DueDate,
		DaysRemaining: DaysUntil(p.DueDate, now),
		CurrentPlan:   p.PlanType,
		MonthlyAmount: p.Amount,
		Status:        p.Status,
	}
}

// DaysUntil returns ceil((t - now) / 24h).
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}
