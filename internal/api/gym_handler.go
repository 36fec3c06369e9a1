package api

import (
	"net/http"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// GymHandler serves the /academia routes other than events.
type GymHandler struct {
	profiles  service.ProfileService
	payments  service.PaymentService
	dashboard service.DashboardService
}

func NewGymHandler(profiles service.ProfileService, payments service.PaymentService, dashboard service.DashboardService) *GymHandler {
	return &GymHandler{profiles: profiles, payments: payments, dashboard: dashboard}
}

type GymProfileRequest struct {
	Name        string           `json:"nome" binding:"required"`
	TaxID       string           `json:"cnpj"`
	Address     string           `json:"endereco"`
	Phone       string           `json:"telefone"`
	Hours       string           `json:"horarioFuncionamento"`
	Description string           `json:"descricao"`
	Amenities   []string         `json:"comodidades"`
	Plans       []domain.GymPlan `json:"planos"`
	Website     string           `json:"website"`
	Instagram   string           `json:"instagram"`
	Facebook    string           `json:"facebook"`
}

type PaymentRequest struct {
	StudentID string               `json:"alunoId" binding:"required,objectid"`
	GymID     string               `json:"academiaId" binding:"omitempty,objectid"`
	Amount    float64              `json:"valor" binding:"gt=0"`
	DueDate   string               `json:"dataVencimento" binding:"required,calendardate"`
	PaidAt    string               `json:"dataPagamento" binding:"omitempty,calendardate"`
	Status    domain.PaymentStatus `json:"status" binding:"omitempty,paymentstatus"`
	Method    string               `json:"metodoPagamento"`
	PlanType  string               `json:"tipoPlano"`
}

type PaymentStatusRequest struct {
	Status domain.PaymentStatus `json:"status" binding:"required,paymentstatus"`
}

func (h *GymHandler) Profile(c *gin.Context) {
	gym, err := h.profiles.GymProfile(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gym)
}

func (h *GymHandler) SaveProfile(c *gin.Context) {
	var req GymProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	saveGymProfile(c, h.profiles, req)
}

func saveGymProfile(c *gin.Context, profiles service.ProfileService, req GymProfileRequest) {
	saved, err := profiles.SaveGymProfile(c.Request.Context(), mustPrincipal(c), service.GymProfileInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *GymHandler) Details(c *gin.Context) {
	gymID, ok := pathID(c, "academiaId")
	if !ok {
		return
	}
	details, err := h.profiles.GymDetails(c.Request.Context(), gymID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GymDetailsResponse{Gym: details.Gym, User: details.User})
}

func (h *GymHandler) Payments(c *gin.Context) {
	payments, err := h.payments.GymPayments(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// RecordPayment godoc
// @Summary Record a payment of a student of the gym
// @Description The payment gym must be the student's gym. Status defaults to PENDING.
// @Tags Gym
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PaymentRequest true "Payment"
// @Success 201 {object} domain.Payment
// @Failure 400 {object} gin.H "Invalid input or gym mismatch"
// @Failure 403 {object} gin.H "Student belongs to another gym"
// @Router /academia/pagamentos [post]
func (h *GymHandler) RecordPayment(c *gin.Context) {
	var req PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	studentID, ok := optionalID(c, "alunoId", req.StudentID)
	if !ok {
		return
	}
	gymID, ok := optionalID(c, "academiaId", req.GymID)
	if !ok {
		return
	}

	payment, err := h.payments.RecordPayment(c.Request.Context(), mustPrincipal(c), service.PaymentInput{
		StudentID: *studentID,
		GymID:     gymID,
		Amount:    req.Amount,
		DueDate:   req.DueDate,
		PaidAt:    req.PaidAt,
		Status:    req.Status,
		Method:    req.Method,
		PlanType:  req.PlanType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *GymHandler) UpdatePaymentStatus(c *gin.Context) {
	paymentID, ok := pathID(c, "pagamentoId")
	if !ok {
		return
	}
	var req PaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.UpdatePaymentStatus(c.Request.Context(), mustPrincipal(c), paymentID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *GymHandler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboard.GymStats(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapGymStats(stats))
}
