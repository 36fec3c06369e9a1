package api

import (
	"net/http"

	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type credentialsRequest struct {
	Name     string `json:"nome" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"senha" binding:"required,min=6"`
}

func (r credentialsRequest) toCredentials() service.Credentials {
	return service.Credentials{Name: r.Name, Email: r.Email, Password: r.Password}
}

type RegisterStudentRequest struct {
	credentialsRequest
	GymID string `json:"academiaId" binding:"omitempty,objectid"`
}

type RegisterTrainerRequest struct {
	credentialsRequest
	LicenseID string `json:"cref" binding:"required"`
	GymID     string `json:"academiaId" binding:"omitempty,objectid"`
}

type RegisterGymRequest struct {
	credentialsRequest
	TaxID string `json:"cnpj" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"senha" binding:"required"`
}

// --- Handler Methods ---

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token valid for one hour.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/entrar [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: res.Token, User: res.User})
}

// RegisterStudent godoc
// @Summary Register a student
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterStudentRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} gin.H "Invalid input or unknown gym"
// @Failure 409 {object} gin.H "Email already registered"
// @Router /auth/aluno/cadastrar [post]
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req RegisterStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	gymID, ok := optionalID(c, "academiaId", req.GymID)
	if !ok {
		return
	}

	res, err := h.authService.RegisterStudent(c.Request.Context(), service.RegisterStudentInput{
		Credentials: req.toCredentials(),
		GymID:       gymID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Token: res.Token, User: res.User})
}

// RegisterTrainer godoc
// @Summary Register a personal trainer
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterTrainerRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 409 {object} gin.H "Email or CREF already registered"
// @Router /auth/personal/cadastrar [post]
func (h *AuthHandler) RegisterTrainer(c *gin.Context) {
	var req RegisterTrainerRequest
	if !bindJSON(c, &req) {
		return
	}
	gymID, ok := optionalID(c, "academiaId", req.GymID)
	if !ok {
		return
	}

	res, err := h.authService.RegisterTrainer(c.Request.Context(), service.RegisterTrainerInput{
		Credentials: req.toCredentials(),
		LicenseID:   req.LicenseID,
		GymID:       gymID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Token: res.Token, User: res.User})
}

// RegisterGym godoc
// @Summary Register a gym
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterGymRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 409 {object} gin.H "Email or CNPJ already registered"
// @Router /auth/academia/cadastrar [post]
func (h *AuthHandler) RegisterGym(c *gin.Context) {
	var req RegisterGymRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.RegisterGym(c.Request.Context(), service.RegisterGymInput{
		Credentials: req.toCredentials(),
		TaxID:       req.TaxID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Token: res.Token, User: res.User})
}
