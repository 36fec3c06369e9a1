package api

import (
	"net/http"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// StudentHandler serves the /aluno routes.
type StudentHandler struct {
	profiles  service.ProfileService
	directory service.DirectoryService
	training  service.TrainingService
	reports   service.ReportService
	payments  service.PaymentService
	dashboard service.DashboardService
}

func NewStudentHandler(
	profiles service.ProfileService,
	directory service.DirectoryService,
	training service.TrainingService,
	reports service.ReportService,
	payments service.PaymentService,
	dashboard service.DashboardService,
) *StudentHandler {
	return &StudentHandler{
		profiles:  profiles,
		directory: directory,
		training:  training,
		reports:   reports,
		payments:  payments,
		dashboard: dashboard,
	}
}

// --- DTOs ---

type StudentPreferencesRequest struct {
	BirthDate           string  `json:"birthDate" binding:"required,calendardate"`
	Gender              string  `json:"gender"`
	Goal                string  `json:"goal"`
	HealthCondition     string  `json:"healthCondition"`
	Experience          string  `json:"experience"`
	Height              float64 `json:"height" binding:"gte=0"`
	Weight              float64 `json:"weight" binding:"gte=0"`
	ActivityLevel       string  `json:"activityLevel"`
	PhysicalLimitations string  `json:"physicalLimitations"`
	GymID               string  `json:"academiaId" binding:"omitempty,objectid"`
	StudentID           string  `json:"alunoId" binding:"omitempty,objectid"` // Set by a gym editing one of its students
}

type StudentProfilePatchRequest struct {
	BirthDate           *string  `json:"birthDate" binding:"omitempty,calendardate"`
	Gender              *string  `json:"gender"`
	Goal                *string  `json:"goal"`
	HealthCondition     *string  `json:"healthCondition"`
	Experience          *string  `json:"experience"`
	Height              *float64 `json:"height" binding:"omitempty,gte=0"`
	Weight              *float64 `json:"weight" binding:"omitempty,gte=0"`
	ActivityLevel       *string  `json:"activityLevel"`
	PhysicalLimitations *string  `json:"physicalLimitations"`
}

type ExerciseStatusRequest struct {
	Status domain.ExerciseStatus `json:"status" binding:"required,exercisestatus"`
}

// --- Handlers ---

// Preferences returns the caller's own student profile.
func (h *StudentHandler) Preferences(c *gin.Context) {
	details, err := h.profiles.StudentPreferences(c.Request.Context(), mustPrincipal(c), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StudentDetailsResponse{Student: MapStudentProfile(details.Student), User: details.User})
}

// SavePreferences godoc
// @Summary Save student preferences
// @Description A student saves its own profile. A gym may save the profile of one
// @Description of its students by sending alunoId.
// @Tags Student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StudentPreferencesRequest true "Preferences"
// @Success 200 {object} StudentProfileResponse
// @Failure 400 {object} gin.H "Invalid date or unknown gym"
// @Failure 403 {object} gin.H "Student belongs to another gym"
// @Router /aluno/preferencias [post]
func (h *StudentHandler) SavePreferences(c *gin.Context) {
	var req StudentPreferencesRequest
	if !bindJSON(c, &req) {
		return
	}
	saveStudentPreferences(c, h.profiles, req)
}

func saveStudentPreferences(c *gin.Context, profiles service.ProfileService, req StudentPreferencesRequest) {
	gymID, ok := optionalID(c, "academiaId", req.GymID)
	if !ok {
		return
	}
	studentID, ok := optionalID(c, "alunoId", req.StudentID)
	if !ok {
		return
	}

	saved, err := profiles.SaveStudentPreferences(c.Request.Context(), mustPrincipal(c), studentID, service.StudentPreferencesInput{
		BirthDate:           req.BirthDate,
		Gender:              req.Gender,
		Goal:                req.Goal,
		HealthCondition:     req.HealthCondition,
		Experience:          req.Experience,
		Height:              req.Height,
		Weight:              req.Weight,
		ActivityLevel:       req.ActivityLevel,
		PhysicalLimitations: req.PhysicalLimitations,
		GymID:               gymID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentProfile(saved))
}

func (h *StudentHandler) EditProfile(c *gin.Context) {
	var req StudentProfilePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	edited, err := h.profiles.EditStudentProfile(c.Request.Context(), mustPrincipal(c), service.StudentProfilePatch(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentProfile(edited))
}

// Week returns the exercises of every weekday, keyed 0 (Sunday) to 6.
func (h *StudentHandler) Week(c *gin.Context) {
	week, err := h.training.Week(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (h *StudentHandler) Day(c *gin.Context) {
	day, ok := pathWeekday(c)
	if !ok {
		return
	}
	plan, err := h.training.Day(c.Request.Context(), mustPrincipal(c), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *StudentHandler) SetExerciseStatus(c *gin.Context) {
	exerciseID, ok := pathID(c, "exercicioId")
	if !ok {
		return
	}
	var req ExerciseStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	exercise, err := h.training.SetExerciseStatus(c.Request.Context(), mustPrincipal(c), exerciseID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *StudentHandler) MyReports(c *gin.Context) {
	grouped, err := h.reports.MyReports(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapReportEntries(grouped))
}

// StudentReports godoc
// @Summary Reports of a student grouped by type
// @Description Readable by the student, its gym and its trainer. BMI is derived
// @Description from weight and height samples of the same day when none is stored.
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Param alunoId path string true "Student profile ObjectID Hex"
// @Success 200 {object} map[string][]domain.Report
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /aluno/{alunoId}/relatorios [get]
func (h *StudentHandler) StudentReports(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	grouped, err := h.reports.StudentReports(c.Request.Context(), mustPrincipal(c), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

func (h *StudentHandler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboard.StudentStats(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StudentStatsResponse(*stats))
}

func (h *StudentHandler) ResponsibleTrainer(c *gin.Context) {
	details, err := h.directory.ResponsibleTrainer(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainerDetails(details))
}

func (h *StudentHandler) Payments(c *gin.Context) {
	history, err := h.payments.MyPayments(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PaymentHistoryResponse{Summary: history.Summary, History: history.History})
}

// PaymentSummary answers 200 with a null body when the student has no payments.
func (h *StudentHandler) PaymentSummary(c *gin.Context) {
	summary, err := h.payments.MySummary(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
