package api

import (
	"net/http"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// TrainerHandler serves the /personal routes.
type TrainerHandler struct {
	profiles  service.ProfileService
	directory service.DirectoryService
	training  service.TrainingService
	reports   service.ReportService
	dashboard service.DashboardService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(
	profiles service.ProfileService,
	directory service.DirectoryService,
	training service.TrainingService,
	reports service.ReportService,
	dashboard service.DashboardService,
) *TrainerHandler {
	return &TrainerHandler{
		profiles:  profiles,
		directory: directory,
		training:  training,
		reports:   reports,
		dashboard: dashboard,
	}
}

// --- DTOs for API (Data Transfer Objects) ---

type TrainerPreferencesRequest struct {
	LicenseID         string   `json:"cref"`
	BirthDate         string   `json:"birthDate" binding:"required,calendardate"`
	Gender            string   `json:"gender"`
	Specializations   []string `json:"specializations"`
	YearsOfExperience int      `json:"yearsOfExperience" binding:"gte=0"`
	WorkSchedule      string   `json:"workSchedule"`
	Certifications    []string `json:"certifications"`
	Biography         string   `json:"biography"`
	WorkLocation      string   `json:"workLocation"`
	PricePerHour      float64  `json:"pricePerHour" binding:"gte=0"`
	Languages         []string `json:"languages"`
	Instagram         string   `json:"instagram"`
	LinkedIn          string   `json:"linkedin"`
	GymID             string   `json:"academiaId" binding:"omitempty,objectid"`
}

type TrainerProfilePatchRequest struct {
	BirthDate         *string  `json:"birthDate" binding:"omitempty,calendardate"`
	Gender            *string  `json:"gender"`
	Specializations   []string `json:"specializations"`
	YearsOfExperience *int     `json:"yearsOfExperience" binding:"omitempty,gte=0"`
	WorkSchedule      *string  `json:"workSchedule"`
	Certifications    []string `json:"certifications"`
	Biography         *string  `json:"biography"`
	WorkLocation      *string  `json:"workLocation"`
	PricePerHour      *float64 `json:"pricePerHour" binding:"omitempty,gte=0"`
	Languages         []string `json:"languages"`
	Instagram         *string  `json:"instagram"`
	LinkedIn          *string  `json:"linkedin"`
}

// ExerciseRequest matches the JSON of domain.Exercise.
type ExerciseRequest struct {
	Name        string                `json:"name" binding:"required"`
	Sets        int                   `json:"sets" binding:"gte=0"`
	RepsPerSet  int                   `json:"repsPerSet" binding:"gte=0"`
	WorkSeconds int                   `json:"time" binding:"gte=0"`
	RestSeconds int                   `json:"restTime" binding:"gte=0"`
	Order       *int                  `json:"ordem" binding:"omitempty,gte=0"`
	Status      domain.ExerciseStatus `json:"status" binding:"omitempty,exercisestatus"`
	MediaType   domain.MediaType      `json:"mediaType"`
	MediaURL    string                `json:"image"`
}

func (r ExerciseRequest) toInput() service.ExerciseInput {
	return service.ExerciseInput{
		Name:        r.Name,
		Sets:        r.Sets,
		RepsPerSet:  r.RepsPerSet,
		WorkSeconds: r.WorkSeconds,
		RestSeconds: r.RestSeconds,
		Order:       r.Order,
		Status:      r.Status,
		MediaType:   r.MediaType,
		MediaURL:    r.MediaURL,
	}
}

type PlanRequest struct {
	Name        string            `json:"nome"`
	Description string            `json:"descricao"`
	Exercises   []ExerciseRequest `json:"exercicios" binding:"dive"`
}

type ReportRequest struct {
	ID    string            `json:"id" binding:"omitempty,objectid"`
	Type  domain.ReportType `json:"tipo" binding:"required,reporttype"`
	Value float64           `json:"valor"`
	Date  string            `json:"data" binding:"omitempty,calendardate"`
	Note  string            `json:"observacao"`
}

type BMISampleRequest struct {
	Date  string  `json:"data" binding:"required,calendardate"`
	Value float64 `json:"valor" binding:"gt=0"`
	Note  string  `json:"observacao"`
}

type SyncBMIRequest struct {
	Reports []BMISampleRequest `json:"reports" binding:"required,min=1,dive"`
}

// --- Profile ---

func (h *TrainerHandler) SavePreferences(c *gin.Context) {
	var req TrainerPreferencesRequest
	if !bindJSON(c, &req) {
		return
	}
	saveTrainerPreferences(c, h.profiles, req)
}

func saveTrainerPreferences(c *gin.Context, profiles service.ProfileService, req TrainerPreferencesRequest) {
	gymID, ok := optionalID(c, "academiaId", req.GymID)
	if !ok {
		return
	}
	saved, err := profiles.SaveTrainerPreferences(c.Request.Context(), mustPrincipal(c), service.TrainerPreferencesInput{
		LicenseID:         req.LicenseID,
		BirthDate:         req.BirthDate,
		Gender:            req.Gender,
		Specializations:   req.Specializations,
		YearsOfExperience: req.YearsOfExperience,
		WorkSchedule:      req.WorkSchedule,
		Certifications:    req.Certifications,
		Biography:         req.Biography,
		WorkLocation:      req.WorkLocation,
		PricePerHour:      req.PricePerHour,
		Languages:         req.Languages,
		Instagram:         req.Instagram,
		LinkedIn:          req.LinkedIn,
		GymID:             gymID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainerProfile(saved))
}

func (h *TrainerHandler) EditProfile(c *gin.Context) {
	var req TrainerProfilePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	edited, err := h.profiles.EditTrainerProfile(c.Request.Context(), mustPrincipal(c), service.TrainerProfilePatch(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainerProfile(edited))
}

// Details is public to every authenticated role.
func (h *TrainerHandler) Details(c *gin.Context) {
	trainerID, ok := pathID(c, "personalId")
	if !ok {
		return
	}
	details, err := h.profiles.TrainerDetails(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainerDetails(details))
}

// --- Roster ---

func (h *TrainerHandler) MyStudents(c *gin.Context) {
	cards, err := h.directory.ListStudents(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentCards(cards))
}

// AddStudent godoc
// @Summary Link a student to the calling trainer
// @Description Creates the trainer-student edge. This is the only way the edge
// @Description is created; a student already linked to any trainer is refused.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param alunoId path string true "Student profile ObjectID Hex"
// @Success 200 {object} StudentCardResponse
// @Failure 400 {object} gin.H "Already linked or student in another gym"
// @Failure 404 {object} gin.H "Student not found"
// @Router /personal/adicionar-aluno/{alunoId} [post]
func (h *TrainerHandler) AddStudent(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	card, err := h.directory.AddStudent(c.Request.Context(), mustPrincipal(c), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentCard(card))
}

// --- Training plans ---

func (h *TrainerHandler) Plans(c *gin.Context) {
	entries, err := h.training.TrainerPlans(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentPlans(entries))
}

func (h *TrainerHandler) StudentPlan(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	day, ok := pathWeekday(c)
	if !ok {
		return
	}
	plan, err := h.training.StudentPlan(c.Request.Context(), mustPrincipal(c), studentID, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ReplacePlan godoc
// @Summary Create or replace the plan of a weekday
// @Description The exercise list is swapped as one unit: readers see either the
// @Description previous list or the new one.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alunoId path string true "Student profile ObjectID Hex"
// @Param diaSemana path int true "0 (Sunday) to 6"
// @Param body body PlanRequest true "Plan"
// @Success 201 {object} domain.TrainingPlan "Plan created"
// @Success 200 {object} domain.TrainingPlan "Plan replaced"
// @Router /personal/treinos/{alunoId}/{diaSemana} [post]
func (h *TrainerHandler) ReplacePlan(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	day, ok := pathWeekday(c)
	if !ok {
		return
	}
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.PlanInput{Name: req.Name, Description: req.Description, Exercises: make([]service.ExerciseInput, len(req.Exercises))}
	for i, ex := range req.Exercises {
		in.Exercises[i] = ex.toInput()
	}
	plan, created, err := h.training.ReplacePlan(c.Request.Context(), mustPrincipal(c), studentID, day, in)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, plan)
}

func (h *TrainerHandler) DeletePlan(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	day, ok := pathWeekday(c)
	if !ok {
		return
	}
	if err := h.training.DeletePlan(c.Request.Context(), mustPrincipal(c), studentID, day); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TrainerHandler) AddExercise(c *gin.Context) {
	planID, ok := pathID(c, "treinoId")
	if !ok {
		return
	}
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	exercise, err := h.training.AddExercise(c.Request.Context(), mustPrincipal(c), planID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

func (h *TrainerHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exercicioId")
	if !ok {
		return
	}
	var req ExerciseRequest
	if !bindJSON(c, &req) {
		return
	}
	exercise, err := h.training.UpdateExercise(c.Request.Context(), mustPrincipal(c), exerciseID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *TrainerHandler) DeleteExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exercicioId")
	if !ok {
		return
	}
	if err := h.training.DeleteExercise(c.Request.Context(), mustPrincipal(c), exerciseID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Reports ---

func (h *TrainerHandler) StudentReports(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	grouped, err := h.reports.TrainerReports(c.Request.Context(), mustPrincipal(c), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

func (h *TrainerHandler) UpsertReport(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	var req ReportRequest
	if !bindJSON(c, &req) {
		return
	}
	reportID, ok := optionalID(c, "id", req.ID)
	if !ok {
		return
	}

	report, created, err := h.reports.UpsertReport(c.Request.Context(), mustPrincipal(c), studentID, service.ReportInput{
		ID:    reportID,
		Type:  req.Type,
		Value: req.Value,
		Date:  req.Date,
		Note:  req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, report)
}

func (h *TrainerHandler) SyncBMI(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	var req SyncBMIRequest
	if !bindJSON(c, &req) {
		return
	}

	samples := make([]service.BMISample, len(req.Reports))
	for i, r := range req.Reports {
		samples[i] = service.BMISample(r)
	}
	saved, err := h.reports.SyncBMI(c.Request.Context(), mustPrincipal(c), studentID, samples)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// --- Dashboard ---

func (h *TrainerHandler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboard.TrainerStats(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TrainerStatsResponse(*stats))
}

func (h *TrainerHandler) StudentsProgress(c *gin.Context) {
	progress, err := h.dashboard.StudentsProgress(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentsProgress(progress))
}
