package api

import (
	"net/http"
	"strings"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CommonHandler serves the routes shared by every role: the caller's own
// profile, directory listings and tasks.
type CommonHandler struct {
	profiles  service.ProfileService
	directory service.DirectoryService
	tasks     service.TaskService
}

func NewCommonHandler(profiles service.ProfileService, directory service.DirectoryService, tasks service.TaskService) *CommonHandler {
	return &CommonHandler{profiles: profiles, directory: directory, tasks: tasks}
}

type ProfileResponse struct {
	User    *domain.User            `json:"user"`
	Gym     *domain.GymProfile      `json:"academia,omitempty"`
	Trainer *TrainerProfileResponse `json:"personal,omitempty"`
	Student *StudentProfileResponse `json:"aluno,omitempty"`
}

type AssociateStudentRequest struct {
	StudentID string `json:"alunoId" binding:"required,objectid"`
	GymID     string `json:"academiaId" binding:"required,objectid"`
}

type TaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate" binding:"required,calendardate"`
	AssignedTo  string `json:"assignedTo" binding:"omitempty,objectid"`
	Deletable   *bool  `json:"deletable"`
}

type TaskStatusRequest struct {
	Status domain.TaskStatus `json:"status" binding:"required,taskstatus"`
}

// Profile returns the caller with the profile of its role.
func (h *CommonHandler) Profile(c *gin.Context) {
	switch p := mustPrincipal(c).(type) {
	case *domain.GymPrincipal:
		c.JSON(http.StatusOK, ProfileResponse{User: p.User, Gym: p.Gym})
	case *domain.TrainerPrincipal:
		c.JSON(http.StatusOK, ProfileResponse{User: p.User, Trainer: MapTrainerProfile(p.Trainer)})
	case *domain.StudentPrincipal:
		c.JSON(http.StatusOK, ProfileResponse{User: p.User, Student: MapStudentProfile(p.Student)})
	case *domain.GenericPrincipal:
		c.JSON(http.StatusOK, ProfileResponse{User: p.User})
	}
}

func (h *CommonHandler) Preferences(c *gin.Context) {
	switch p := mustPrincipal(c).(type) {
	case *domain.GymPrincipal:
		c.JSON(http.StatusOK, p.Gym)
	case *domain.TrainerPrincipal:
		c.JSON(http.StatusOK, MapTrainerProfile(p.Trainer))
	case *domain.StudentPrincipal:
		c.JSON(http.StatusOK, MapStudentProfile(p.Student))
	default:
		respondError(c, service.ErrWrongRole)
	}
}

// SavePreferences binds the body according to the caller's role.
func (h *CommonHandler) SavePreferences(c *gin.Context) {
	switch mustPrincipal(c).(type) {
	case *domain.GymPrincipal:
		var req GymProfileRequest
		if bindJSON(c, &req) {
			saveGymProfile(c, h.profiles, req)
		}
	case *domain.TrainerPrincipal:
		var req TrainerPreferencesRequest
		if bindJSON(c, &req) {
			saveTrainerPreferences(c, h.profiles, req)
		}
	case *domain.StudentPrincipal:
		var req StudentPreferencesRequest
		if bindJSON(c, &req) {
			saveStudentPreferences(c, h.profiles, req)
		}
	default:
		respondError(c, service.ErrWrongRole)
	}
}

// --- Directory ---

func (h *CommonHandler) ListGyms(c *gin.Context) {
	cards, err := h.directory.ListGyms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapGymCards(cards))
}

func (h *CommonHandler) ListTrainers(c *gin.Context) {
	gymID, ok := optionalID(c, "academiaId", c.Query("academiaId"))
	if !ok {
		return
	}
	cards, err := h.directory.ListTrainers(c.Request.Context(), gymID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTrainerCards(cards))
}

func (h *CommonHandler) ListStudents(c *gin.Context) {
	cards, err := h.directory.ListStudents(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentCards(cards))
}

func (h *CommonHandler) FindStudentByEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		abortWithError(c, http.StatusBadRequest, "email is required")
		return
	}
	card, err := h.directory.FindStudentByEmail(c.Request.Context(), mustPrincipal(c), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentCard(card))
}

func (h *CommonHandler) AssociateStudentWithGym(c *gin.Context) {
	var req AssociateStudentRequest
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
	card, err := h.directory.AssociateStudentWithGym(c.Request.Context(), mustPrincipal(c), *studentID, *gymID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentCard(card))
}

func (h *CommonHandler) UsersForTasks(c *gin.Context) {
	users, err := h.directory.UsersForTasks(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// --- Tasks ---

func (h *CommonHandler) Tasks(c *gin.Context) {
	entries, err := h.tasks.List(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTasks(entries))
}

func (h *CommonHandler) CreateTask(c *gin.Context) {
	var req TaskRequest
	if !bindJSON(c, &req) {
		return
	}
	assignee, ok := optionalID(c, "assignedTo", req.AssignedTo)
	if !ok {
		return
	}
	entry, err := h.tasks.Create(c.Request.Context(), mustPrincipal(c), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssignedTo:  assignee,
		Deletable:   req.Deletable,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTask(entry))
}

func (h *CommonHandler) UpdateTaskStatus(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TaskStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.tasks.UpdateStatus(c.Request.Context(), mustPrincipal(c), taskID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTask(entry))
}

func (h *CommonHandler) DeleteTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), mustPrincipal(c), taskID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
