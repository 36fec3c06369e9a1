package api

import (
	"net/http"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// EventHandler serves gym event management and member attendance.
type EventHandler struct {
	events service.EventService
}

func NewEventHandler(events service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type EventRequest struct {
	Title       string          `json:"titulo" binding:"required"`
	Description string          `json:"descricao"`
	StartDate   string          `json:"dataInicio" binding:"required,calendardate"`
	EndDate     string          `json:"dataFim" binding:"omitempty,calendardate"`
	Location    string          `json:"local"`
	Audience    domain.Audience `json:"tipo" binding:"omitempty,audience"`
}

type AttendanceRequest struct {
	Comment string `json:"comentario"`
}

type AttendanceStatusResponse struct {
	Confirmed  bool                    `json:"confirmado"`
	Attendance *domain.EventAttendance `json:"presenca"`
}

// --- Gym side ---

func (h *EventHandler) GymEvents(c *gin.Context) {
	events, err := h.events.GymEvents(c.Request.Context(), mustPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req EventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.events.CreateEvent(c.Request.Context(), mustPrincipal(c), service.EventInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := pathID(c, "eventoId")
	if !ok {
		return
	}
	var req EventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.events.UpdateEvent(c.Request.Context(), mustPrincipal(c), eventID, service.EventInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Delete(c *gin.Context) {
	eventID, ok := pathID(c, "eventoId")
	if !ok {
		return
	}
	if err := h.events.DeleteEvent(c.Request.Context(), mustPrincipal(c), eventID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) Attendances(c *gin.Context) {
	eventID, ok := pathID(c, "eventoId")
	if !ok {
		return
	}
	entries, err := h.events.EventAttendances(c.Request.Context(), mustPrincipal(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapAttendances(entries))
}

// --- Member side ---

// MemberEvents godoc
// @Summary Events of the caller's gym
// @Description Lists events addressed to the caller's role. futuros=true keeps
// @Description upcoming events, futuros=false past ones; absent lists all.
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param futuros query bool false "Upcoming filter"
// @Success 200 {array} domain.Event
// @Router /aluno/eventos [get]
// @Router /personal/eventos [get]
func (h *EventHandler) MemberEvents(c *gin.Context) {
	upcoming, ok := queryBool(c, "futuros")
	if !ok {
		return
	}
	events, err := h.events.MemberEvents(c.Request.Context(), mustPrincipal(c), upcoming)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) AttendanceStatus(c *gin.Context) {
	eventID, ok := pathID(c, "eventoId")
	if !ok {
		return
	}
	attendance, err := h.events.AttendanceStatus(c.Request.Context(), mustPrincipal(c), eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AttendanceStatusResponse{Confirmed: attendance != nil, Attendance: attendance})
}

func (h *EventHandler) Confirm(c *gin.Context) {
	eventID, ok := pathID(c, "eventoId")
	if !ok {
		return
	}
	var req AttendanceRequest
	// The body is optional.
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	attendance, err := h.events.ConfirmAttendance(c.Request.Context(), mustPrincipal(c), eventID, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attendance)
}

func (h *EventHandler) Cancel(c *gin.Context) {
	eventID, ok := pathID(c, "eventoId")
	if !ok {
		return
	}
	if err := h.events.CancelAttendance(c.Request.Context(), mustPrincipal(c), eventID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
