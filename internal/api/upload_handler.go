package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// UploadHandler serves avatar and exercise media uploads.
type UploadHandler struct {
	media service.MediaService
}

func NewUploadHandler(media service.MediaService) *UploadHandler {
	return &UploadHandler{media: media}
}

type AvatarResponse struct {
	Message   string `json:"message"`
	AvatarURL string `json:"avatarUrl"`
}

type YouTubeRequest struct {
	VideoURL string `json:"videoUrl" binding:"required"`
}

// ExerciseWithMediaForm is the multipart form of /exercicio-com-midia.
type ExerciseWithMediaForm struct {
	PlanID      string                `form:"treinoId" binding:"required,objectid"`
	Name        string                `form:"name" binding:"required"`
	Sets        int                   `form:"sets" binding:"gte=0"`
	RepsPerSet  int                   `form:"repsPerSet" binding:"gte=0"`
	WorkSeconds int                   `form:"time" binding:"gte=0"`
	RestSeconds int                   `form:"restTime" binding:"gte=0"`
	Order       *int                  `form:"ordem" binding:"omitempty,gte=0"`
	Status      domain.ExerciseStatus `form:"status" binding:"omitempty,exercisestatus"`
	YouTubeURL  string                `form:"youtubeUrl"`
}

// formFile reads the multipart field name. A missing field yields ok with a
// nil file when optional is set, and 400 otherwise.
func formFile(c *gin.Context, name string, optional bool) (*service.File, bool) {
	header, err := c.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) && optional {
		return nil, true
	}
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "no file sent in field "+name)
		return nil, false
	}
	return openFile(c, header)
}

func openFile(c *gin.Context, header *multipart.FileHeader) (*service.File, bool) {
	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return &service.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     f,
	}, true
}

func closeFile(file *service.File) {
	if file == nil {
		return
	}
	if closer, ok := file.Content.(multipart.File); ok {
		if err := closer.Close(); err != nil {
			log.WithError(err).WithField("file", file.Name).Warn("failed to close uploaded file")
		}
	}
}

func (h *UploadHandler) avatarDone(c *gin.Context, user *domain.User, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AvatarResponse{Message: "avatar updated", AvatarURL: user.AvatarURL})
}

// OwnAvatar godoc
// @Summary Replace the caller's avatar
// @Description Accepts an image up to 10MB in the avatar field. The previous
// @Description avatar is removed from storage after the replacement.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image"
// @Success 200 {object} AvatarResponse
// @Failure 400 {object} gin.H "Missing, empty, oversized or unsupported file"
// @Router /upload/avatar [post]
func (h *UploadHandler) OwnAvatar(c *gin.Context) {
	file, ok := formFile(c, "avatar", false)
	if !ok {
		return
	}
	defer closeFile(file)
	user, err := h.media.UploadOwnAvatar(c.Request.Context(), mustPrincipal(c), *file)
	h.avatarDone(c, user, err)
}

func (h *UploadHandler) StudentAvatar(c *gin.Context) {
	studentID, ok := pathID(c, "alunoId")
	if !ok {
		return
	}
	file, ok := formFile(c, "avatar", false)
	if !ok {
		return
	}
	defer closeFile(file)
	user, err := h.media.UploadStudentAvatar(c.Request.Context(), mustPrincipal(c), studentID, *file)
	h.avatarDone(c, user, err)
}

func (h *UploadHandler) TrainerAvatar(c *gin.Context) {
	trainerID, ok := pathID(c, "personalId")
	if !ok {
		return
	}
	file, ok := formFile(c, "avatar", false)
	if !ok {
		return
	}
	defer closeFile(file)
	user, err := h.media.UploadTrainerAvatar(c.Request.Context(), mustPrincipal(c), trainerID, *file)
	h.avatarDone(c, user, err)
}

func (h *UploadHandler) ExerciseMedia(c *gin.Context) {
	exerciseID, ok := optionalID(c, "exercicioId", c.PostForm("exercicioId"))
	if !ok {
		return
	}
	if exerciseID == nil {
		abortWithError(c, http.StatusBadRequest, "exercicioId is required")
		return
	}
	file, ok := formFile(c, "media", false)
	if !ok {
		return
	}
	defer closeFile(file)

	exercise, err := h.media.UploadExerciseMedia(c.Request.Context(), mustPrincipal(c), *exerciseID, *file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *UploadHandler) ExerciseYouTube(c *gin.Context) {
	exerciseID, ok := pathID(c, "exercicioId")
	if !ok {
		return
	}
	var req YouTubeRequest
	if !bindJSON(c, &req) {
		return
	}
	exercise, err := h.media.SetExerciseYouTube(c.Request.Context(), mustPrincipal(c), exerciseID, req.VideoURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// ExerciseWithMedia creates an exercise from a multipart form. The media file
// is optional; without one, youtubeUrl may link an embed video instead.
func (h *UploadHandler) ExerciseWithMedia(c *gin.Context) {
	var form ExerciseWithMediaForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, http.StatusBadRequest, validationMessage(err))
		return
	}
	planID, ok := optionalID(c, "treinoId", form.PlanID)
	if !ok {
		return
	}
	file, ok := formFile(c, "media", true)
	if !ok {
		return
	}
	defer closeFile(file)

	in := service.ExerciseInput{
		Name:        form.Name,
		Sets:        form.Sets,
		RepsPerSet:  form.RepsPerSet,
		WorkSeconds: form.WorkSeconds,
		RestSeconds: form.RestSeconds,
		Order:       form.Order,
		Status:      form.Status,
	}
	if file == nil && form.YouTubeURL != "" {
		in.MediaType, in.MediaURL = domain.MediaYouTube, form.YouTubeURL
	}

	exercise, err := h.media.CreateExerciseWithMedia(c.Request.Context(), mustPrincipal(c), *planID, in, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}
