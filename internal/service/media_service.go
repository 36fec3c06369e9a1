package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is an uploaded file as received from the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// IsYouTubeEmbed reports whether url is a YouTube embed link.
func IsYouTubeEmbed(url string) bool {
	return strings.Contains(url, "youtube.com/embed/")
}

type MediaService interface {
	UploadOwnAvatar(ctx context.Context, p domain.Principal, file File) (*domain.User, error)
	// UploadStudentAvatar replaces the avatar of a student of the caller's gym.
	UploadStudentAvatar(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, file File) (*domain.User, error)
	// UploadTrainerAvatar replaces the avatar of a trainer of the caller's gym.
	UploadTrainerAvatar(ctx context.Context, p domain.Principal, trainerID primitive.ObjectID, file File) (*domain.User, error)

	UploadExerciseMedia(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID, file File) (*domain.Exercise, error)
	SetExerciseYouTube(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID, url string) (*domain.Exercise, error)
	// CreateExerciseWithMedia adds an exercise to a plan with an optional file.
	CreateExerciseWithMedia(ctx context.Context, p domain.Principal, planID primitive.ObjectID, in ExerciseInput, file *File) (*domain.Exercise, error)
}

type mediaService struct {
	*Core
	files    storage.FileStorage
	training TrainingService
}

func NewMediaService(core *Core, files storage.FileStorage, training TrainingService) MediaService {
	return &mediaService{Core: core, files: files, training: training}
}

// checkFile validates size and content type, returning the media type.
func checkFile(file File) (domain.MediaType, error) {
	if file.Size <= 0 {
		return "", ErrEmptyFile
	}
	if file.Size > domain.MaxUploadSize {
		return "", ErrFileTooLarge
	}
	mt, ok := domain.MediaTypeFor(file.ContentType)
	if !ok {
		return "", ErrUnsupportedMedia
	}
	return mt, nil
}

func objectKey(folder, fileName string) string {
	key := uuid.NewString() + strings.ToLower(path.Ext(fileName))
	if folder == "" {
		return key
	}
	return folder + "/" + key
}

// store writes the file to bucket and records its metadata.
func (s *mediaService) store(ctx context.Context, p domain.Principal, upload domain.Upload, folder string, file File) (*domain.Upload, error) {
	key := objectKey(folder, file.Name)
	url, err := s.files.Upload(ctx, upload.Bucket, key, file.ContentType, file.Content, file.Size)
	if err != nil {
		return nil, err
	}
	upload.UploadedBy = p.UserID()
	upload.ObjectKey = key
	upload.URL = url
	upload.FileName = file.Name
	upload.ContentType = file.ContentType
	upload.Size = file.Size
	if _, err := s.Store.Uploads.Create(ctx, &upload); err != nil {
		s.discard(ctx, upload.Bucket, url)
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.CounterUploads.WithLabelValues(upload.Bucket).Inc()
	}
	return &upload, nil
}

// discard deletes a stored object and its metadata. Failures are only logged.
func (s *mediaService) discard(ctx context.Context, bucket, url string) {
	if url == "" {
		return
	}
	logger := log.WithFields(log.Fields{"bucket": bucket, "url": url})
	if err := s.files.Delete(ctx, bucket, url); err != nil {
		if errors.Is(err, storage.ErrForeignURL) {
			logger.Debug("previous object is not ours, leaving it")
			return
		}
		logger.WithError(err).Warn("failed to delete previous object")
		return
	}
	if err := s.Store.Uploads.DeleteByURL(ctx, url); err != nil {
		logger.WithError(err).Warn("failed to delete upload metadata")
	}
}

func (s *mediaService) replaceAvatar(ctx context.Context, p domain.Principal, userID primitive.ObjectID, file File) (*domain.User, error) {
	mt, err := checkFile(file)
	if err != nil {
		return nil, err
	}
	if mt != domain.MediaImage && mt != domain.MediaGIF {
		return nil, ErrUnsupportedMedia
	}
	user, err := s.Store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	upload, err := s.store(ctx, p, domain.Upload{
		OwnerID:  userID,
		EntityID: userID,
		Purpose:  domain.PurposeAvatar,
		Bucket:   domain.BucketAvatars,
	}, "", file)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Users.SetAvatarURL(ctx, userID, upload.URL); err != nil {
		s.discard(ctx, domain.BucketAvatars, upload.URL)
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	s.discard(ctx, domain.BucketAvatars, user.AvatarURL)

	user.AvatarURL = upload.URL
	user.PasswordHash = ""
	return user, nil
}

func (s *mediaService) UploadOwnAvatar(ctx context.Context, p domain.Principal, file File) (*domain.User, error) {
	return s.replaceAvatar(ctx, p, p.UserID(), file)
}

func (s *mediaService) UploadStudentAvatar(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, file File) (*domain.User, error) {
	if _, err := RequireGym(p); err != nil {
		return nil, err
	}
	student, err := s.Graph.Student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.GymStudent(p, student); err != nil {
		return nil, err
	}
	return s.replaceAvatar(ctx, p, student.UserID, file)
}

func (s *mediaService) UploadTrainerAvatar(ctx context.Context, p domain.Principal, trainerID primitive.ObjectID, file File) (*domain.User, error) {
	if _, err := RequireGym(p); err != nil {
		return nil, err
	}
	trainer, err := s.Graph.Trainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.GymTrainer(p, trainer); err != nil {
		return nil, err
	}
	return s.replaceAvatar(ctx, p, trainer.UserID, file)
}

// ownedExercise loads an exercise of a student linked to the calling trainer.
func (s *mediaService) ownedExercise(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID) (*domain.Exercise, *domain.StudentProfile, error) {
	if _, err := RequireTrainer(p); err != nil {
		return nil, nil, err
	}
	exercise, student, err := s.Graph.ExerciseOwner(ctx, exerciseID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Guard.TrainerStudent(p, student); err != nil {
		return nil, nil, err
	}
	return exercise, student, nil
}

func (s *mediaService) UploadExerciseMedia(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID, file File) (*domain.Exercise, error) {
	mt, err := checkFile(file)
	if err != nil {
		return nil, err
	}
	exercise, student, err := s.ownedExercise(ctx, p, exerciseID)
	if err != nil {
		return nil, err
	}

	upload, err := s.store(ctx, p, domain.Upload{
		OwnerID:  student.UserID,
		EntityID: exercise.ID,
		Purpose:  domain.PurposeExerciseMedia,
		Bucket:   domain.BucketExercisesMedia,
	}, domain.MediaFolder(mt), file)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Exercises.SetMedia(ctx, exercise.ID, mt, upload.URL); err != nil {
		s.discard(ctx, domain.BucketExercisesMedia, upload.URL)
		return nil, notFoundAs(err, ErrExerciseNotFound)
	}
	if exercise.MediaType != domain.MediaYouTube {
		s.discard(ctx, domain.BucketExercisesMedia, exercise.MediaURL)
	}
	return s.reloadExercise(ctx, exercise.ID)
}

func (s *mediaService) SetExerciseYouTube(ctx context.Context, p domain.Principal, exerciseID primitive.ObjectID, url string) (*domain.Exercise, error) {
	url = strings.TrimSpace(url)
	if !IsYouTubeEmbed(url) {
		return nil, ErrInvalidYouTubeURL
	}
	exercise, _, err := s.ownedExercise(ctx, p, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Exercises.SetMedia(ctx, exercise.ID, domain.MediaYouTube, url); err != nil {
		return nil, notFoundAs(err, ErrExerciseNotFound)
	}
	if exercise.MediaType != domain.MediaYouTube {
		s.discard(ctx, domain.BucketExercisesMedia, exercise.MediaURL)
	}
	return s.reloadExercise(ctx, exercise.ID)
}

func (s *mediaService) CreateExerciseWithMedia(ctx context.Context, p domain.Principal, planID primitive.ObjectID, in ExerciseInput, file *File) (*domain.Exercise, error) {
	if file == nil {
		return s.training.AddExercise(ctx, p, planID, in)
	}
	mt, err := checkFile(*file)
	if err != nil {
		return nil, err
	}
	if err := validateExercise(in); err != nil {
		return nil, err
	}
	if _, err := RequireTrainer(p); err != nil {
		return nil, err
	}
	_, student, err := s.Graph.PlanOwner(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.TrainerStudent(p, student); err != nil {
		return nil, err
	}

	upload, err := s.store(ctx, p, domain.Upload{
		OwnerID: student.UserID,
		Purpose: domain.PurposeExerciseMedia,
		Bucket:  domain.BucketExercisesMedia,
	}, domain.MediaFolder(mt), *file)
	if err != nil {
		return nil, err
	}
	in.MediaType = mt
	in.MediaURL = upload.URL
	exercise, err := s.training.AddExercise(ctx, p, planID, in)
	if err != nil {
		s.discard(ctx, domain.BucketExercisesMedia, upload.URL)
		return nil, err
	}
	return exercise, nil
}
