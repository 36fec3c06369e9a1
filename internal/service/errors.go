package service

import (
	"errors"
	"fmt"

	"gymconnect/backend/internal/repository"
)

// Error taxonomy. Every error returned by this package either wraps one of
// these or is an internal failure.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidReference = errors.New("invalid reference")
	ErrConflict         = errors.New("conflict")
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	ErrInvalidToken         = fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)

	ErrWrongRole        = fmt.Errorf("%w: operation not allowed for this role", ErrForbidden)
	ErrNotYourStudent   = fmt.Errorf("%w: student is not linked to this trainer", ErrForbidden)
	ErrOutsideGym       = fmt.Errorf("%w: record belongs to another gym", ErrForbidden)
	ErrNotYourEvent     = fmt.Errorf("%w: event is not visible to this user", ErrForbidden)
	ErrNotYourTask      = fmt.Errorf("%w: task belongs to other users", ErrForbidden)
	ErrTaskNotDeletable = fmt.Errorf("%w: task cannot be deleted", ErrForbidden)

	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrProfileNotFound    = fmt.Errorf("%w: profile", ErrNotFound)
	ErrStudentNotFound    = fmt.Errorf("%w: student", ErrNotFound)
	ErrTrainerNotFound    = fmt.Errorf("%w: trainer", ErrNotFound)
	ErrGymNotFound        = fmt.Errorf("%w: gym", ErrNotFound)
	ErrNoGym              = fmt.Errorf("%w: not affiliated with a gym", ErrNotFound)
	ErrNoTrainer          = fmt.Errorf("%w: no trainer assigned", ErrNotFound)
	ErrPlanNotFound       = fmt.Errorf("%w: training plan", ErrNotFound)
	ErrExerciseNotFound   = fmt.Errorf("%w: exercise", ErrNotFound)
	ErrReportNotFound     = fmt.Errorf("%w: report", ErrNotFound)
	ErrPaymentNotFound    = fmt.Errorf("%w: payment", ErrNotFound)
	ErrEventNotFound      = fmt.Errorf("%w: event", ErrNotFound)
	ErrAttendanceNotFound = fmt.Errorf("%w: attendance confirmation", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("%w: task", ErrNotFound)

	ErrAlreadyLinked     = fmt.Errorf("%w: student already has a trainer", ErrInvalidInput)
	ErrAlreadyAffiliated = fmt.Errorf("%w: student is already affiliated with a gym", ErrInvalidInput)
	ErrInvalidWeekday    = fmt.Errorf("%w: weekday must be between 0 and 6", ErrInvalidInput)
	ErrInvalidYouTubeURL = fmt.Errorf("%w: youtube url must be an embed link", ErrInvalidInput)
	ErrUnsupportedMedia  = fmt.Errorf("%w: unsupported file type", ErrInvalidInput)
	ErrFileTooLarge      = fmt.Errorf("%w: file exceeds 10MB", ErrInvalidInput)
	ErrEmptyFile         = fmt.Errorf("%w: file is empty", ErrInvalidInput)

	ErrUnknownGym        = fmt.Errorf("%w: gym does not exist", ErrInvalidReference)
	ErrUnknownStudent    = fmt.Errorf("%w: student does not exist", ErrInvalidReference)
	ErrUnknownUser       = fmt.Errorf("%w: user does not exist", ErrInvalidReference)
	ErrGymMismatch       = fmt.Errorf("%w: payment gym differs from the student's gym", ErrInvalidReference)
	ErrTrainerOutsideGym = fmt.Errorf("%w: trainer belongs to another gym", ErrInvalidReference)

	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrLicenseTaken     = fmt.Errorf("%w: cref already registered", ErrConflict)
	ErrTaxIDTaken       = fmt.Errorf("%w: cnpj already registered", ErrConflict)
	ErrConcurrentUpdate = fmt.Errorf("%w: record changed concurrently, retry", ErrConflict)
)

// invalidInput builds an ErrInvalidInput with a message.
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// notFoundAs replaces repository.ErrNotFound with target. Other errors pass through.
func notFoundAs(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
