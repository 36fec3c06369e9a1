package service

import (
	"context"
	"errors"
	"strings"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventInput creates or replaces an event. Dates are ISO-8601 timestamps.
type EventInput struct {
	Title       string
	Description string
	StartDate   string
	EndDate     string
	Location    string
	Audience    domain.Audience
}

// AttendanceEntry is a confirmation together with the confirming user.
type AttendanceEntry struct {
	domain.EventAttendance
	User domain.User
}

type EventService interface {
	GymEvents(ctx context.Context, p domain.Principal) ([]domain.Event, error)
	CreateEvent(ctx context.Context, p domain.Principal, in EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, p domain.Principal, eventID primitive.ObjectID, in EventInput) (*domain.Event, error)
	// DeleteEvent removes the event and its confirmations.
	DeleteEvent(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) error
	EventAttendances(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) ([]AttendanceEntry, error)

	// MemberEvents lists the events of the caller's gym addressed to its role.
	// upcoming selects future events when true and past ones when false.
	MemberEvents(ctx context.Context, p domain.Principal, upcoming *bool) ([]domain.Event, error)
	AttendanceStatus(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) (*domain.EventAttendance, error)
	ConfirmAttendance(ctx context.Context, p domain.Principal, eventID primitive.ObjectID, comment string) (*domain.EventAttendance, error)
	CancelAttendance(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) error
}

type eventService struct {
	*Core
}

func NewEventService(core *Core) EventService {
	return &eventService{Core: core}
}

func eventFromInput(in EventInput) (*domain.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalidInput("titulo is required")
	}
	if in.Audience == "" {
		in.Audience = domain.AudienceAll
	}
	if !in.Audience.Valid() {
		return nil, invalidInput("unknown event audience %q", in.Audience)
	}
	start, err := domain.ParseTimestamp(in.StartDate)
	if err != nil {
		return nil, invalidInput("dataInicio: %s", err)
	}
	event := &domain.Event{
		Title:       title,
		Description: in.Description,
		StartDate:   start,
		Location:    in.Location,
		Audience:    in.Audience,
	}
	if in.EndDate != "" {
		end, err := domain.ParseTimestamp(in.EndDate)
		if err != nil {
			return nil, invalidInput("dataFim: %s", err)
		}
		if end.Before(start) {
			return nil, invalidInput("dataFim is before dataInicio")
		}
		event.EndDate = &end
	}
	return event, nil
}

func (s *eventService) GymEvents(ctx context.Context, p domain.Principal) ([]domain.Event, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}
	return s.Store.Events.ListByGym(ctx, gp.Gym.ID, repository.EventFilter{Now: s.Now()})
}

func (s *eventService) CreateEvent(ctx context.Context, p domain.Principal, in EventInput) (*domain.Event, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}
	event, err := eventFromInput(in)
	if err != nil {
		return nil, err
	}
	event.GymID = gp.Gym.ID
	if _, err := s.Store.Events.Create(ctx, event); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"event_id": event.ID.Hex(), "gym_id": event.GymID.Hex()}).Info("event created")
	return event, nil
}

// managedEvent loads an event the caller's gym owns.
func (s *eventService) managedEvent(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) (*domain.Event, error) {
	if _, err := RequireGym(p); err != nil {
		return nil, err
	}
	event, err := s.Graph.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.ManageEvent(p, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, p domain.Principal, eventID primitive.ObjectID, in EventInput) (*domain.Event, error) {
	existing, err := s.managedEvent(ctx, p, eventID)
	if err != nil {
		return nil, err
	}
	event, err := eventFromInput(in)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.GymID = existing.GymID
	event.CreatedAt = existing.CreatedAt
	if err := s.Store.Events.Update(ctx, event); err != nil {
		return nil, notFoundAs(err, ErrEventNotFound)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) error {
	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return err
	}
	return s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Store.Attendances.DeleteByEvent(ctx, eventID); err != nil {
			return err
		}
		return notFoundAs(s.Store.Events.Delete(ctx, eventID), ErrEventNotFound)
	})
}

func (s *eventService) EventAttendances(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) ([]AttendanceEntry, error) {
	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return nil, err
	}
	attendances, err := s.Store.Attendances.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(attendances))
	for i, a := range attendances {
		ids[i] = a.UserID
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]AttendanceEntry, 0, len(attendances))
	for _, a := range attendances {
		entries = append(entries, AttendanceEntry{EventAttendance: a, User: users[a.UserID]})
	}
	return entries, nil
}

func (s *eventService) MemberEvents(ctx context.Context, p domain.Principal, upcoming *bool) ([]domain.Event, error) {
	var audience domain.Audience
	switch p.(type) {
	case *domain.StudentPrincipal:
		audience = domain.AudienceStudents
	case *domain.TrainerPrincipal:
		audience = domain.AudienceTrainers
	default:
		return nil, ErrWrongRole
	}
	gymID := s.Graph.AffiliatedGym(p)
	if gymID == nil {
		return nil, ErrNoGym
	}
	return s.Store.Events.ListByGym(ctx, *gymID, repository.EventFilter{
		Audiences: []domain.Audience{audience, domain.AudienceAll},
		Upcoming:  upcoming,
		Now:       s.Now(),
	})
}

// attendableEvent loads an event the caller may confirm.
func (s *eventService) attendableEvent(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) (*domain.Event, error) {
	event, err := s.Graph.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.AttendEvent(p, event); err != nil {
		return nil, err
	}
	return event, nil
}

// AttendanceStatus returns nil without error when the caller has not confirmed.
func (s *eventService) AttendanceStatus(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) (*domain.EventAttendance, error) {
	if _, err := s.attendableEvent(ctx, p, eventID); err != nil {
		return nil, err
	}
	attendance, err := s.Store.Attendances.Get(ctx, eventID, p.UserID())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return attendance, err
}

func (s *eventService) ConfirmAttendance(ctx context.Context, p domain.Principal, eventID primitive.ObjectID, comment string) (*domain.EventAttendance, error) {
	if _, err := s.attendableEvent(ctx, p, eventID); err != nil {
		return nil, err
	}
	return s.Store.Attendances.Upsert(ctx, eventID, p.UserID(), comment)
}

func (s *eventService) CancelAttendance(ctx context.Context, p domain.Principal, eventID primitive.ObjectID) error {
	if _, err := s.attendableEvent(ctx, p, eventID); err != nil {
		return err
	}
	return notFoundAs(s.Store.Attendances.Delete(ctx, eventID, p.UserID()), ErrAttendanceNotFound)
}
