package service

import (
	"context"
	"strings"

	"gymconnect/backend/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskInput creates a task. A nil Deletable means deletable.
type TaskInput struct {
	Title       string
	Description string
	DueDate     string
	AssignedTo  *primitive.ObjectID
	Deletable   *bool
}

// TaskEntry is a task with its creator and assignee resolved.
type TaskEntry struct {
	domain.Task
	Creator  *domain.User
	Assignee *domain.User
}

type TaskService interface {
	// List returns the tasks the caller created or was assigned, by due date.
	// Pending tasks past their due date are moved to overdue first.
	List(ctx context.Context, p domain.Principal) ([]TaskEntry, error)
	Create(ctx context.Context, p domain.Principal, in TaskInput) (*TaskEntry, error)
	UpdateStatus(ctx context.Context, p domain.Principal, taskID primitive.ObjectID, status domain.TaskStatus) (*TaskEntry, error)
	Delete(ctx context.Context, p domain.Principal, taskID primitive.ObjectID) error
}

type taskService struct {
	*Core
}

func NewTaskService(core *Core) TaskService {
	return &taskService{Core: core}
}

func (s *taskService) List(ctx context.Context, p domain.Principal) ([]TaskEntry, error) {
	userID := p.UserID()
	tasks, err := s.Store.Tasks.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var stale []primitive.ObjectID
	for _, t := range tasks {
		if t.IsOverdueAt(now) {
			stale = append(stale, t.ID)
		}
	}
	if len(stale) > 0 {
		changed, err := s.Store.Tasks.MarkOverdue(ctx, stale, now)
		if err != nil {
			return nil, err
		}
		if s.Metrics != nil {
			s.Metrics.CounterTasksOverdue.Add(float64(changed))
		}
		log.WithFields(log.Fields{"user_id": userID.Hex(), "changed": changed}).Debug("tasks marked overdue")

		// Stale tasks may have been completed or deleted since the first read.
		tasks, err = s.Store.Tasks.ListForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	return s.taskEntries(ctx, tasks)
}

func (s *taskService) taskEntries(ctx context.Context, tasks []domain.Task) ([]TaskEntry, error) {
	ids := make([]primitive.ObjectID, 0, len(tasks)*2)
	for _, t := range tasks {
		ids = append(ids, t.CreatedBy)
		if t.AssignedTo != nil {
			ids = append(ids, *t.AssignedTo)
		}
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]TaskEntry, 0, len(tasks))
	for _, t := range tasks {
		entry := TaskEntry{Task: t}
		if u, ok := users[t.CreatedBy]; ok {
			entry.Creator = &u
		}
		if t.AssignedTo != nil {
			if u, ok := users[*t.AssignedTo]; ok {
				entry.Assignee = &u
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *taskService) entry(ctx context.Context, task *domain.Task) (*TaskEntry, error) {
	entries, err := s.taskEntries(ctx, []domain.Task{*task})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

func (s *taskService) Create(ctx context.Context, p domain.Principal, in TaskInput) (*TaskEntry, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalidInput("title is required")
	}
	if strings.TrimSpace(in.DueDate) == "" {
		return nil, invalidInput("dueDate is required")
	}
	due, err := domain.ParseTimestamp(in.DueDate)
	if err != nil {
		return nil, invalidInput("dueDate: %s", err)
	}
	if in.AssignedTo != nil {
		if _, err := s.Enforce.CheckUser(ctx, *in.AssignedTo); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		Title:       title,
		Description: in.Description,
		DueDate:     due,
		Status:      domain.TaskPending,
		CreatedBy:   p.UserID(),
		AssignedTo:  in.AssignedTo,
		Deletable:   in.Deletable == nil || *in.Deletable,
	}
	if _, err := s.Store.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return s.entry(ctx, task)
}

func (s *taskService) UpdateStatus(ctx context.Context, p domain.Principal, taskID primitive.ObjectID, status domain.TaskStatus) (*TaskEntry, error) {
	if !status.Valid() {
		return nil, invalidInput("unknown task status %q", status)
	}
	task, err := s.Store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}
	if !task.CanChangeStatus(p.UserID()) {
		return nil, ErrNotYourTask
	}
	if err := s.Store.Tasks.UpdateStatus(ctx, taskID, status); err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}
	task.Status = status
	task.UpdatedAt = s.Now()
	return s.entry(ctx, task)
}

func (s *taskService) Delete(ctx context.Context, p domain.Principal, taskID primitive.ObjectID) error {
	task, err := s.Store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return notFoundAs(err, ErrTaskNotFound)
	}
	if task.CreatedBy != p.UserID() {
		return ErrNotYourTask
	}
	if !task.Deletable {
		return ErrTaskNotDeletable
	}
	return notFoundAs(s.Store.Tasks.Delete(ctx, taskID), ErrTaskNotFound)
}
