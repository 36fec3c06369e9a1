package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportInput creates a report, or updates the report with ID when set.
// An empty Date means today.
type ReportInput struct {
	ID    *primitive.ObjectID
	Type  domain.ReportType
	Value float64
	Date  string
	Note  string
}

// BMISample is one computed BMI value to store for a calendar day.
type BMISample struct {
	Date  string
	Value float64
	Note  string
}

// ReportEntry is a report together with the name of the trainer who wrote it.
type ReportEntry struct {
	domain.Report
	TrainerName string
}

type ReportService interface {
	TrainerReports(ctx context.Context, p domain.Principal, studentID primitive.ObjectID) (map[domain.ReportType][]domain.Report, error)
	UpsertReport(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, in ReportInput) (report *domain.Report, created bool, err error)
	SyncBMI(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, samples []BMISample) ([]domain.Report, error)

	MyReports(ctx context.Context, p domain.Principal) (map[domain.ReportType][]ReportEntry, error)
	// StudentReports is readable by the student, its gym and its trainer.
	// BMI is derived from weight and height when none is stored.
	StudentReports(ctx context.Context, p domain.Principal, studentID primitive.ObjectID) (map[domain.ReportType][]domain.Report, error)
}

type reportService struct {
	*Core
}

func NewReportService(core *Core) ReportService {
	return &reportService{Core: core}
}

// reportDate parses the calendar day of a report. Empty means today.
func (s *reportService) reportDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		y, m, d := s.Now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := domain.ParseCalendarDate(raw)
	if err != nil {
		return time.Time{}, invalidInput("data: %s", err)
	}
	return date, nil
}

func (s *reportService) linkedStudent(ctx context.Context, p domain.Principal, studentID primitive.ObjectID) (*domain.StudentProfile, error) {
	if _, err := RequireTrainer(p); err != nil {
		return nil, err
	}
	student, err := s.Graph.Student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.TrainerStudent(p, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *reportService) TrainerReports(ctx context.Context, p domain.Principal, studentID primitive.ObjectID) (map[domain.ReportType][]domain.Report, error) {
	student, err := s.linkedStudent(ctx, p, studentID)
	if err != nil {
		return nil, err
	}
	reports, err := s.Store.Reports.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	return domain.GroupReportsByType(reports), nil
}

func (s *reportService) UpsertReport(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, in ReportInput) (*domain.Report, bool, error) {
	if !in.Type.Valid() {
		return nil, false, invalidInput("unknown report type %q", in.Type)
	}
	date, err := s.reportDate(in.Date)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.linkedStudent(ctx, p, studentID); err != nil {
		return nil, false, err
	}
	trainerID := p.(*domain.TrainerPrincipal).Trainer.ID

	report := &domain.Report{
		StudentID: studentID,
		TrainerID: domain.IDRef(trainerID),
		Type:      in.Type,
		Value:     in.Value,
		Date:      date,
		Note:      in.Note,
	}
	err = s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if in.ID == nil {
			_, err := s.Store.Reports.Create(ctx, report)
			return err
		}
		existing, err := s.Store.Reports.GetByID(ctx, *in.ID)
		if err != nil {
			return notFoundAs(err, ErrReportNotFound)
		}
		if existing.StudentID != studentID {
			return ErrReportNotFound
		}
		report.ID = existing.ID
		report.CreatedAt = existing.CreatedAt
		return s.Store.Reports.Update(ctx, report)
	})
	if err != nil {
		return nil, false, err
	}
	return report, in.ID == nil, nil
}

// SyncBMI stores one BMI report per calendar day, updating the day's report
// when it already exists. Either every sample is stored or none is.
func (s *reportService) SyncBMI(ctx context.Context, p domain.Principal, studentID primitive.ObjectID, samples []BMISample) ([]domain.Report, error) {
	if len(samples) == 0 {
		return nil, invalidInput("at least one BMI sample is required")
	}
	days := make([]domain.Report, len(samples))
	for i, sample := range samples {
		date, err := domain.ParseCalendarDate(sample.Date)
		if err != nil {
			return nil, invalidInput("reports[%d].data: %s", i, err)
		}
		note := sample.Note
		if note == "" {
			note = domain.DefaultBMINote
		}
		days[i] = domain.Report{Type: domain.ReportBMI, Value: sample.Value, Date: date, Note: note}
	}
	if _, err := s.linkedStudent(ctx, p, studentID); err != nil {
		return nil, err
	}
	trainerID := p.(*domain.TrainerPrincipal).Trainer.ID

	saved := make([]domain.Report, 0, len(days))
	err := s.Store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		saved = saved[:0]
		for _, day := range days {
			report := day
			report.StudentID = studentID
			report.TrainerID = domain.IDRef(trainerID)

			existing, err := s.Store.Reports.GetByStudentTypeAndDate(ctx, studentID, domain.ReportBMI, day.Date)
			switch {
			case err == nil:
				report.ID = existing.ID
				report.CreatedAt = existing.CreatedAt
				err = s.Store.Reports.Update(ctx, &report)
			case errors.Is(err, repository.ErrNotFound):
				_, err = s.Store.Reports.Create(ctx, &report)
			}
			if err != nil {
				return err
			}
			saved = append(saved, report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *reportService) MyReports(ctx context.Context, p domain.Principal) (map[domain.ReportType][]ReportEntry, error) {
	sp, err := RequireStudent(p)
	if err != nil {
		return nil, err
	}
	reports, err := s.Store.Reports.ListByStudent(ctx, sp.Student.ID)
	if err != nil {
		return nil, err
	}

	names, err := s.trainerNames(ctx, reports)
	if err != nil {
		return nil, err
	}
	grouped := make(map[domain.ReportType][]ReportEntry)
	for _, r := range reports {
		entry := ReportEntry{Report: r}
		if r.TrainerID != nil {
			entry.TrainerName = names[*r.TrainerID]
		}
		grouped[r.Type] = append(grouped[r.Type], entry)
	}
	return grouped, nil
}

// trainerNames maps the trainer profiles referenced by reports to user names.
func (s *reportService) trainerNames(ctx context.Context, reports []domain.Report) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string)
	for _, r := range reports {
		if r.TrainerID == nil {
			continue
		}
		if _, seen := names[*r.TrainerID]; seen {
			continue
		}
		names[*r.TrainerID] = ""
		trainer, err := s.Store.Trainers.GetByID(ctx, *r.TrainerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		user, err := s.Store.Users.GetByID(ctx, trainer.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		names[*r.TrainerID] = user.Name
	}
	return names, nil
}

func (s *reportService) StudentReports(ctx context.Context, p domain.Principal, studentID primitive.ObjectID) (map[domain.ReportType][]domain.Report, error) {
	student, err := s.Graph.Student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.StudentReports(p, student); err != nil {
		return nil, err
	}
	reports, err := s.Store.Reports.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	grouped := domain.GroupReportsByType(reports)
	if len(grouped[domain.ReportBMI]) == 0 {
		if derived := domain.DeriveBMI(grouped[domain.ReportWeight], grouped[domain.ReportHeight]); len(derived) > 0 {
			grouped[domain.ReportBMI] = derived
		}
	}
	return grouped, nil
}
