package service

import (
	"context"
	"math"
	"strings"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weight trends reported for a student.
const (
	TrendUp     = "aumento"
	TrendDown   = "reducao"
	TrendSteady = "estavel"
)

// StudentStats summarizes the completed exercises of a student.
type StudentStats struct {
	Steps    int
	Calories int
	Progress int // Percent of exercises completed
}

type TrainerStats struct {
	TotalStudents  int
	PlansThisWeek  int64
	SessionsToday  int
	MonthlyRevenue float64
}

type StudentProgress struct {
	UserID       primitive.ObjectID
	Name         string
	Goal         string
	ImageURL     string
	Progress     int
	WeightTrend  string
	LastActivity *time.Time
}

// PaymentTotals aggregates the payments of one status.
type PaymentTotals struct {
	Count  int
	Amount float64
}

type GymStats struct {
	TotalStudents  int
	TotalTrainers  int
	Payments       map[domain.PaymentStatus]PaymentTotals
	UpcomingEvents int
}

type DashboardService interface {
	StudentStats(ctx context.Context, p domain.Principal) (*StudentStats, error)
	TrainerStats(ctx context.Context, p domain.Principal) (*TrainerStats, error)
	StudentsProgress(ctx context.Context, p domain.Principal) ([]StudentProgress, error)
	GymStats(ctx context.Context, p domain.Principal) (*GymStats, error)
}

type dashboardService struct {
	*Core
}

func NewDashboardService(core *Core) DashboardService {
	return &dashboardService{Core: core}
}

func isCardio(name string) bool {
	name = strings.ToLower(name)
	for _, kw := range []string{"cardio", "corrida", "esteira"} {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// completion returns the percentage of completed exercises, 0 when there are none.
func completion(exercises []domain.Exercise) int {
	if len(exercises) == 0 {
		return 0
	}
	done := 0
	for _, e := range exercises {
		if e.Status == domain.ExerciseCompleted {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(exercises)) * 100))
}

func (s *dashboardService) StudentStats(ctx context.Context, p domain.Principal) (*StudentStats, error) {
	sp, err := RequireStudent(p)
	if err != nil {
		return nil, err
	}
	exercises, err := s.Store.Exercises.ListByStudent(ctx, sp.Student.ID)
	if err != nil {
		return nil, err
	}

	stats := &StudentStats{Progress: completion(exercises)}
	for _, e := range exercises {
		if e.Status != domain.ExerciseCompleted {
			continue
		}
		if isCardio(e.Name) {
			stats.Steps += 2000
			stats.Calories += 200
		} else {
			stats.Steps += 500
			stats.Calories += 100
		}
	}
	return stats, nil
}

// weekBounds returns Sunday 00:00 and the following Sunday 00:00 around now.
func weekBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 7)
}

func (s *dashboardService) TrainerStats(ctx context.Context, p domain.Principal) (*TrainerStats, error) {
	tp, err := RequireTrainer(p)
	if err != nil {
		return nil, err
	}
	students, err := s.Store.Students.ListByTrainer(ctx, tp.Trainer.ID)
	if err != nil {
		return nil, err
	}
	from, to := weekBounds(s.Now())
	plans, err := s.Store.Plans.CountByTrainerCreatedBetween(ctx, tp.Trainer.ID, from, to)
	if err != nil {
		return nil, err
	}
	// SessionsToday stays 0 until appointments exist.
	return &TrainerStats{
		TotalStudents:  len(students),
		PlansThisWeek:  plans,
		MonthlyRevenue: math.Round(tp.Trainer.PricePerHour * float64(len(students)) * 4),
	}, nil
}

// weightTrend compares the two newest weight samples. reports are newest first.
func weightTrend(reports []domain.Report) string {
	var weights []float64
	for _, r := range reports {
		if r.Type == domain.ReportWeight {
			weights = append(weights, r.Value)
			if len(weights) == 2 {
				break
			}
		}
	}
	if len(weights) < 2 {
		return TrendSteady
	}
	switch {
	case weights[0] > weights[1]:
		return TrendUp
	case weights[0] < weights[1]:
		return TrendDown
	}
	return TrendSteady
}

func lastActivity(exercises []domain.Exercise) *time.Time {
	var last *time.Time
	for i := range exercises {
		e := &exercises[i]
		if e.Status != domain.ExerciseCompleted {
			continue
		}
		if last == nil || e.UpdatedAt.After(*last) {
			t := e.UpdatedAt
			last = &t
		}
	}
	return last
}

func (s *dashboardService) StudentsProgress(ctx context.Context, p domain.Principal) ([]StudentProgress, error) {
	tp, err := RequireTrainer(p)
	if err != nil {
		return nil, err
	}
	students, err := s.Store.Students.ListByTrainer(ctx, tp.Trainer.ID)
	if err != nil {
		return nil, err
	}
	cards, err := s.studentCards(ctx, students)
	if err != nil {
		return nil, err
	}

	out := make([]StudentProgress, 0, len(cards))
	for _, card := range cards {
		exercises, err := s.Store.Exercises.ListByStudent(ctx, card.Student.ID)
		if err != nil {
			return nil, err
		}
		reports, err := s.Store.Reports.ListByStudent(ctx, card.Student.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, StudentProgress{
			UserID:       card.Student.UserID,
			Name:         card.User.Name,
			Goal:         card.Student.Goal,
			ImageURL:     card.User.AvatarURL,
			Progress:     completion(exercises),
			WeightTrend:  weightTrend(reports),
			LastActivity: lastActivity(exercises),
		})
	}
	return out, nil
}

func (s *dashboardService) GymStats(ctx context.Context, p domain.Principal) (*GymStats, error) {
	gp, err := RequireGym(p)
	if err != nil {
		return nil, err
	}
	gymID := gp.Gym.ID

	students, err := s.Store.Students.ListByGym(ctx, gymID)
	if err != nil {
		return nil, err
	}
	trainers, err := s.Store.Trainers.List(ctx, &gymID)
	if err != nil {
		return nil, err
	}
	payments, err := s.Store.Payments.ListByGym(ctx, gymID)
	if err != nil {
		return nil, err
	}
	upcoming := true
	events, err := s.Store.Events.ListByGym(ctx, gymID, repository.EventFilter{Upcoming: &upcoming, Now: s.Now()})
	if err != nil {
		return nil, err
	}

	totals := map[domain.PaymentStatus]PaymentTotals{
		domain.PaymentPaid:    {},
		domain.PaymentPending: {},
		domain.PaymentOverdue: {},
	}
	for _, pay := range payments {
		t := totals[pay.Status]
		t.Count++
		t.Amount += pay.Amount
		totals[pay.Status] = t
	}
	return &GymStats{
		TotalStudents:  len(students),
		TotalTrainers:  len(trainers),
		Payments:       totals,
		UpcomingEvents: len(events),
	}, nil
}
