package api

import (
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Response DTOs ---
// Domain records carry their own JSON tags. The types below add what the
// records keep out of JSON (birth dates) and join records with their users.

type StudentProfileResponse struct {
	*domain.StudentProfile
	BirthDate string `json:"dataNascimento,omitempty"` // DD/MM/YYYY
}

type TrainerProfileResponse struct {
	*domain.TrainerProfile
	BirthDate string `json:"dataNascimento,omitempty"` // DD/MM/YYYY
}

func formatBirthDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return domain.FormatCalendarDate(*t)
}

func MapStudentProfile(p *domain.StudentProfile) *StudentProfileResponse {
	if p == nil {
		return nil
	}
	return &StudentProfileResponse{StudentProfile: p, BirthDate: formatBirthDate(p.BirthDate)}
}

func MapTrainerProfile(p *domain.TrainerProfile) *TrainerProfileResponse {
	if p == nil {
		return nil
	}
	return &TrainerProfileResponse{TrainerProfile: p, BirthDate: formatBirthDate(p.BirthDate)}
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type GymCardResponse struct {
	Gym  domain.GymProfile `json:"academia"`
	User domain.User       `json:"user"`
}

type TrainerCardResponse struct {
	Trainer *TrainerProfileResponse `json:"personal"`
	User    domain.User             `json:"user"`
}

type StudentCardResponse struct {
	Student *StudentProfileResponse `json:"aluno"`
	User    domain.User             `json:"user"`
}

func MapGymCards(cards []service.GymCard) []GymCardResponse {
	out := make([]GymCardResponse, len(cards))
	for i, card := range cards {
		out[i] = GymCardResponse{Gym: card.Gym, User: card.User}
	}
	return out
}

func MapTrainerCards(cards []service.TrainerCard) []TrainerCardResponse {
	out := make([]TrainerCardResponse, len(cards))
	for i := range cards {
		out[i] = TrainerCardResponse{Trainer: MapTrainerProfile(&cards[i].Trainer), User: cards[i].User}
	}
	return out
}

func MapStudentCard(card *service.StudentCard) StudentCardResponse {
	return StudentCardResponse{Student: MapStudentProfile(&card.Student), User: card.User}
}

func MapStudentCards(cards []service.StudentCard) []StudentCardResponse {
	out := make([]StudentCardResponse, len(cards))
	for i := range cards {
		out[i] = MapStudentCard(&cards[i])
	}
	return out
}

type GymDetailsResponse struct {
	Gym  *domain.GymProfile `json:"academia"`
	User *domain.User       `json:"user"`
}

type TrainerDetailsResponse struct {
	Trainer *TrainerProfileResponse `json:"personal"`
	User    *domain.User            `json:"user"`
}

type StudentDetailsResponse struct {
	Student *StudentProfileResponse `json:"aluno"`
	User    *domain.User            `json:"user"`
}

func MapTrainerDetails(d *service.TrainerDetails) TrainerDetailsResponse {
	return TrainerDetailsResponse{Trainer: MapTrainerProfile(d.Trainer), User: d.User}
}

// StudentPlansResponse is one roster entry of the trainer's plan overview.
type StudentPlansResponse struct {
	Student *StudentProfileResponse `json:"aluno"`
	User    domain.User             `json:"user"`
	Plans   []domain.TrainingPlan   `json:"treinos"`
}

func MapStudentPlans(entries []service.StudentPlans) []StudentPlansResponse {
	out := make([]StudentPlansResponse, len(entries))
	for i := range entries {
		out[i] = StudentPlansResponse{
			Student: MapStudentProfile(&entries[i].Student),
			User:    entries[i].User,
			Plans:   entries[i].Plans,
		}
	}
	return out
}

type ReportEntryResponse struct {
	domain.Report
	TrainerName string `json:"personalNome,omitempty"`
}

func MapReportEntries(grouped map[domain.ReportType][]service.ReportEntry) map[domain.ReportType][]ReportEntryResponse {
	out := make(map[domain.ReportType][]ReportEntryResponse, len(grouped))
	for t, entries := range grouped {
		list := make([]ReportEntryResponse, len(entries))
		for i, e := range entries {
			list[i] = ReportEntryResponse{Report: e.Report, TrainerName: e.TrainerName}
		}
		out[t] = list
	}
	return out
}

type PaymentHistoryResponse struct {
	Summary *domain.PaymentSummary `json:"resumo"`
	History []domain.Payment       `json:"historico"`
}

type AttendanceEntryResponse struct {
	domain.EventAttendance
	User domain.User `json:"user"`
}

func MapAttendances(entries []service.AttendanceEntry) []AttendanceEntryResponse {
	out := make([]AttendanceEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AttendanceEntryResponse{EventAttendance: e.EventAttendance, User: e.User}
	}
	return out
}

type TaskResponse struct {
	domain.Task
	Creator  *domain.User `json:"creator,omitempty"`
	Assignee *domain.User `json:"assignee,omitempty"`
}

func MapTask(e *service.TaskEntry) TaskResponse {
	return TaskResponse{Task: e.Task, Creator: e.Creator, Assignee: e.Assignee}
}

func MapTasks(entries []service.TaskEntry) []TaskResponse {
	out := make([]TaskResponse, len(entries))
	for i := range entries {
		out[i] = MapTask(&entries[i])
	}
	return out
}

type StudentStatsResponse struct {
	Steps    int `json:"passos"`
	Calories int `json:"calorias"`
	Progress int `json:"progresso"`
}

type TrainerStatsResponse struct {
	TotalStudents  int     `json:"totalAlunos"`
	PlansThisWeek  int64   `json:"treinosSemana"`
	SessionsToday  int     `json:"sessoesHoje"`
	MonthlyRevenue float64 `json:"faturamentoMensal"`
}

type StudentProgressResponse struct {
	UserID       primitive.ObjectID `json:"id"`
	Name         string             `json:"nome"`
	Goal         string             `json:"objetivo,omitempty"`
	ImageURL     string             `json:"imagem,omitempty"`
	Progress     int                `json:"progresso"`
	WeightTrend  string             `json:"tendenciaPeso"`
	LastActivity *time.Time         `json:"ultimaAtividade,omitempty"`
}

func MapStudentsProgress(list []service.StudentProgress) []StudentProgressResponse {
	out := make([]StudentProgressResponse, len(list))
	for i, p := range list {
		out[i] = StudentProgressResponse(p)
	}
	return out
}

type PaymentTotalsResponse struct {
	Count  int     `json:"quantidade"`
	Amount float64 `json:"valor"`
}

type GymStatsResponse struct {
	TotalStudents  int                                            `json:"totalAlunos"`
	TotalTrainers  int                                            `json:"totalPersonais"`
	Payments       map[domain.PaymentStatus]PaymentTotalsResponse `json:"pagamentos"`
	UpcomingEvents int                                            `json:"proximosEventos"`
}

func MapGymStats(s *service.GymStats) GymStatsResponse {
	payments := make(map[domain.PaymentStatus]PaymentTotalsResponse, len(s.Payments))
	for status, t := range s.Payments {
		payments[status] = PaymentTotalsResponse(t)
	}
	return GymStatsResponse{
		TotalStudents:  s.TotalStudents,
		TotalTrainers:  s.TotalTrainers,
		Payments:       payments,
		UpcomingEvents: s.UpcomingEvents,
	}
}
