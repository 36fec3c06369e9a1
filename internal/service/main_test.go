package service_test

import (
	"context"
	"testing"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/metrics"
	"gymconnect/backend/internal/repository"
	"gymconnect/backend/internal/repository/memory"
	"gymconnect/backend/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixture wires every service on top of an in-memory store.
type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *repository.Store
	core     *service.Core
	metrics  *metrics.Manager
	tokens   service.TokenIssuer
	resolver *service.IdentityResolver

	auth      service.AuthService
	profiles  service.ProfileService
	directory service.DirectoryService
	training  service.TrainingService
	reports   service.ReportService
	payments  service.PaymentService
	events    service.EventService
	tasks     service.TaskService
	dashboard service.DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	mm := metrics.NewTestManager()
	core := service.NewCore(store, mm)
	tokens := service.NewJWTIssuer("test-secret", time.Hour)
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     store,
		core:      core,
		metrics:   mm,
		tokens:    tokens,
		resolver:  service.NewIdentityResolver(store),
		auth:      service.NewAuthService(core, tokens),
		profiles:  service.NewProfileService(core),
		directory: service.NewDirectoryService(core),
		training:  service.NewTrainingService(core),
		reports:   service.NewReportService(core),
		payments:  service.NewPaymentService(core),
		events:    service.NewEventService(core),
		tasks:     service.NewTaskService(core),
		dashboard: service.NewDashboardService(core),
	}
}

func (f *fixture) credentials() service.Credentials {
	return service.Credentials{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 10),
	}
}

// principal resolves the current state of a user.
func (f *fixture) principal(userID primitive.ObjectID) domain.Principal {
	f.t.Helper()
	p, err := f.resolver.Resolve(f.ctx, userID)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) gym() *domain.GymPrincipal {
	f.t.Helper()
	res, err := f.auth.RegisterGym(f.ctx, service.RegisterGymInput{
		Credentials: f.credentials(),
		TaxID:       gofakeit.Numerify("##.###.###/0001-##"),
	})
	require.NoError(f.t, err)
	return f.principal(res.User.ID).(*domain.GymPrincipal)
}

func (f *fixture) trainer(gymID *primitive.ObjectID) *domain.TrainerPrincipal {
	f.t.Helper()
	res, err := f.auth.RegisterTrainer(f.ctx, service.RegisterTrainerInput{
		Credentials: f.credentials(),
		LicenseID:   gofakeit.Numerify("######-G/SP"),
		GymID:       gymID,
	})
	require.NoError(f.t, err)
	return f.principal(res.User.ID).(*domain.TrainerPrincipal)
}

func (f *fixture) student(gymID *primitive.ObjectID) *domain.StudentPrincipal {
	f.t.Helper()
	res, err := f.auth.RegisterStudent(f.ctx, service.RegisterStudentInput{
		Credentials: f.credentials(),
		GymID:       gymID,
	})
	require.NoError(f.t, err)
	return f.principal(res.User.ID).(*domain.StudentPrincipal)
}

// link binds student to trainer and returns the refreshed student principal.
func (f *fixture) link(trainer *domain.TrainerPrincipal, student *domain.StudentPrincipal) *domain.StudentPrincipal {
	f.t.Helper()
	_, err := f.directory.AddStudent(f.ctx, trainer, student.Student.ID)
	require.NoError(f.t, err)
	return f.principal(student.User.ID).(*domain.StudentPrincipal)
}

func (f *fixture) storedStudent(id primitive.ObjectID) *domain.StudentProfile {
	f.t.Helper()
	st, err := f.store.Students.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return st
}

func exercises(names ...string) []service.ExerciseInput {
	out := make([]service.ExerciseInput, len(names))
	for i, n := range names {
		out[i] = service.ExerciseInput{Name: n, Sets: 3, RepsPerSet: 12, WorkSeconds: 45, RestSeconds: 60}
	}
	return out
}

func exerciseNames(list []domain.Exercise) []string {
	names := make([]string, len(list))
	for i, e := range list {
		names[i] = e.Name
	}
	return names
}
