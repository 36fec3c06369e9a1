package api

import (
	"net/http"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/metrics"
	"gymconnect/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services groups the application services the HTTP layer depends on.
type Services struct {
	Auth      service.AuthService
	Profiles  service.ProfileService
	Directory service.DirectoryService
	Training  service.TrainingService
	Reports   service.ReportService
	Payments  service.PaymentService
	Events    service.EventService
	Tasks     service.TaskService
	Dashboard service.DashboardService
	Media     service.MediaService
}

// RouterDeps is everything SetupRoutes wires into the router.
type RouterDeps struct {
	Services Services
	Tokens   service.TokenIssuer
	Resolver PrincipalResolver

	Metrics  *metrics.Manager
	Registry *prometheus.Registry // Served on /metrics when set

	// Limiter guards the auth routes; nil disables rate limiting.
	Limiter            RequestRateLimiter
	AuthLimitPerMinute int
}

func SetupRoutes(router *gin.Engine, deps RouterDeps) error {
	if err := RegisterValidators(); err != nil {
		return err
	}
	svc := deps.Services

	authHandler := NewAuthHandler(svc.Auth)
	studentHandler := NewStudentHandler(svc.Profiles, svc.Directory, svc.Training, svc.Reports, svc.Payments, svc.Dashboard)
	trainerHandler := NewTrainerHandler(svc.Profiles, svc.Directory, svc.Training, svc.Reports, svc.Dashboard)
	gymHandler := NewGymHandler(svc.Profiles, svc.Payments, svc.Dashboard)
	eventHandler := NewEventHandler(svc.Events)
	commonHandler := NewCommonHandler(svc.Profiles, svc.Directory, svc.Tasks)
	uploadHandler := NewUploadHandler(svc.Media)

	router.Use(PanicRecovery(deps.Metrics), RequestLogger())
	if deps.Metrics != nil {
		router.Use(RequestMetrics(deps.Metrics))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		limit := func(route string) gin.HandlerFunc {
			return RateLimit(deps.Limiter, route, deps.AuthLimitPerMinute, deps.Metrics)
		}
		{
			authGroup.POST("/entrar", limit("login"), authHandler.Login)
			authGroup.POST("/aluno/cadastrar", limit("register"), authHandler.RegisterStudent)
			authGroup.POST("/personal/cadastrar", limit("register"), authHandler.RegisterTrainer)
			authGroup.POST("/academia/cadastrar", limit("register"), authHandler.RegisterGym)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(deps.Tokens, deps.Resolver))

	onlyStudent := RoleMiddleware(domain.RoleStudent)
	onlyTrainer := RoleMiddleware(domain.RoleTrainer)
	onlyGym := RoleMiddleware(domain.RoleGym)

	// --- Student Routes ---
	studentGroup := protected.Group("/aluno")
	{
		studentGroup.GET("/preferencias", onlyStudent, studentHandler.Preferences)
		studentGroup.POST("/preferencias", RoleMiddleware(domain.RoleStudent, domain.RoleGym), studentHandler.SavePreferences)
		studentGroup.PUT("/editar-perfil", onlyStudent, studentHandler.EditProfile)

		studentGroup.GET("/treinos", onlyStudent, studentHandler.Week)
		studentGroup.GET("/treinos/:diaSemana", onlyStudent, studentHandler.Day)
		studentGroup.PATCH("/exercicios/:exercicioId/status", onlyStudent, studentHandler.SetExerciseStatus)

		studentGroup.GET("/meus-reports", onlyStudent, studentHandler.MyReports)
		// Any role; the service decides who may read.
		studentGroup.GET("/:alunoId/relatorios", studentHandler.StudentReports)

		studentGroup.GET("/eventos", onlyStudent, eventHandler.MemberEvents)
		studentGroup.GET("/eventos/:eventoId/confirmar", onlyStudent, eventHandler.AttendanceStatus)
		studentGroup.POST("/eventos/:eventoId/confirmar", onlyStudent, eventHandler.Confirm)
		studentGroup.DELETE("/eventos/:eventoId/confirmar", onlyStudent, eventHandler.Cancel)

		studentGroup.GET("/dashboard-stats", onlyStudent, studentHandler.DashboardStats)
		studentGroup.GET("/personal-responsavel", onlyStudent, studentHandler.ResponsibleTrainer)
		studentGroup.GET("/pagamentos", onlyStudent, studentHandler.Payments)
		studentGroup.GET("/pagamentos/resumo", onlyStudent, studentHandler.PaymentSummary)
	}

	// --- Trainer Routes ---
	trainerGroup := protected.Group("/personal")
	{
		trainerGroup.POST("/preferencias", onlyTrainer, trainerHandler.SavePreferences)
		trainerGroup.PUT("/editar-perfil", onlyTrainer, trainerHandler.EditProfile)
		trainerGroup.GET("/detalhes/:personalId", trainerHandler.Details)

		trainerGroup.GET("/meus-alunos", onlyTrainer, trainerHandler.MyStudents)
		trainerGroup.POST("/adicionar-aluno/:alunoId", onlyTrainer, trainerHandler.AddStudent)

		trainerGroup.GET("/treinos", onlyTrainer, trainerHandler.Plans)
		trainerGroup.GET("/treinos/:alunoId/:diaSemana", onlyTrainer, trainerHandler.StudentPlan)
		trainerGroup.POST("/treinos/:alunoId/:diaSemana", onlyTrainer, trainerHandler.ReplacePlan)
		trainerGroup.DELETE("/treinos/:alunoId/:diaSemana", onlyTrainer, trainerHandler.DeletePlan)
		trainerGroup.POST("/treino/:treinoId/exercicios", onlyTrainer, trainerHandler.AddExercise)
		trainerGroup.PUT("/exercicios/:exercicioId", onlyTrainer, trainerHandler.UpdateExercise)
		trainerGroup.DELETE("/exercicios/:exercicioId", onlyTrainer, trainerHandler.DeleteExercise)

		trainerGroup.GET("/aluno/:alunoId/reports", onlyTrainer, trainerHandler.StudentReports)
		trainerGroup.POST("/aluno/:alunoId/reports", onlyTrainer, trainerHandler.UpsertReport)
		trainerGroup.POST("/aluno/:alunoId/sync-imc", onlyTrainer, trainerHandler.SyncBMI)

		trainerGroup.GET("/eventos", onlyTrainer, eventHandler.MemberEvents)
		trainerGroup.GET("/eventos/:eventoId/confirmar", onlyTrainer, eventHandler.AttendanceStatus)
		trainerGroup.POST("/eventos/:eventoId/confirmar", onlyTrainer, eventHandler.Confirm)
		trainerGroup.DELETE("/eventos/:eventoId/confirmar", onlyTrainer, eventHandler.Cancel)

		trainerGroup.GET("/dashboard-stats", onlyTrainer, trainerHandler.DashboardStats)
		trainerGroup.GET("/alunos-progresso", onlyTrainer, trainerHandler.StudentsProgress)
	}

	// --- Gym Routes ---
	gymGroup := protected.Group("/academia")
	{
		gymGroup.GET("/perfil", onlyGym, gymHandler.Profile)
		gymGroup.POST("/perfil", onlyGym, gymHandler.SaveProfile)
		gymGroup.GET("/detalhes/:academiaId", gymHandler.Details)

		gymGroup.GET("/eventos", onlyGym, eventHandler.GymEvents)
		gymGroup.POST("/eventos", onlyGym, eventHandler.Create)
		gymGroup.PUT("/eventos/:eventoId", onlyGym, eventHandler.Update)
		gymGroup.DELETE("/eventos/:eventoId", onlyGym, eventHandler.Delete)
		gymGroup.GET("/eventos/:eventoId/confirmacoes", onlyGym, eventHandler.Attendances)

		gymGroup.GET("/pagamentos", onlyGym, gymHandler.Payments)
		gymGroup.POST("/pagamentos", onlyGym, gymHandler.RecordPayment)
		gymGroup.PATCH("/pagamentos/:pagamentoId/status", onlyGym, gymHandler.UpdatePaymentStatus)

		gymGroup.GET("/dashboard-stats", onlyGym, gymHandler.DashboardStats)
	}

	// --- Shared Routes ---
	protected.GET("/perfil", commonHandler.Profile)
	protected.GET("/preferences", commonHandler.Preferences)
	protected.POST("/preferences", commonHandler.SavePreferences)

	protected.GET("/academias/listar", commonHandler.ListGyms)
	protected.GET("/personais/listar", commonHandler.ListTrainers)
	protected.GET("/alunos/listar", RoleMiddleware(domain.RoleGym, domain.RoleTrainer), commonHandler.ListStudents)
	protected.POST("/associar-aluno-academia", onlyGym, commonHandler.AssociateStudentWithGym)
	protected.GET("/buscar-aluno-email", RoleMiddleware(domain.RoleGym, domain.RoleTrainer), commonHandler.FindStudentByEmail)

	protected.GET("/tasks", commonHandler.Tasks)
	protected.POST("/tasks", commonHandler.CreateTask)
	protected.PUT("/tasks/:id/status", commonHandler.UpdateTaskStatus)
	protected.DELETE("/tasks/:id", commonHandler.DeleteTask)
	protected.GET("/users-for-tasks", commonHandler.UsersForTasks)

	// --- Uploads ---
	protected.POST("/upload/avatar", uploadHandler.OwnAvatar)
	protected.POST("/upload/avatar/aluno/:alunoId", onlyGym, uploadHandler.StudentAvatar)
	protected.POST("/upload/avatar/personal/:personalId", onlyGym, uploadHandler.TrainerAvatar)
	protected.POST("/upload/exercise-media", onlyTrainer, uploadHandler.ExerciseMedia)
	protected.POST("/exercicios/:exercicioId/youtube-video", onlyTrainer, uploadHandler.ExerciseYouTube)
	protected.POST("/exercicio-com-midia", onlyTrainer, uploadHandler.ExerciseWithMedia)

	return nil
}
