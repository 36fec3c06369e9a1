package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"gymconnect/backend/internal/domain"
	"gymconnect/backend/internal/metrics"
	"gymconnect/backend/internal/repository/memory"
	"gymconnect/backend/internal/service"
	"gymconnect/backend/internal/storage/mocks"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	mm     *metrics.Manager
	files  *mocks.MockFileStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	mm, registry := metrics.NewTestManagerAndRegistry()
	files := mocks.NewMockFileStorage(gomock.NewController(t))

	core := service.NewCore(store, mm)
	tokens := service.NewJWTIssuer("routes-secret", time.Hour)
	training := service.NewTrainingService(core)

	router := gin.New()
	err := SetupRoutes(router, RouterDeps{
		Services: Services{
			Auth:      service.NewAuthService(core, tokens),
			Profiles:  service.NewProfileService(core),
			Directory: service.NewDirectoryService(core),
			Training:  training,
			Reports:   service.NewReportService(core),
			Payments:  service.NewPaymentService(core),
			Events:    service.NewEventService(core),
			Tasks:     service.NewTaskService(core),
			Dashboard: service.NewDashboardService(core),
			Media:     service.NewMediaService(core, files, training),
		},
		Tokens:   tokens,
		Resolver: service.NewIdentityResolver(store),
		Metrics:  mm,
		Registry: registry,
	})
	require.NoError(t, err)
	return &testServer{t: t, router: router, mm: mm, files: files}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(s.router, req)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type account struct {
	token     string
	userID    string
	profileID string
}

// register signs up a user of the given role and reads back its profile id.
func (s *testServer) register(role, gymID string) account {
	s.t.Helper()
	body := map[string]any{
		"nome":  gofakeit.Name(),
		"email": gofakeit.Email(),
		"senha": "secret123",
	}
	if gymID != "" {
		body["academiaId"] = gymID
	}
	path := "/auth/" + role + "/cadastrar"
	switch role {
	case "personal":
		body["cref"] = gofakeit.Numerify("######-G/SP")
	case "academia":
		body["cnpj"] = gofakeit.Numerify("##.###.###/0001-##")
	}

	rr := s.do(http.MethodPost, path, "", body)
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	auth := decode[struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}](s.t, rr)

	rr = s.do(http.MethodGet, "/perfil", auth.Token, nil)
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	profile := decode[map[string]map[string]any](s.t, rr)
	return account{token: auth.Token, userID: auth.User.ID.Hex(), profileID: profile[role]["id"].(string)}
}

func TestRoutes_TrainingFlow(t *testing.T) {
	s := newTestServer(t)
	gym := s.register("academia", "")
	trainer := s.register("personal", gym.profileID)
	student := s.register("aluno", gym.profileID)

	rr := s.do(http.MethodPost, "/personal/adicionar-aluno/"+student.profileID, trainer.token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	plan := map[string]any{
		"nome": "Superiores",
		"exercicios": []map[string]any{
			{"name": "Supino reto", "sets": 4, "repsPerSet": 10, "time": 40, "restTime": 90},
			{"name": "Remada curvada", "sets": 4, "repsPerSet": 10, "time": 40, "restTime": 90},
		},
	}
	rr = s.do(http.MethodPost, "/personal/treinos/"+student.profileID+"/1", trainer.token, plan)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = s.do(http.MethodPost, "/personal/treinos/"+student.profileID+"/1", trainer.token, plan)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(http.MethodGet, "/aluno/treinos/1", student.token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	day := decode[domain.TrainingPlan](t, rr)
	require.Len(t, day.Exercises, 2)
	assert.Equal(t, "Supino reto", day.Exercises[0].Name)

	rr = s.do(http.MethodPatch, "/aluno/exercicios/"+day.Exercises[0].ID.Hex()+"/status", student.token,
		map[string]string{"status": string(domain.ExerciseCompleted)})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(http.MethodGet, "/aluno/dashboard-stats", student.token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"passos":500,"calorias":100,"progresso":50}`, rr.Body.String())

	// A second trainer cannot take over the student.
	other := s.register("personal", gym.profileID)
	rr = s.do(http.MethodPost, "/personal/adicionar-aluno/"+student.profileID, other.token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = s.do(http.MethodGet, "/personal/treinos/"+student.profileID+"/1", other.token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/personal/treinos", trainer.token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	roster := decode[[]StudentPlansResponse](t, rr)
	require.Len(t, roster, 1)
	assert.Len(t, roster[0].Plans, 1)
}

func TestRoutes_StudentReports(t *testing.T) {
	s := newTestServer(t)
	gym := s.register("academia", "")
	trainer := s.register("personal", gym.profileID)
	student := s.register("aluno", gym.profileID)
	outsider := s.register("personal", "")

	rr := s.do(http.MethodPost, "/personal/adicionar-aluno/"+student.profileID, trainer.token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, report := range []map[string]any{
		{"tipo": "peso", "valor": 80, "data": "5/3/2025"},
		{"tipo": "altura", "valor": 180, "data": "2025-03-05"},
	} {
		rr = s.do(http.MethodPost, "/personal/aluno/"+student.profileID+"/reports", trainer.token, report)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	path := "/aluno/" + student.profileID + "/relatorios"
	for _, reader := range []account{student, gym, trainer} {
		rr = s.do(http.MethodGet, path, reader.token, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		grouped := decode[map[domain.ReportType][]domain.Report](t, rr)
		assert.Len(t, grouped[domain.ReportWeight], 1)
		require.Len(t, grouped[domain.ReportBMI], 1)
		assert.Equal(t, 24.69, grouped[domain.ReportBMI][0].Value)
	}

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, outsider.token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/aluno/xyz/relatorios", student.token, nil).Code)
}

func TestRoutes_ErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	gym := s.register("academia", "")
	student := s.register("aluno", gym.profileID)
	trainer := s.register("personal", "")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"no token", http.MethodGet, "/aluno/treinos", "", nil, http.StatusUnauthorized},
		{"wrong role", http.MethodGet, "/academia/perfil", student.token, nil, http.StatusForbidden},
		{"bad weekday", http.MethodGet, "/aluno/treinos/7", student.token, nil, http.StatusBadRequest},
		{"malformed id", http.MethodPost, "/personal/adicionar-aluno/xyz", trainer.token, nil, http.StatusBadRequest},
		{"unknown student", http.MethodPost, "/personal/adicionar-aluno/" + gym.profileID, trainer.token, nil, http.StatusNotFound},
		{"missing body field", http.MethodPost, "/auth/entrar", "", map[string]string{"email": "a@b.com"}, http.StatusBadRequest},
		{"impossible date", http.MethodPost, "/tasks", student.token, map[string]any{"title": "x", "dueDate": "31/02/2025"}, http.StatusBadRequest},
		{"unknown gym on signup", http.MethodPost, "/auth/aluno/cadastrar", "", map[string]string{
			"nome": "Ana", "email": "ana@example.com", "senha": "secret123", "academiaId": trainer.profileID,
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestRoutes_LoginAndDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"nome": "Bruno", "email": "Bruno@Example.com", "senha": "secret123"}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/auth/aluno/cadastrar", "", body).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/auth/aluno/cadastrar", "", body).Code)

	rr := s.do(http.MethodPost, "/auth/entrar", "", map[string]string{"email": "bruno@example.com", "senha": "secret123"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, decode[AuthResponse](t, rr).Token)
	assert.NotContains(t, rr.Body.String(), "passwordHash")

	rr = s.do(http.MethodPost, "/auth/entrar", "", map[string]string{"email": "bruno@example.com", "senha": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_GymPaymentsAndEvents(t *testing.T) {
	s := newTestServer(t)
	gym := s.register("academia", "")
	student := s.register("aluno", gym.profileID)

	rr := s.do(http.MethodPost, "/academia/pagamentos", gym.token, map[string]any{
		"alunoId":        student.profileID,
		"valor":          129.9,
		"dataVencimento": "10/01/2099",
		"tipoPlano":      "mensal",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	payment := decode[domain.Payment](t, rr)
	assert.Equal(t, domain.PaymentPending, payment.Status)

	rr = s.do(http.MethodPatch, "/academia/pagamentos/"+payment.ID.Hex()+"/status", gym.token,
		map[string]string{"status": string(domain.PaymentPaid)})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(http.MethodGet, "/aluno/pagamentos", student.token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[PaymentHistoryResponse](t, rr)
	require.Len(t, history.History, 1)
	assert.Equal(t, domain.PaymentPaid, history.History[0].Status)

	rr = s.do(http.MethodPost, "/academia/eventos", gym.token, map[string]any{
		"titulo":     "Aulao de spinning",
		"dataInicio": "15/03/2099",
		"tipo":       string(domain.AudienceStudents),
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	event := decode[domain.Event](t, rr)

	rr = s.do(http.MethodGet, "/aluno/eventos?futuros=true", student.token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.Event](t, rr), 1)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/aluno/eventos?futuros=talvez", student.token, nil).Code)

	confirm := "/aluno/eventos/" + event.ID.Hex() + "/confirmar"
	rr = s.do(http.MethodGet, confirm, student.token, nil)
	assert.JSONEq(t, `{"confirmado":false,"presenca":null}`, rr.Body.String())
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, confirm, student.token, map[string]string{"comentario": "Vou!"}).Code)

	rr = s.do(http.MethodGet, "/academia/eventos/"+event.ID.Hex()+"/confirmacoes", gym.token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	attendances := decode[[]AttendanceEntryResponse](t, rr)
	require.Len(t, attendances, 1)
	assert.Equal(t, "Vou!", attendances[0].Comment)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, confirm, student.token, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/academia/eventos/"+event.ID.Hex(), gym.token, nil).Code)

	rr = s.do(http.MethodGet, "/academia/dashboard-stats", gym.token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[GymStatsResponse](t, rr)
	assert.Equal(t, 1, stats.TotalStudents)
	assert.Equal(t, 1, stats.Payments[domain.PaymentPaid].Count)
}

func TestRoutes_AvatarUpload(t *testing.T) {
	s := newTestServer(t)
	student := s.register("aluno", "")
	url := "https://cdn.example.com/avatars/new.png"
	s.files.EXPECT().
		Upload(gomock.Any(), domain.BucketAvatars, gomock.Any(), "image/png", gomock.Any(), int64(4)).
		Return(url, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+student.token)
	rr := serve(s.router, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, url, decode[AvatarResponse](t, rr).AvatarURL)

	// No file at all.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/upload/avatar", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req.Header.Set("Authorization", "Bearer "+student.token)
	assert.Equal(t, http.StatusBadRequest, serve(s.router, req).Code)
}

func TestRoutes_PingAndMetrics(t *testing.T) {
	s := newTestServer(t)
	rr := serve(s.router, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(s.router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "gymconnect_test_server_request")
	assert.Equal(t, float64(1), testutil.ToFloat64(s.mm.CounterRequests.WithLabelValues(http.MethodGet, "/ping", "200")))
}

func TestRoutes_Tasks(t *testing.T) {
	s := newTestServer(t)
	gym := s.register("academia", "")
	student := s.register("aluno", gym.profileID)

	rr := s.do(http.MethodGet, "/users-for-tasks", gym.token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	users := decode[[]domain.User](t, rr)
	require.Len(t, users, 1)
	assert.Equal(t, student.userID, users[0].ID.Hex())

	rr = s.do(http.MethodPost, "/tasks", gym.token, map[string]any{
		"title":      "Renovar matricula",
		"dueDate":    "01/01/2099",
		"assignedTo": student.userID,
		"deletable":  false,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	task := decode[TaskResponse](t, rr)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, student.userID, task.Assignee.ID.Hex())

	rr = s.do(http.MethodGet, "/tasks", student.token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]TaskResponse](t, rr), 1)

	rr = s.do(http.MethodPut, "/tasks/"+task.ID.Hex()+"/status", student.token,
		map[string]string{"status": string(domain.TaskCompleted)})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/tasks/"+task.ID.Hex(), gym.token, nil).Code)
}
