package handlers

import (
	"context"
	"net/http"

	"firstcrack/internal/models"
	"firstcrack/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockBrew struct {
	startRes    service.StartResult
	startErr    error
	stopErr     error
	lastParams  service.BrewParams
	lastStopped string
	startCalled int
	stopCalled  int
}

func (m *mockBrew) Start(ctx context.Context, p service.BrewParams) (service.StartResult, error) {
	m.startCalled++
	m.lastParams = p
	return m.startRes, m.startErr
}
func (m *mockBrew) Stop(ctx context.Context, brewID string) error {
	m.stopCalled++
	m.lastStopped = brewID
	return m.stopErr
}

type mockMonitoring struct {
	status    models.BrewStatus
	statusErr error
}

func (m *mockMonitoring) Status(ctx context.Context, brewID string) (models.BrewStatus, error) {
	return m.status, m.statusErr
}

type mockEventLog struct {
	events     []models.NotificationEvent
	listErr    error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.NotificationEvent, error) {
	m.lastFilter = f
	return m.events, m.listErr
}

type mockInteractions struct {
	nav      models.NavigationEvent
	routeErr error
	lastRaw  models.InteractionEvent
	calls    int
}

func (m *mockInteractions) HandleInteraction(ctx context.Context, raw models.InteractionEvent) (models.NavigationEvent, error) {
	m.calls++
	m.lastRaw = raw
	return m.nav, m.routeErr
}

// newTestRouter wires a full router around the given service aggregate.
func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

// authHeader builds a Bearer header accepted by the mock auth.
func authHeader(token string) http.Header {
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+token)
	return hdr
}
