package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hustle/internal/auth"
	"hustle/internal/catalog"
	"hustle/internal/domain"
	"hustle/internal/handler"
	"hustle/internal/pricing"
	"hustle/internal/repository/memory"
	"hustle/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWithRedis(t, nil)
}

func newTestRouterWithRedis(t *testing.T, client *redis.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	cat, err := catalog.Default()
	require.NoError(t, err)
	estimator := pricing.NewEstimator(domain.DefaultFareConfig(), nil)

	notifications := service.NewNotificationService(memory.NewNotificationRepository(), logger)
	wallets := service.NewWalletService(memory.NewWalletRepository(), 5000, logger)
	runners := service.NewRunnerService(memory.NewRunnerRepository(), nil, logger)
	authService := service.NewAuthService(memory.NewUserRepository(), wallets,
		auth.NewTokenManager("test-secret", time.Hour), nil, nil, time.Hour, logger)
	instant := service.NewInstantTaskService(memory.NewInstantTaskRepository(), cat, estimator, wallets, runners, notifications, logger)
	custom := service.NewCustomTaskService(memory.NewCustomTaskRepository(), wallets, runners, notifications, nil, time.Second, logger)

	return NewRouter(RouterDeps{
		AuthHandler:         handler.NewAuthHandler(authService),
		FareHandler:         handler.NewFareHandler(estimator),
		WalletHandler:       handler.NewWalletHandler(wallets),
		CatalogHandler:      handler.NewCatalogHandler(cat),
		RunnerHandler:       handler.NewRunnerHandler(runners, 10),
		InstantTaskHandler:  handler.NewInstantTaskHandler(instant, runners),
		CustomTaskHandler:   handler.NewCustomTaskHandler(custom, runners),
		NotificationHandler: handler.NewNotificationHandler(notifications),
		Sessions:            authService,
		RedisClient:         client,
		Logger:              logger,
	})
}

func serve(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	return serveWithHeaders(router, method, path, body, token, nil)
}

func serveWithHeaders(router *gin.Engine, method, path, body, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"catalog items", http.MethodGet, "/v1/catalog/items", ""},
		{"catalog vendor", http.MethodGet, "/v1/catalog/vendors/vendor_1", ""},
		{"runners", http.MethodGet, "/v1/runners", ""},
		{"open custom tasks", http.MethodGet, "/v1/custom-tasks", ""},
		{"fare estimate", http.MethodPost, "/v1/fare/estimate",
			`{"pickup":{"latitude":5.5256,"longitude":7.4905},"dropoff":{"latitude":5.5301,"longitude":7.4862}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, tt.body, "")
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		})
	}
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	router := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/wallets/user-1"},
		{http.MethodGet, "/v1/notifications/user-1"},
		{http.MethodPost, "/v1/instant-tasks"},
		{http.MethodPost, "/v1/custom-tasks"},
		{http.MethodPost, "/v1/custom-tasks/task-1/accept"},
		{http.MethodPost, "/v1/runners"},
		{http.MethodPost, "/v1/auth/otp/send"},
		{http.MethodPost, "/v1/auth/kyc"},
		{http.MethodDelete, "/v1/notifications/user-1"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := serve(router, p.method, p.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_SignupThenWallet(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, http.MethodPost, "/v1/auth/signup",
		`{"name":"Ada","email":"ada@example.com","phone":"08031234567","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)

	w = serve(router, http.MethodGet, "/v1/wallets/"+session.User.ID, "", session.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var wallet domain.Wallet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wallet))
	assert.Equal(t, int64(5000), wallet.AvailableBalance)

	w = serve(router, http.MethodGet, "/v1/wallets/"+session.User.ID, "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func signupVia(t *testing.T, router *gin.Engine, name, email, phone string) domain.Session {
	t.Helper()
	w := serve(router, http.MethodPost, "/v1/auth/signup",
		`{"name":"`+name+`","email":"`+email+`","phone":"`+phone+`","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	return session
}

func TestRouter_SecondUserIsForbidden(t *testing.T) {
	router := newTestRouter(t)
	ada := signupVia(t, router, "Ada", "ada@example.com", "08031234567")
	eve := signupVia(t, router, "Eve", "eve@example.com", "08039876543")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"read wallet", http.MethodGet, "/v1/wallets/" + ada.User.ID, ""},
		{"deposit", http.MethodPost, "/v1/wallets/" + ada.User.ID + "/deposit", `{"amount":100}`},
		{"wallet history", http.MethodGet, "/v1/wallets/" + ada.User.ID + "/transactions", ""},
		{"notifications", http.MethodGet, "/v1/notifications/" + ada.User.ID, ""},
		{"clear notifications", http.MethodDelete, "/v1/notifications/" + ada.User.ID, ""},
		{"instant task list", http.MethodGet, "/v1/instant-tasks/users/" + ada.User.ID, ""},
		{"custom task list", http.MethodGet, "/v1/custom-tasks/users/" + ada.User.ID, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, tt.body, eve.Token)
			assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
		})
	}

	// An errand posted by Eve is hers even when the body names Ada.
	w := serve(router, http.MethodPost, "/v1/custom-tasks",
		`{"user_id":"`+ada.User.ID+`","title":"Buy bread","description":"Two loaves","budget":700}`, eve.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task domain.CustomTask
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, eve.User.ID, task.UserID)

	w = serve(router, http.MethodGet, "/v1/wallets/"+ada.User.ID, "", ada.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var wallet domain.Wallet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wallet))
	assert.Equal(t, int64(5000), wallet.AvailableBalance)
}

func TestRouter_IdempotencyKeysArePerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	router := newTestRouterWithRedis(t, client)
	ada := signupVia(t, router, "Ada", "ada@example.com", "08031234567")
	eve := signupVia(t, router, "Eve", "eve@example.com", "08039876543")
	key := map[string]string{"Idempotency-Key": "topup-1"}

	deposit := func(s domain.Session) *httptest.ResponseRecorder {
		return serveWithHeaders(router, http.MethodPost, "/v1/wallets/"+s.User.ID+"/deposit", `{"amount":100}`, s.Token, key)
	}

	first := deposit(ada)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Empty(t, first.Header().Get("Idempotent-Replayed"))

	retry := deposit(ada)
	require.Equal(t, http.StatusOK, retry.Code)
	assert.Equal(t, "true", retry.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), retry.Body.String())

	other := deposit(eve)
	require.Equal(t, http.StatusOK, other.Code, other.Body.String())
	assert.Empty(t, other.Header().Get("Idempotent-Replayed"))

	var wallet domain.Wallet
	require.NoError(t, json.Unmarshal(other.Body.Bytes(), &wallet))
	assert.Equal(t, eve.User.ID, wallet.UserID)
	assert.Equal(t, int64(5100), wallet.AvailableBalance)

	assert.True(t, mr.Exists("idempotency:"+ada.User.ID+":POST:/v1/wallets/"+ada.User.ID+"/deposit:topup-1"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/custom-tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
