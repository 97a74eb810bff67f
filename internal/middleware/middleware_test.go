package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"hustle/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCountingRouter(client *redis.Client, calls *int32) *gin.Engine {
	r := gin.New()
	r.Use(IdempotencyMiddleware(client))
	handler := func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(http.StatusCreated, gin.H{"call": n})
	}
	r.POST("/v1/wallets/:userId/deposit", handler)
	r.POST("/v1/custom-tasks", handler)
	return r
}

func post(r http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyMiddleware_ReplaysResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var calls int32
	r := newCountingRouter(client, &calls)

	first := post(r, "/v1/wallets/u1/deposit", "key-1")
	second := post(r, "/v1/wallets/u1/deposit", "key-1")

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "true", second.Header().Get(replayedHeader))
	assert.True(t, mr.Exists("idempotency:anonymous:POST:/v1/wallets/u1/deposit:key-1"))
	assert.False(t, mr.Exists("idempotency:anonymous:POST:/v1/wallets/u1/deposit:key-1:inflight"))
}

func TestIdempotencyMiddleware_KeyScopedToSessionUser(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var calls int32
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(SessionContextKey, &domain.Session{User: domain.User{ID: id}})
		}
		c.Next()
	}, IdempotencyMiddleware(client))
	r.POST("/v1/custom-tasks", func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusCreated, gin.H{"call": n})
	})

	send := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/custom-tasks", strings.NewReader(`{}`))
		req.Header.Set(idempotencyHeader, "same-key")
		req.Header.Set("X-Test-User", user)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	ada := send("ada")
	eve := send("eve")
	adaAgain := send("ada")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "one user's key never replays another user's response")
	assert.NotEqual(t, ada.Body.String(), eve.Body.String())
	assert.JSONEq(t, ada.Body.String(), adaAgain.Body.String())
	assert.True(t, mr.Exists("idempotency:ada:POST:/v1/custom-tasks:same-key"))
	assert.True(t, mr.Exists("idempotency:eve:POST:/v1/custom-tasks:same-key"))
}

func TestIdempotencyMiddleware_InFlightRetryConflicts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var calls int32
	r := newCountingRouter(client, &calls)

	require.NoError(t, mr.Set("idempotency:anonymous:POST:/v1/custom-tasks:key-1:inflight", "1"))
	rec := post(r, "/v1/custom-tasks", "key-1")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestIdempotencyMiddleware_ServerErrorsNotStored(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var calls int32
	r := gin.New()
	r.Use(IdempotencyMiddleware(client))
	r.POST("/v1/custom-tasks", func(c *gin.Context) {
		atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	post(r, "/v1/custom-tasks", "key-1")
	post(r, "/v1/custom-tasks", "key-1")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.False(t, mr.Exists("idempotency:anonymous:POST:/v1/custom-tasks:key-1"))
}

func TestIdempotencyMiddleware_KeyScopedToPath(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var calls int32
	r := newCountingRouter(client, &calls)

	post(r, "/v1/wallets/u1/deposit", "shared")
	post(r, "/v1/custom-tasks", "shared")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotencyMiddleware_WithoutKeyOrClient(t *testing.T) {
	var calls int32
	r := newCountingRouter(nil, &calls)

	post(r, "/v1/custom-tasks", "key-1")
	post(r, "/v1/custom-tasks", "key-1")
	post(r, "/v1/custom-tasks", "")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestIdempotencyMiddleware_RedisDownPassesThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	var calls int32
	r := newCountingRouter(client, &calls)

	rec := post(r, "/v1/custom-tasks", "key-1")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.POST("/v1/custom-tasks", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/custom-tasks", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

type stubResolver struct {
	sessions map[string]*domain.Session
}

func (s stubResolver) Session(_ context.Context, token string) (*domain.Session, error) {
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, assert.AnError
}

func TestRequireAuth(t *testing.T) {
	resolver := stubResolver{sessions: map[string]*domain.Session{
		"good": {User: domain.User{ID: "u1"}, Token: "good"},
	}}

	r := gin.New()
	r.GET("/me", RequireAuth(resolver), func(c *gin.Context) {
		session, ok := CurrentSession(c)
		require.True(t, ok)
		c.String(http.StatusOK, session.User.ID)
	})

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/v1/runners/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/v1/runners/r1", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/v1/runners/:id", fields["route"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}
