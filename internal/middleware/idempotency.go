package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	idempotencyTTL    = 24 * time.Hour
	inFlightTTL       = 30 * time.Second
	anonymousSubject  = "anonymous"
)

// storedResponse is what a retried request gets back.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body so it can be stored after the handler ran.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a mutating request
// retried with the same Idempotency-Key. Keys belong to the caller: the
// session user when RequireAuth ran first, otherwise an anonymous bucket, and
// they are further scoped to method and path. A retry that arrives while the
// first attempt is still running gets 409. A nil client disables replay.
func IdempotencyMiddleware(client *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if client == nil || key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := idempotencyKey(requestSubject(c), c.Request.Method, c.Request.URL.Path, key)

		stored, err := loadResponse(c, client, storeKey)
		if err != nil {
			// Redis unavailable: serve the request without replay protection.
			c.Next()
			return
		}
		if stored != nil {
			c.Header(replayedHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		claimed, err := client.SetNX(ctx, storeKey+":inflight", 1, inFlightTTL).Result()
		if err != nil {
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a request with this Idempotency-Key is in progress"})
			return
		}
		defer client.Del(ctx, storeKey+":inflight")

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// Server errors are not stored so the client can retry them.
		status := w.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		data, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		})
		if err == nil {
			_ = client.Set(ctx, storeKey, data, idempotencyTTL).Err()
		}
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut ||
		method == http.MethodPatch || method == http.MethodDelete
}

func requestSubject(c *gin.Context) string {
	if session, ok := CurrentSession(c); ok && session.User.ID != "" {
		return session.User.ID
	}
	return anonymousSubject
}

func idempotencyKey(subject, method, path, key string) string {
	return "idempotency:" + subject + ":" + method + ":" + path + ":" + key
}

// loadResponse returns nil, nil when nothing is stored under key.
func loadResponse(c *gin.Context, client *redis.Client, key string) (*storedResponse, error) {
	data, err := client.Get(c.Request.Context(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored storedResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}
