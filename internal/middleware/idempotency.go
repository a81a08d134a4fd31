package middleware

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bluele/gcache"
	"github.com/gin-gonic/gin"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"

	// IdempotencyTTL is how long a response stays replayable.
	IdempotencyTTL = 24 * time.Hour
)

// replayHeaders are the response headers stored with a replayable response.
var replayHeaders = []string{"Content-Type", "Content-Disposition"}

// CachedResponse is a stored response of a mutating request.
type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Body       []byte      `json:"body"`
	Headers    http.Header `json:"headers"`
}

// ResponseCache stores responses by idempotency key. Get returns nil, nil
// for an unknown key.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*CachedResponse, error)
	Set(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error
}

// recordingWriter copies the response body while it is written.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST or DELETE that repeats
// an Idempotency-Key within the same session, so a retried payment returns
// the first outcome instead of charging again. It must run after Session.
func Idempotency(cache ResponseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		key := c.GetHeader(idempotencyHeader)
		if key == "" || (method != http.MethodPost && method != http.MethodDelete) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idempotency:" + SessionID(c) + ":" + method + ":" + c.FullPath() + ":" + key

		cached, err := cache.Get(ctx, cacheKey)
		if err != nil {
			// Serve the request without replay protection.
			log.Printf("[SESSION] idempotency lookup failed: key=%s err=%v", key, err)
			c.Next()
			return
		}
		if cached != nil {
			for name, values := range cached.Headers {
				for _, v := range values {
					c.Header(name, v)
				}
			}
			c.Header(replayedHeader, "true")
			c.Data(cached.StatusCode, cached.Headers.Get("Content-Type"), cached.Body)
			c.Abort()
			return
		}

		w := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// 5xx responses are left retryable.
		status := w.Status()
		if status < http.StatusOK || status >= http.StatusInternalServerError {
			return
		}
		resp := &CachedResponse{
			StatusCode: status,
			Body:       w.body.Bytes(),
			Headers:    make(http.Header),
		}
		for _, name := range replayHeaders {
			if v := w.Header().Get(name); v != "" {
				resp.Headers.Set(name, v)
			}
		}
		if err := cache.Set(ctx, cacheKey, resp, IdempotencyTTL); err != nil {
			log.Printf("[SESSION] idempotency store failed: key=%s err=%v", key, err)
		}
	}
}

// MemoryResponseCache is an in-process ResponseCache with LRU eviction.
type MemoryResponseCache struct {
	cache gcache.Cache
}

// NewMemoryResponseCache creates a cache holding at most size responses.
func NewMemoryResponseCache(size int) *MemoryResponseCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryResponseCache{cache: gcache.New(size).LRU().Build()}
}

func (m *MemoryResponseCache) Get(ctx context.Context, key string) (*CachedResponse, error) {
	v, err := m.cache.Get(key)
	if err == gcache.KeyNotFoundError {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp, _ := v.(*CachedResponse)
	return resp, nil
}

func (m *MemoryResponseCache) Set(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error {
	return m.cache.SetWithExpire(key, resp, ttl)
}

var _ ResponseCache = (*MemoryResponseCache)(nil)
