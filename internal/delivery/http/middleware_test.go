package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "https://weather.example.com",
			allowedOrigins: []string{"https://weather.example.com"},
			want:           true,
		},
		{
			name:           "wildcard match",
			origin:         "https://app.example.com",
			allowedOrigins: []string{"https://*"},
			want:           true,
		},
		{
			name:           "bare wildcard matches anything",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"*"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches second",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"https://weather.example.com", "http://localhost:3000"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"https://weather.example.com"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "https://weather.example.com",
			allowedOrigins: []string{},
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		method         string
		wantStatus     int
		wantCORS       bool
	}{
		{
			name:           "allowed origin - GET request",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"http://localhost:*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			wantCORS:       true,
		},
		{
			name:           "allowed origin - OPTIONS request",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"http://localhost:*"},
			method:         "OPTIONS",
			wantStatus:     http.StatusNoContent,
			wantCORS:       true,
		},
		{
			name:           "disallowed origin",
			origin:         "http://evil.com",
			allowedOrigins: []string{"http://localhost:*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			wantCORS:       false,
		},
		{
			name:           "no origin header with bare wildcard",
			origin:         "",
			allowedOrigins: []string{"*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			wantCORS:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware(tt.allowedOrigins))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "OK")
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			corsHeader := w.Header().Get("Access-Control-Allow-Origin")
			if tt.wantCORS {
				if corsHeader != tt.origin {
					t.Errorf("Access-Control-Allow-Origin = %s, want %s", corsHeader, tt.origin)
				}
				if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
					t.Errorf("Access-Control-Allow-Credentials not set to true")
				}
			} else if corsHeader != "" {
				t.Errorf("Access-Control-Allow-Origin should not be set, got %s", corsHeader)
			}
		})
	}
}

func newEchoRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware...)
	router.GET("/test", func(c *gin.Context) {
		id, _ := c.Get(requestIDKey)
		c.JSON(http.StatusOK, gin.H{"request_id": id})
	})
	return router
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newEchoRouter(RequestIDMiddleware())

	t.Run("assigns a UUID when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "request id %q is not a UUID", id)
		assert.Contains(t, w.Body.String(), id)
	})

	t.Run("echoes caller-supplied ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "trace-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "trace-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("IDs differ between requests", func(t *testing.T) {
		w1 := httptest.NewRecorder()
		router.ServeHTTP(w1, httptest.NewRequest("GET", "/test", nil))
		w2 := httptest.NewRecorder()
		router.ServeHTTP(w2, httptest.NewRequest("GET", "/test", nil))

		assert.NotEqual(t, w1.Header().Get(RequestIDHeader), w2.Header().Get(RequestIDHeader))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("rejects requests beyond the per-IP budget", func(t *testing.T) {
		router := newEchoRouter(RateLimitMiddleware(3))

		codes := make([]int, 0, 4)
		for i := 0; i < 4; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, []int{200, 200, 200, 429}, codes)
	})

	t.Run("budgets are tracked per IP", func(t *testing.T) {
		router := newEchoRouter(RateLimitMiddleware(1))

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = addr
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, addr)
		}
	})

	t.Run("rejection uses error envelope", func(t *testing.T) {
		router := newEchoRouter(RateLimitMiddleware(1))

		var w *httptest.ResponseRecorder
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = "10.0.0.9:1"
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)
		}

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Too many requests, please try again later"}`, w.Body.String())
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		router := newEchoRouter(RateLimitMiddleware(0))

		for i := 0; i < 50; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestVisitorLimiters_PrunesIdleVisitors(t *testing.T) {
	limiters := newVisitorLimiters(rate.Every(time.Second), 1)
	start := time.Now()

	for i := 0; i < visitorPruneSize; i++ {
		limiters.allow(uuid.NewString(), start)
	}
	assert.Len(t, limiters.visitors, visitorPruneSize)

	limiters.allow("fresh", start.Add(visitorIdleTimeout+time.Second))
	assert.Len(t, limiters.visitors, 1)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		tokens      []string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{name: "no tokens configured", tokens: nil, header: "", wantStatus: http.StatusOK},
		{name: "blank tokens disable auth", tokens: []string{" "}, header: "", wantStatus: http.StatusOK},
		{name: "valid token", tokens: []string{"alpha", "beta"}, header: "Bearer beta", wantStatus: http.StatusOK},
		{name: "missing header", tokens: []string{"alpha"}, header: "", wantStatus: http.StatusUnauthorized, wantMessage: "Access token is required"},
		{name: "wrong scheme", tokens: []string{"alpha"}, header: "Basic alpha", wantStatus: http.StatusUnauthorized, wantMessage: "Access token is required"},
		{name: "unknown token", tokens: []string{"alpha"}, header: "Bearer gamma", wantStatus: http.StatusUnauthorized, wantMessage: "Invalid access token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newEchoRouter(AuthMiddleware(tt.tokens))

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMessage != "" {
				assert.JSONEq(t, `{"success":false,"message":"`+tt.wantMessage+`"}`, w.Body.String())
			}
		})
	}
}
