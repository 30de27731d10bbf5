package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
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
			origin:         "https://gifts.example",
			allowedOrigins: []string{"https://gifts.example"},
			want:           true,
		},
		{
			name:           "wildcard match",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"http://localhost:*"},
			want:           true,
		},
		{
			name:           "allow all",
			origin:         "https://anything.test",
			allowedOrigins: []string{"*"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches second",
			origin:         "https://gifts.example",
			allowedOrigins: []string{"http://localhost:*", "https://gifts.example"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"https://gifts.example"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "https://gifts.example",
			allowedOrigins: []string{},
			want:           false,
		},
		{
			name:           "exact entry does not match subdomain",
			origin:         "https://evil.gifts.example",
			allowedOrigins: []string{"https://gifts.example"},
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
			origin:         "https://gifts.example",
			allowedOrigins: []string{"https://gifts.example"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			wantCORS:       true,
		},
		{
			name:           "allowed origin - OPTIONS request",
			origin:         "https://gifts.example",
			allowedOrigins: []string{"https://gifts.example"},
			method:         "OPTIONS",
			wantStatus:     http.StatusNoContent,
			wantCORS:       true,
		},
		{
			name:           "disallowed origin",
			origin:         "http://evil.com",
			allowedOrigins: []string{"https://gifts.example"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			wantCORS:       false,
		},
		{
			name:           "no origin header with allow all",
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
			if tt.wantCORS && corsHeader != tt.origin {
				t.Errorf("Access-Control-Allow-Origin = %s, want %s", corsHeader, tt.origin)
			}
			if !tt.wantCORS && corsHeader != "" {
				t.Errorf("Access-Control-Allow-Origin should not be set, got %s", corsHeader)
			}
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limiter := NewIPRateLimiter(2)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("third request within the window should be rejected")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Error("other IPs have their own bucket")
	}

	now = now.Add(30 * time.Second)
	if !limiter.Allow("10.0.0.1") {
		t.Error("bucket should refill one token after 30s")
	}

	t.Run("cleanup drops idle buckets", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		limiter.Allow("10.0.0.3")
		limiter.Cleanup(time.Hour)
		if limiter.Size() != 1 {
			t.Errorf("Size() = %d, want 1", limiter.Size())
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(NewIPRateLimiter(1)))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	codes := make([]int, 0, 2)
	for range 2 {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.0.2.10:4321"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
