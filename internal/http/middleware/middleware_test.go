package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
)

func TestMemoryRateLimiterWindow(t *testing.T) {
	rl := NewMemoryRateLimiter(2, time.Minute)
	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if limited, _ := rl.Limit(ctx, "ip"); limited {
			t.Fatalf("attempt %d should pass", i)
		}
	}
	if limited, _ := rl.Limit(ctx, "ip"); !limited {
		t.Fatal("third attempt should be limited")
	}
	if limited, _ := rl.Limit(ctx, "other"); limited {
		t.Fatal("keys are independent")
	}

	now = now.Add(time.Minute + time.Second)
	if limited, _ := rl.Limit(ctx, "ip"); limited {
		t.Fatal("window should have expired")
	}
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"header", "Bearer abc", "", "abc"},
		{"query", "", "?token=xyz", "xyz"},
		{"wrong scheme", "Basic abc", "", ""},
		{"none", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/ws/ads"+tt.query, nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(c); got != tt.want {
				t.Errorf("bearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaintenance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	settings := func() domain.Settings {
		s := domain.DefaultSettings()
		s.AppMaintenance = true
		return s
	}

	tests := []struct {
		name   string
		method string
		role   domain.Role
		want   int
	}{
		{"user read", http.MethodGet, domain.RoleUser, http.StatusOK},
		{"user write", http.MethodPost, domain.RoleUser, http.StatusServiceUnavailable},
		{"admin write", http.MethodPost, domain.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Set(userKey, &domain.User{ID: "user_1", Role: tt.role})
			}, Maintenance(settings))
			r.Handle(tt.method, "/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/x", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://app.example.com"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow origin = %q", got)
	}
}
