package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/class-subjects/internal/config"
	"github.com/stemsi/class-subjects/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterRefill(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("third request within the interval should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other clients have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("bucket should refill after the interval")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(5 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.visitors) != 0 {
		t.Fatalf("visitors = %d after cleanup, want 0", len(rl.visitors))
	}
}

func TestRequireAdminJWT(t *testing.T) {
	cfg := &config.Config{AuthRequired: true, JWTSecret: "s3cret", JWTExpiry: time.Hour}
	auth := service.NewAuthService(cfg)
	token, err := auth.GenerateAdminToken("registrar")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	r := gin.New()
	r.GET("/p", RequireAdminJWT(auth), func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, claims.Subject)
	})

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantBody string
	}{
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"header", "Bearer " + token, "", http.StatusOK, "registrar"},
		{"lowercase scheme", "bearer " + token, "", http.StatusOK, "registrar"},
		{"query fallback", "", "?token=" + token, http.StatusOK, "registrar"},
		{"invalid", "Bearer abc", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}

	cfg.AuthRequired = false
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	if w.Code != http.StatusOK || w.Body.String() != "anonymous" {
		t.Fatalf("auth off: %d %q", w.Code, w.Body.String())
	}
}

func TestCompressSkipsSmallAndPlainResponses(t *testing.T) {
	r := gin.New()
	r.Use(Compress("/skip"))
	r.GET("/small", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/skip", func(c *gin.Context) { c.String(http.StatusOK, strings.Repeat("x", 4096)) })
	r.GET("/binary", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/octet-stream", make([]byte, 4096))
	})

	for _, path := range []string{"/small", "/skip", "/binary"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if enc := w.Header().Get("Content-Encoding"); enc != "" {
			t.Errorf("%s: Content-Encoding = %q, want none", path, enc)
		}
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, w.Code)
		}
	}
}

func TestCacheHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/cached", CacheControl(60), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/fresh", NoStore(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cached", nil))
	if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "max-age=60") {
		t.Errorf("cached: Cache-Control = %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fresh", nil))
	if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("fresh: Cache-Control = %q", got)
	}
}
