package httpkit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lead_portal_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type stubJWTConfig struct{ secret string }

func (s stubJWTConfig) GetJWTAccessSecret() string { return s.secret }

func newTestRouter(cfg stubJWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", AuthRequired(cfg), func(c *gin.Context) {
		if actor := ActorID(c); actor != nil {
			c.String(http.StatusOK, actor.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.POST("/admin", AuthRequired(cfg), RequireRole(cfg, RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func signToken(t *testing.T, secret string, sub uuid.UUID, roles []string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub.String(),
		"roles": roles,
		"type":  "access",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthRequired_DisabledWithoutSecret(t *testing.T) {
	r := newTestRouter(stubJWTConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	if w.Code != http.StatusOK || w.Body.String() != "anonymous" {
		t.Fatalf("expected anonymous 200, got %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected role check to be skipped, got %d", w.Code)
	}
}

func TestAuthRequired_ValidatesBearerToken(t *testing.T) {
	cfg := stubJWTConfig{secret: "s3cret"}
	r := newTestRouter(cfg)
	userID := uuid.New()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", userID, nil), want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + signToken(t, cfg.secret, userID, nil), want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/open", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
			if tc.want == http.StatusOK && w.Body.String() != userID.String() {
				t.Fatalf("expected actor %s, got %s", userID, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	cfg := stubJWTConfig{secret: "s3cret"}
	r := newTestRouter(cfg)

	for _, tc := range []struct {
		roles []string
		want  int
	}{
		{roles: []string{"sales"}, want: http.StatusForbidden},
		{roles: []string{"sales", RoleAdmin}, want: http.StatusNoContent},
	} {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, cfg.secret, uuid.New(), tc.roles))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("expected %d for roles %v, got %d", tc.want, tc.roles, w.Code)
		}
	}
}

func TestHandleError_MapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{err: apperr.NotFound("lead not found"), want: http.StatusNotFound},
		{err: fmt.Errorf("wrapped: %w", apperr.Conflict("duplicate")), want: http.StatusConflict},
		{err: apperr.Unprocessable("incomplete"), want: http.StatusUnprocessableEntity},
		{err: apperr.Unavailable("no redis"), want: http.StatusServiceUnavailable},
		{err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		if !HandleError(c, tc.err) {
			t.Fatalf("expected error to be handled")
		}
		if w.Code != tc.want {
			t.Fatalf("expected %d for %v, got %d", tc.want, tc.err, w.Code)
		}
	}
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(1, 1, nil)
	r := gin.New()
	r.GET("/", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be limited, got %d", second.Code)
	}
}
