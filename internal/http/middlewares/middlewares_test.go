package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quickkart/marketplace/internal/actorctx"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/session"
	"github.com/quickkart/marketplace/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(ctx context.Context, token string) (session.Session, error)
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (session.Session, error) {
	return f.verifyFn(ctx, token)
}

func customerSession() session.Session {
	return session.Session{
		ID:          "sess-1",
		PrincipalID: "cust-1",
		Email:       "c@example.com",
		Role:        principal.RoleCustomer,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func authedRouter(v middlewares.SessionVerifier, role principal.Role) *gin.Engine {
	m := middlewares.NewAuthMiddleware(v)

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/private", m.RequireAuth(), m.RequireRole(role), func(c *gin.Context) {
		fromGin, _ := middlewares.ActorFromContext(c)
		fromCtx, _ := actorctx.ActorFrom(c.Request.Context())
		if fromGin != fromCtx {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, fromGin.Email)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	verifier := &fakeVerifier{
		verifyFn: func(_ context.Context, token string) (session.Session, error) {
			switch token {
			case "good":
				return customerSession(), nil
			case "revoked":
				return session.Session{}, session.ErrRevoked
			default:
				return session.Session{}, session.ErrExpired
			}
		},
	}

	tests := []struct {
		name       string
		header     string
		role       principal.Role
		wantStatus int
	}{
		{name: "no header", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer   ", wantStatus: http.StatusUnauthorized},
		{name: "revoked", header: "Bearer revoked", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer old", wantStatus: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer good", role: principal.RoleSeller, wantStatus: http.StatusForbidden},
		{name: "ok", header: "Bearer good", role: principal.RoleCustomer, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role := tt.role
			if role == "" {
				role = principal.RoleCustomer
			}
			r := authedRouter(verifier, role)

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK && w.Body.String() != "c@example.com" {
				t.Fatalf("unexpected body %q", w.Body.String())
			}
		})
	}
}

func TestRateLimiterKeysByEmailAndRestoresBody(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.POST("/auth/login", rl.RateLimiterMiddleware(middlewares.KeyByEmailOrIP), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	sam := `{"email":"Sam@Example.com","password":"x"}`

	for i := 0; i < 2; i++ {
		w := send(sam)
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d: got status %d", i, w.Code)
		}
		if w.Body.String() != sam {
			t.Fatalf("handler saw %q, want the original body", w.Body.String())
		}
	}

	// same account, different case
	if w := send(`{"email":"sam@example.com","password":"y"}`); w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", w.Code)
	}
	if w := send(`{"email":"other@example.com","password":"y"}`); w.Code != http.StatusOK {
		t.Fatalf("other account should not be limited, got %d", w.Code)
	}
}

func TestRequireContentType(t *testing.T) {
	tests := []struct {
		name        string
		guard       gin.HandlerFunc
		contentType string
		wantStatus  int
	}{
		{name: "json with charset", guard: middlewares.RequireJSON(), contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "form on json route", guard: middlewares.RequireJSON(), contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
		{name: "missing on json route", guard: middlewares.RequireJSON(), wantStatus: http.StatusUnsupportedMediaType},
		{name: "multipart product", guard: middlewares.RequireProductForm(), contentType: "multipart/form-data; boundary=xyz", wantStatus: http.StatusOK},
		{name: "json product", guard: middlewares.RequireProductForm(), contentType: "application/json", wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.RequestID())
			r.POST("/x", tt.guard, func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			req.Header.Set("X-Request-Id", "req-7")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				return
			}

			var body struct {
				Error struct {
					Code      string `json:"code"`
					RequestID string `json:"requestId"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != "unsupported_media_type" || body.Error.RequestID != "req-7" {
				t.Fatalf("unexpected envelope %+v", body.Error)
			}
		})
	}
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/x", func(c *gin.Context) {
		id, _ := actorctx.RequestIDFrom(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-Id") != "abc-123" || w.Body.String() != "abc-123" {
		t.Fatalf("request id not propagated: header=%q body=%q", w.Header().Get("X-Request-Id"), w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a generated request id")
	}
}
