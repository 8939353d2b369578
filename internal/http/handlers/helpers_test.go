package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quickkart/marketplace/internal/actorctx"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/http/middlewares"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func customerActor() *actorctx.Actor {
	return &actorctx.Actor{
		PrincipalID: newUUID(),
		Email:       "cust@example.com",
		Role:        principal.RoleCustomer,
		SessionID:   newUUID(),
	}
}

func sellerActor() *actorctx.Actor {
	return &actorctx.Actor{
		PrincipalID: newUUID(),
		Email:       "seller@example.com",
		Role:        principal.RoleSeller,
		SessionID:   newUUID(),
	}
}

// setupRouter mounts one handler. A non-nil actor is placed on the context
// the way RequireAuth would.
func setupRouter(method, path string, h gin.HandlerFunc, actor *actorctx.Actor) *gin.Engine {
	r := gin.New()

	if actor != nil {
		a := *actor
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxActor, a)
			c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), a))
			c.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func mustDecode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
	return out
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	if w.Code != status {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, status, w.Body.String())
	}

	resp := mustDecode[errorResponse](t, w)
	if resp.Error.Code != code {
		t.Fatalf("got error code %q, want %q", resp.Error.Code, code)
	}
}
