package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/session"
	"github.com/quickkart/marketplace/internal/http/handlers"
)

type fakeAccounts struct {
	registerFn     func(ctx context.Context, req principal.SignUpRequest) (principal.Principal, error)
	authenticateFn func(ctx context.Context, email, password string) (principal.Principal, error)
	getFn          func(ctx context.Context, id string) (principal.Principal, error)
}

func (f *fakeAccounts) Register(ctx context.Context, req principal.SignUpRequest) (principal.Principal, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return principal.Principal{}, nil
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (principal.Principal, error) {
	if f.authenticateFn != nil {
		return f.authenticateFn(ctx, email, password)
	}
	return principal.Principal{}, nil
}

func (f *fakeAccounts) Get(ctx context.Context, id string) (principal.Principal, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return principal.Principal{ID: id}, nil
}

type fakeSessions struct {
	issueFn     func(ctx context.Context, p principal.Principal, ua string) (string, session.Session, error)
	revokeFn    func(ctx context.Context, id string) error
	revokeAllFn func(ctx context.Context, principalID string) (int, error)
}

func (f *fakeSessions) Issue(ctx context.Context, p principal.Principal, ua string) (string, session.Session, error) {
	if f.issueFn != nil {
		return f.issueFn(ctx, p, ua)
	}
	return "token", session.Session{}, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, id string) error {
	if f.revokeFn != nil {
		return f.revokeFn(ctx, id)
	}
	return nil
}

func (f *fakeSessions) RevokeAll(ctx context.Context, principalID string) (int, error) {
	if f.revokeAllFn != nil {
		return f.revokeAllFn(ctx, principalID)
	}
	return 0, nil
}

const validSignup = `{"email":"sam@example.com","password":"password123","name":"Sam","phone":"9999999999","address":"1 Road","role":"customer"}`

func TestSignUpHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		registerFn func(ctx context.Context, req principal.SignUpRequest) (principal.Principal, error)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: validSignup,
			registerFn: func(_ context.Context, req principal.SignUpRequest) (principal.Principal, error) {
				return principal.Principal{ID: newUUID(), Email: req.Email, Role: req.Role}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: validSignup,
			registerFn: func(context.Context, principal.SignUpRequest) (principal.Principal, error) {
				return principal.Principal{}, principal.ErrDuplicateEmail
			},
			wantStatus: http.StatusConflict,
			wantCode:   "email_taken",
		},
		{
			name: "seller without store name",
			body: `{"email":"s@example.com","password":"password123","name":"S","phone":"1","address":"a","role":"seller"}`,
			registerFn: func(context.Context, principal.SignUpRequest) (principal.Principal, error) {
				return principal.Principal{}, principal.ErrStoreNameRequired
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "malformed body",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name: "store down",
			body: validSignup,
			registerFn: func(context.Context, principal.SignUpRequest) (principal.Principal, error) {
				return principal.Principal{}, errors.New("connection refused")
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "store_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewAuthHandler(&fakeAccounts{registerFn: tt.registerFn}, &fakeSessions{})
			r := setupRouter(http.MethodPost, "/auth/signup", h.SignUp, nil)

			w := doRequest(r, http.MethodPost, "/auth/signup", tt.body)

			if tt.wantCode != "" {
				assertErrorCode(t, w, tt.wantStatus, tt.wantCode)
				return
			}
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestLoginCollapsesUnknownEmailAndBadPassword(t *testing.T) {
	for _, authErr := range []error{principal.ErrNotFound, principal.ErrInvalidCredential} {
		accounts := &fakeAccounts{
			authenticateFn: func(context.Context, string, string) (principal.Principal, error) {
				return principal.Principal{}, authErr
			},
		}
		issued := false
		sessions := &fakeSessions{
			issueFn: func(context.Context, principal.Principal, string) (string, session.Session, error) {
				issued = true
				return "", session.Session{}, nil
			},
		}

		h := handlers.NewAuthHandler(accounts, sessions)
		r := setupRouter(http.MethodPost, "/auth/login", h.Login, nil)

		w := doRequest(r, http.MethodPost, "/auth/login", `{"email":"sam@example.com","password":"whatever1"}`)

		assertErrorCode(t, w, http.StatusUnauthorized, "invalid_credentials")
		if issued {
			t.Fatalf("session must not be issued on %v", authErr)
		}
	}
}

func TestLoginIssuesBearerToken(t *testing.T) {
	p := principal.Principal{ID: newUUID(), Email: "sam@example.com", Role: principal.RoleCustomer}
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	accounts := &fakeAccounts{
		authenticateFn: func(_ context.Context, email, _ string) (principal.Principal, error) {
			if email != "sam@example.com" {
				t.Fatalf("unexpected email %q", email)
			}
			return p, nil
		},
	}
	sessions := &fakeSessions{
		issueFn: func(_ context.Context, got principal.Principal, ua string) (string, session.Session, error) {
			if got.ID != p.ID {
				t.Fatalf("session issued for wrong principal")
			}
			return "signed.jwt.token", session.Session{ID: newUUID(), ExpiresAt: expires}, nil
		},
	}

	h := handlers.NewAuthHandler(accounts, sessions)
	r := setupRouter(http.MethodPost, "/auth/login", h.Login, nil)

	w := doRequest(r, http.MethodPost, "/auth/login", `{"email":"sam@example.com","password":"password123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	resp := mustDecode[struct {
		Token     string    `json:"token"`
		TokenType string    `json:"tokenType"`
		ExpiresAt time.Time `json:"expiresAt"`
	}](t, w)

	if resp.Token != "signed.jwt.token" || resp.TokenType != "Bearer" {
		t.Fatalf("unexpected token response: %+v", resp)
	}
	if !resp.ExpiresAt.Equal(expires) {
		t.Fatalf("expiresAt = %v, want %v", resp.ExpiresAt, expires)
	}
}

func TestLogoutRevokesCurrentSession(t *testing.T) {
	actor := customerActor()
	var revoked string

	sessions := &fakeSessions{
		revokeFn: func(_ context.Context, id string) error {
			revoked = id
			return nil
		},
	}

	h := handlers.NewAuthHandler(&fakeAccounts{}, sessions)
	r := setupRouter(http.MethodPost, "/auth/logout", h.Logout, actor)

	w := doRequest(r, http.MethodPost, "/auth/logout", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want 204, body=%s", w.Code, w.Body.String())
	}
	if revoked != actor.SessionID {
		t.Fatalf("revoked %q, want %q", revoked, actor.SessionID)
	}
}

func TestLogoutWithoutActorIsUnauthorized(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeAccounts{}, &fakeSessions{})
	r := setupRouter(http.MethodPost, "/auth/logout", h.Logout, nil)

	w := doRequest(r, http.MethodPost, "/auth/logout", "")
	assertErrorCode(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestLogoutAllReportsCount(t *testing.T) {
	actor := sellerActor()

	sessions := &fakeSessions{
		revokeAllFn: func(_ context.Context, principalID string) (int, error) {
			if principalID != actor.PrincipalID {
				t.Fatalf("unexpected principal %q", principalID)
			}
			return 3, nil
		},
	}

	h := handlers.NewAuthHandler(&fakeAccounts{}, sessions)
	r := setupRouter(http.MethodPost, "/auth/logout-all", h.LogoutAll, actor)

	w := doRequest(r, http.MethodPost, "/auth/logout-all", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	resp := mustDecode[struct {
		Revoked int `json:"revoked"`
	}](t, w)
	if resp.Revoked != 3 {
		t.Fatalf("revoked = %d, want 3", resp.Revoked)
	}
}
