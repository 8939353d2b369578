package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quickkart/marketplace/internal/config"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/session"
	"github.com/quickkart/marketplace/internal/http/middlewares"
)

type AccountService interface {
	Register(ctx context.Context, req principal.SignUpRequest) (principal.Principal, error)
	Authenticate(ctx context.Context, email, password string) (principal.Principal, error)
	Get(ctx context.Context, id string) (principal.Principal, error)
}

type SessionService interface {
	Issue(ctx context.Context, p principal.Principal, userAgent string) (string, session.Session, error)
	Revoke(ctx context.Context, id string) error
	RevokeAll(ctx context.Context, principalID string) (int, error)
}

type AuthHandler struct {
	accounts AccountService
	sessions SessionService
}

func NewAuthHandler(accounts AccountService, sessions SessionService) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
	}
}

type loginResponse struct {
	Token     string              `json:"token"`
	TokenType string              `json:"tokenType"`
	ExpiresAt time.Time           `json:"expiresAt"`
	Principal principal.Principal `json:"principal"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req principal.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt at cost 12 dominates this budget
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	p, err := h.accounts.Register(cctx, req)
	if err != nil {
		respondDomainError(ctx, "auth.signup", err)
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req principal.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	p, err := h.accounts.Authenticate(cctx, req.Email, req.Password)
	if err != nil {
		// unknown email and wrong password look the same to the client
		if errors.Is(err, principal.ErrNotFound) || errors.Is(err, principal.ErrInvalidCredential) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		respondDomainError(ctx, "auth.login", err)
		return
	}

	token, sess, err := h.sessions.Issue(cctx, p, ctx.Request.UserAgent())
	if err != nil {
		respondDomainError(ctx, "auth.login.issue_session", err)
		return
	}

	ctx.JSON(http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: sess.ExpiresAt,
		Principal: p,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.sessions.Revoke(cctx, actor.SessionID); err != nil {
		respondDomainError(ctx, "auth.logout", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// LogoutAll signs the principal out everywhere.
func (h *AuthHandler) LogoutAll(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	n, err := h.sessions.RevokeAll(cctx, actor.PrincipalID)
	if err != nil {
		respondDomainError(ctx, "auth.logout_all", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"revoked": n})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	p, err := h.accounts.Get(cctx, actor.PrincipalID)
	if err != nil {
		respondDomainError(ctx, "auth.me", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"principal": p,
		"sessionId": actor.SessionID,
	})
}
