package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/quickkart/marketplace/internal/http/handlers"
)

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		ping       func(ctx context.Context) error
		draining   bool
		wantStatus int
	}{
		{name: "no probe", wantStatus: http.StatusOK},
		{name: "db up", ping: func(context.Context) error { return nil }, wantStatus: http.StatusOK},
		{name: "db down", ping: func(context.Context) error { return errors.New("refused") }, wantStatus: http.StatusServiceUnavailable},
		{name: "draining", ping: func(context.Context) error { return nil }, draining: true, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draining := tt.draining
			h := handlers.NewHealthHandler(tt.ping, func() bool { return draining })
			r := setupRouter(http.MethodGet, "/readyz", h.Readyz, nil)

			w := doRequest(r, http.MethodGet, "/readyz", "")
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
