package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/session"
	"github.com/quickkart/marketplace/internal/observability"
)

type SessionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SessionsRepo {
	return &SessionsRepo{pool: pool, prom: prom}
}

func (repo *SessionsRepo) observe(op string, fn func() error) error {
	return repo.prom.ObserveDB(op, fn)
}

func (repo *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	return repo.observe("sessions.create", func() error {
		_, err := repo.pool.Exec(ctx, `
		INSERT INTO sessions (id, principal_id, issued_at, expires_at, revoked_at, user_agent)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, s.ID, s.PrincipalID, s.IssuedAt, s.ExpiresAt, s.RevokedAt, s.UserAgent)
		return err
	})
}

// Get loads a session with the principal's current email and role.
func (repo *SessionsRepo) Get(ctx context.Context, id string) (session.Session, error) {
	var s session.Session
	var role string

	err := repo.observe("sessions.get", func() error {
		return repo.pool.QueryRow(ctx, `
		SELECT s.id, s.principal_id, p.email, p.role, s.issued_at, s.expires_at, s.revoked_at, s.user_agent
		FROM sessions s
		JOIN principals p ON p.id = s.principal_id
		WHERE s.id = $1
	`, id).Scan(&s.ID, &s.PrincipalID, &s.Email, &role, &s.IssuedAt, &s.ExpiresAt, &s.RevokedAt, &s.UserAgent)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}

	s.Role = principal.Role(role)
	return s, nil
}

func (repo *SessionsRepo) Revoke(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := repo.observe("sessions.revoke", func() error {
		var e error
		tag, e = repo.pool.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// RevokeAllForPrincipal ends every live session of one principal and returns the revoked ids.
func (repo *SessionsRepo) RevokeAllForPrincipal(ctx context.Context, principalID string) (ids []string, err error) {
	var rows pgx.Rows

	err = repo.observe("sessions.revoke_all", func() error {
		rows, err = repo.pool.Query(ctx, `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE principal_id = $1 AND revoked_at IS NULL
		RETURNING id
	`, principalID)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	ids = make([]string, 0)
	for rows.Next() {
		var id string
		if e := rows.Scan(&id); e != nil {
			err = e
			return
		}
		ids = append(ids, id)
	}

	err = rows.Err()
	return
}
