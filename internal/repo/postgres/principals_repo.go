package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/observability"
)

const principalColumns = `id, email, password_hash, name, phone, address, role, store_name, created_at, updated_at`

type PrincipalsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPrincipalsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PrincipalsRepo {
	return &PrincipalsRepo{pool: pool, prom: prom}
}

func (repo *PrincipalsRepo) observe(op string, fn func() error) error {
	return repo.prom.ObserveDB(op, fn)
}

func (repo *PrincipalsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

func (repo *PrincipalsRepo) CreateTx(ctx context.Context, tx pgx.Tx, p principal.Principal) error {
	err := repo.observe("principals.create_tx", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO principals (`+principalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, p.ID, p.Email, p.PasswordHash, p.Name, p.Phone, p.Address, string(p.Role), p.StoreName, p.CreatedAt, p.UpdatedAt)
		return e
	})

	if IsUniqueViolation(err) {
		return principal.ErrDuplicateEmail
	}
	return err
}

func (repo *PrincipalsRepo) CreateProfileTx(ctx context.Context, tx pgx.Tx, cp principal.CustomerProfile) error {
	err := repo.observe("customer_profiles.create_tx", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO customer_profiles (principal_id, email, name, phone, address, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, cp.PrincipalID, cp.Email, cp.Name, cp.Phone, cp.Address, cp.CreatedAt)
		return e
	})

	if IsUniqueViolation(err) {
		return principal.ErrDuplicateEmail
	}
	return err
}

// Register writes the principal and, for customers, the profile row in one transaction.
func (repo *PrincipalsRepo) Register(ctx context.Context, p principal.Principal) (out principal.Principal, err error) {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = repo.CreateTx(ctx, tx, p); err != nil {
		return
	}

	if p.Role == principal.RoleCustomer {
		if err = repo.CreateProfileTx(ctx, tx, principal.ProfileFor(p)); err != nil {
			return
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return
	}

	out = p
	return
}

func (repo *PrincipalsRepo) GetByEmail(ctx context.Context, email string) (principal.Principal, error) {
	var p principal.Principal

	err := repo.observe("principals.get_by_email", func() error {
		return scanPrincipal(repo.pool.QueryRow(ctx,
			`SELECT `+principalColumns+` FROM principals WHERE lower(email) = $1`,
			principal.NormalizeEmail(email),
		), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return principal.Principal{}, principal.ErrNotFound
		}
		return principal.Principal{}, err
	}

	return p, nil
}

func (repo *PrincipalsRepo) GetByID(ctx context.Context, id string) (principal.Principal, error) {
	var p principal.Principal

	err := repo.observe("principals.get_by_id", func() error {
		return scanPrincipal(repo.pool.QueryRow(ctx,
			`SELECT `+principalColumns+` FROM principals WHERE id = $1`, id,
		), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return principal.Principal{}, principal.ErrNotFound
		}
		return principal.Principal{}, err
	}

	return p, nil
}

func (repo *PrincipalsRepo) GetProfile(ctx context.Context, principalID string) (principal.CustomerProfile, error) {
	var cp principal.CustomerProfile

	err := repo.observe("customer_profiles.get", func() error {
		return repo.pool.QueryRow(ctx, `
		SELECT principal_id, email, name, phone, address, created_at
		FROM customer_profiles
		WHERE principal_id = $1
	`, principalID).Scan(&cp.PrincipalID, &cp.Email, &cp.Name, &cp.Phone, &cp.Address, &cp.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return principal.CustomerProfile{}, principal.ErrProfileNotFound
		}
		return principal.CustomerProfile{}, err
	}

	return cp, nil
}

func scanPrincipal(row pgx.Row, p *principal.Principal) error {
	var role string

	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.Name, &p.Phone, &p.Address, &role, &p.StoreName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	p.Role = principal.Role(role)
	return nil
}
