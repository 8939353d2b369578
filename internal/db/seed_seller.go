package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickkart/marketplace/internal/config"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/security"
)

// EnsureSeedSeller creates the configured demo seller once. It is a no-op without credentials.
func EnsureSeedSeller(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedSellerEmail == "" || cfg.SeedSellerPassword == "" {
		return nil
	}

	email := principal.NormalizeEmail(cfg.SeedSellerEmail)

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM principals WHERE lower(email) = $1`, email).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedSellerPassword)

	if err != nil {
		return err
	}

	store := cfg.SeedSellerStore
	if store == "" {
		store = "QuickKart"
	}

	name := cfg.SeedSellerName
	if name == "" {
		name = store
	}

	p := principal.New(principal.SignUpRequest{
		Email:     email,
		Name:      name,
		Role:      principal.RoleSeller,
		StoreName: store,
	}, hash)

	_, err = pool.Exec(ctx,
		`INSERT INTO principals (id, email, password_hash, name, phone, address, role, store_name, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT DO NOTHING`,
		p.ID, p.Email, p.PasswordHash, p.Name, p.Phone, p.Address, string(p.Role), p.StoreName, p.CreatedAt, p.UpdatedAt,
	)

	return err
}
