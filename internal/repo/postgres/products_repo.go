package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickkart/marketplace/internal/domain/money"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/observability"
)

const productColumns = `id, owner_id, owner_email, name, quantity, store_name, price_cents, description, image_ref, created_at, updated_at`

type ProductsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{pool: pool, prom: prom}
}

func (repo *ProductsRepo) observe(op string, fn func() error) error {
	return repo.prom.ObserveDB(op, fn)
}

func (repo *ProductsRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	err := repo.observe("products.create", func() error {
		_, e := repo.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, p.ID, p.OwnerID, p.OwnerEmail, p.Name, p.Quantity, p.StoreName, int64(p.Price), p.Description, p.ImageRef, p.CreatedAt, p.UpdatedAt)
		return e
	})

	if err != nil {
		return product.Product{}, err
	}

	return p, nil
}

// ListAvailable returns in-stock products in insertion order.
func (repo *ProductsRepo) ListAvailable(ctx context.Context) ([]product.Product, error) {
	return repo.list(ctx, "products.list_available",
		`SELECT `+productColumns+` FROM products WHERE quantity > 0 ORDER BY seq ASC`)
}

// ListBySeller returns every product the seller owns, including sold out ones.
func (repo *ProductsRepo) ListBySeller(ctx context.Context, ownerID string) ([]product.Product, error) {
	return repo.list(ctx, "products.list_by_seller",
		`SELECT `+productColumns+` FROM products WHERE owner_id = $1 ORDER BY seq ASC`, ownerID)
}

func (repo *ProductsRepo) list(ctx context.Context, op, query string, args ...any) (out []product.Product, err error) {
	var rows pgx.Rows

	err = repo.observe(op, func() error {
		rows, err = repo.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	out = make([]product.Product, 0)

	for rows.Next() {
		var p product.Product

		if e := scanProduct(rows, &p); e != nil {
			err = e
			return
		}
		out = append(out, p)
	}

	if e := rows.Err(); e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues(op, "rows_err").Inc()
		}
		err = e
	}

	return
}

func (repo *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	var p product.Product

	err := repo.observe("products.get_by_id", func() error {
		return scanProduct(repo.pool.QueryRow(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1`, id), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, err
	}

	return p, nil
}

// lockOwnedTx locks the product row and checks it belongs to ownerID.
func (repo *ProductsRepo) lockOwnedTx(ctx context.Context, tx pgx.Tx, id, ownerID string) error {
	var owner string

	err := repo.observe("products.lock_owned", func() error {
		return tx.QueryRow(ctx, `SELECT owner_id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&owner)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.ErrNotFound
		}
		return err
	}

	if owner != ownerID {
		return product.ErrForbidden
	}

	return nil
}

// DeleteOwned removes a product after checking ownership. Cart lines keep their snapshot.
func (repo *ProductsRepo) DeleteOwned(ctx context.Context, id, ownerID string) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = repo.lockOwnedTx(ctx, tx, id, ownerID); err != nil {
		return
	}

	err = repo.observe("products.delete", func() error {
		_, e := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

func (repo *ProductsRepo) UpdateQuantity(ctx context.Context, id, ownerID string, quantity int) (p product.Product, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = repo.lockOwnedTx(ctx, tx, id, ownerID); err != nil {
		return
	}

	err = repo.observe("products.update_quantity", func() error {
		return scanProduct(tx.QueryRow(ctx, `
		UPDATE products
		SET quantity = $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns, id, quantity), &p)
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

func scanProduct(row pgx.Row, p *product.Product) error {
	var cents int64

	err := row.Scan(&p.ID, &p.OwnerID, &p.OwnerEmail, &p.Name, &p.Quantity, &p.StoreName, &cents, &p.Description, &p.ImageRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	p.Price = money.Cents(cents)
	return nil
}
