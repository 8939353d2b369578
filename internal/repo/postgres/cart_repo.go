package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/domain/money"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/domain/product"
	"github.com/quickkart/marketplace/internal/observability"
)

const cartLineColumns = `id, customer_id, customer_email, product_id, source_product_id, product_name, store_name, price_cents, image_ref, created_at`

const cartLineProductFK = "cart_lines_product_fk"

type CartRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCartRepo(pool *pgxpool.Pool, prom *observability.Prom) *CartRepo {
	return &CartRepo{pool: pool, prom: prom}
}

func (repo *CartRepo) observe(op string, fn func() error) error {
	return repo.prom.ObserveDB(op, fn)
}

func (repo *CartRepo) Contains(ctx context.Context, customerID, productName string) (bool, error) {
	var exists bool

	err := repo.observe("cart.contains", func() error {
		return repo.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM cart_lines
			WHERE customer_id = $1 AND product_name = $2
		)`, customerID, productName).Scan(&exists)
	})

	return exists, err
}

// Toggle removes the customer's line for p if one exists, otherwise adds a snapshot of p.
// The customer's principal row is locked so concurrent toggles for one customer serialize.
func (repo *CartRepo) Toggle(ctx context.Context, c cart.Customer, p product.Product) (res cart.ToggleResult, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = repo.observe("cart.toggle.lock_customer", func() error {
		var id string
		return tx.QueryRow(ctx, `SELECT id FROM principals WHERE id = $1 FOR UPDATE`, c.ID).Scan(&id)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = principal.ErrNotFound
		}
		return
	}

	var tag pgconn.CommandTag

	err = repo.observe("cart.toggle.remove", func() error {
		var e error
		tag, e = tx.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1 AND product_name = $2`, c.ID, p.Name)
		return e
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		if !p.Available() {
			err = cart.ErrProductUnavailable
			return
		}

		line := cart.NewLine(c, p)

		err = repo.observe("cart.toggle.add", func() error {
			_, e := tx.Exec(ctx, `
			INSERT INTO cart_lines (`+cartLineColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, line.ID, line.CustomerID, line.CustomerEmail, line.ProductID, line.SourceID, line.ProductName, line.StoreName, int64(line.Price), line.ImageRef, line.CreatedAt)
			return e
		})

		if err != nil {
			err = mapCartInsertError(err)
			return
		}

		res = cart.ToggleResult{InCart: true, Line: &line}
	}

	if err = tx.Commit(ctx); err != nil {
		res = cart.ToggleResult{}
		return
	}

	return
}

// RemoveDetached deletes the customer's line for productID after that product was deleted.
func (repo *CartRepo) RemoveDetached(ctx context.Context, customerID, productID string) (bool, error) {
	var tag pgconn.CommandTag

	err := repo.observe("cart.remove_detached", func() error {
		var e error
		tag, e = repo.pool.Exec(ctx, `
			DELETE FROM cart_lines
			WHERE customer_id = $1 AND source_product_id = $2 AND product_id IS NULL
		`, customerID, productID)
		return e
	})

	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// mapCartInsertError reports a product deleted between its read and the insert as not found.
func mapCartInsertError(err error) error {
	if isConstraint(err, cartLineProductFK) {
		return product.ErrNotFound
	}
	return err
}

func (repo *CartRepo) ListForCustomer(ctx context.Context, customerID string) (lines []cart.Line, err error) {
	var rows pgx.Rows

	err = repo.observe("cart.list_for_customer", func() error {
		rows, err = repo.pool.Query(ctx,
			`SELECT `+cartLineColumns+` FROM cart_lines WHERE customer_id = $1 ORDER BY seq ASC`, customerID)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	lines = make([]cart.Line, 0)

	for rows.Next() {
		var l cart.Line
		var cents int64

		e := rows.Scan(&l.ID, &l.CustomerID, &l.CustomerEmail, &l.ProductID, &l.SourceID, &l.ProductName, &l.StoreName, &cents, &l.ImageRef, &l.CreatedAt)
		if e != nil {
			err = e
			return
		}

		l.Price = money.Cents(cents)
		lines = append(lines, l)
	}

	err = rows.Err()
	return
}

func (repo *CartRepo) Clear(ctx context.Context, customerID string) (int64, error) {
	var tag pgconn.CommandTag

	err := repo.observe("cart.clear", func() error {
		var e error
		tag, e = repo.pool.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1`, customerID)
		return e
	})

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
