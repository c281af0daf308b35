package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/products"

	"github.com/lib/pq"
)

const healthCheckTimeout = 2 * time.Second

const productColumns = `id, name, price, currency, categories, height, width, weight`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (products.Product, error) {
	var p products.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Currency,
		pq.Array(&p.Categories),
		&p.Measurements.Height,
		&p.Measurements.Width,
		&p.Measurements.Weight,
	)
	return p, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]products.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, in products.CreateInput) (products.Product, error) {
	query := `
		INSERT INTO products (id, name, price, currency, categories, height, width, weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	p := products.Product{
		ID:           products.NewID(),
		Name:         in.Name,
		Price:        in.Price,
		Currency:     in.Currency,
		Categories:   in.Categories,
		Measurements: in.Measurements,
	}

	if _, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Price,
		p.Currency,
		pq.Array(p.Categories),
		p.Measurements.Height,
		p.Measurements.Width,
		p.Measurements.Weight,
	); err != nil {
		return products.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// Update merges the present fields in one statement and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, id string, in products.UpdateInput) (products.Product, error) {
	query := `
		UPDATE products SET
			name       = COALESCE($2, name),
			price      = COALESCE($3, price),
			currency   = COALESCE($4, currency),
			categories = COALESCE($5, categories),
			height     = COALESCE($6, height),
			width      = COALESCE($7, width),
			weight     = COALESCE($8, weight)
		WHERE id = $1
		RETURNING ` + productColumns

	var height, width, weight any
	if m := in.Measurements; m != nil {
		height, width, weight = m.Height, m.Width, m.Weight
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		id,
		nullable(in.Name),
		nullable(in.Price),
		nullable(in.Currency),
		pq.Array(in.Categories),
		height,
		width,
		weight,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return products.Product{}, products.ErrNotFound
	}
	if err != nil {
		return products.Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return products.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
