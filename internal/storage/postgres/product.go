package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/panel-storefront/internal/catalog"
	"github.com/xenking/panel-storefront/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, category, badge, description, specs::text
		FROM products ORDER BY position, id`

	upsertProductSQL = `INSERT INTO products (id, position, name, price, category, badge, description, specs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			badge = EXCLUDED.badge,
			description = EXCLUDED.description,
			specs = EXCLUDED.specs`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository serves the catalog from the products table.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the catalog in display order.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// Upsert writes products in one transaction; their slice order becomes the
// display order.
func (r *ProductRepository) Upsert(ctx context.Context, products []product.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, p := range products {
			batch.Queue(upsertProductSQL,
				p.ID, i, p.Name, p.Price, string(p.Category), p.Badge, p.Description,
				string(catalog.EncodeSpecs(p.Specs)),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upserting products: %w", err)
		}
		return nil
	})
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p        product.Product
		category string
		specs    string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &category, &p.Badge, &p.Description, &specs); err != nil {
		return p, err
	}

	var err error
	if p.Category, err = product.ParseCategory(category); err != nil {
		return p, fmt.Errorf("product %s: %w", p.ID, err)
	}
	if p.Specs, err = catalog.DecodeSpecs([]byte(specs)); err != nil {
		return p, fmt.Errorf("product %s: %w", p.ID, err)
	}
	return p, nil
}
