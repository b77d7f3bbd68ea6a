package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productapi/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	productColumns = `id, name, price, image, is_blocked, version`

	insertProduct = `INSERT INTO products (id, name, price, image, is_blocked)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + productColumns

	findAllProducts = `SELECT ` + productColumns + ` FROM products ORDER BY created_at, seq`

	findProductByID = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	replaceProduct = `UPDATE products
SET name = $2, price = $3, image = $4, is_blocked = $5, version = version + 1
WHERE id = $1 AND version = $6
RETURNING ` + productColumns

	productExists = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	deleteProduct = `DELETE FROM products WHERE id = $1`
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.IsBlocked, &p.Version); err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert adds a new product to the system.
func (p *PgStore) Insert(ctx context.Context, product Product) (*Product, error) {
	created, err := scanProduct(p.db.QueryRow(ctx, insertProduct,
		product.ID, product.Name, product.Price, product.Image, product.IsBlocked))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// FindAll retrieves all products ordered by creation time.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, findAllProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		product, err := scanProduct(row)
		if err != nil {
			return Product{}, err
		}
		return *product, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id string) (*Product, error) {
	product, err := scanProduct(p.db.QueryRow(ctx, findProductByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// Replace overwrites a product's fields if product.Version matches the stored version.
// A miss is resolved into ErrProductNotFound or ErrVersionConflict with a second lookup.
func (p *PgStore) Replace(ctx context.Context, id string, product Product) (*Product, error) {
	updated, err := scanProduct(p.db.QueryRow(ctx, replaceProduct,
		id, product.Name, product.Price, product.Image, product.IsBlocked, product.Version))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	var exists bool
	if err := p.db.QueryRow(ctx, productExists, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", err)
	}
	if !exists {
		return nil, perrors.ErrProductNotFound
	}
	return nil, perrors.ErrVersionConflict
}

// RemoveByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) RemoveByID(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
