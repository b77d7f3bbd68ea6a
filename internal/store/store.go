// Package store provides an interface for product storage operations.
package store

import (
	"context"
)

// Product represents a product entity in the store.
// Version is bumped by every successful Replace and is never exposed over the API.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	IsBlocked bool   `json:"isBlocked"`
	Version   int32  `json:"-"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// Insert stores a new product and returns it with its initial version.
	Insert(ctx context.Context, product Product) (*Product, error)

	// FindAll returns all products in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*Product, error)

	// Replace overwrites the product with the given ID, keeping its position.
	// Returns ErrProductNotFound if no product exists with the given ID
	// and ErrVersionConflict if product.Version is not the stored version.
	Replace(ctx context.Context, id string, product Product) (*Product, error)

	// RemoveByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	RemoveByID(ctx context.Context, id string) error

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}
