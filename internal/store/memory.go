package store

import (
	"context"
	"slices"
	"sync"

	perrors "github.com/abgdnv/productapi/internal/errors"
)

// Memory implements ProductStore on top of a slice guarded by a mutex.
type Memory struct {
	mu       sync.RWMutex
	products []Product
}

// NewMemory creates an empty in-memory ProductStore.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Insert(_ context.Context, product Product) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	product.Version = 1
	m.products = append(m.products, product)
	return &product, nil
}

func (m *Memory) FindAll(_ context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.products), nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, perrors.ErrProductNotFound
	}
	product := m.products[i]
	return &product, nil
}

func (m *Memory) Replace(_ context.Context, id string, product Product) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, perrors.ErrProductNotFound
	}
	if m.products[i].Version != product.Version {
		return nil, perrors.ErrVersionConflict
	}
	product.ID = id
	product.Version++
	m.products[i] = product
	return &product, nil
}

func (m *Memory) RemoveByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return perrors.ErrProductNotFound
	}
	m.products = slices.Delete(m.products, i, i+1)
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

// indexOf must be called with the lock held.
func (m *Memory) indexOf(id string) int {
	return slices.IndexFunc(m.products, func(p Product) bool { return p.ID == id })
}
