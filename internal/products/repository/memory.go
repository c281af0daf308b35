package repository

import (
	"context"
	"sync"

	"storefront-api/internal/products"
)

// MemoryRepository keeps products in process memory in insertion order.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]products.Product
	order []string
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]products.Product)}
}

func (r *MemoryRepository) List(_ context.Context) ([]products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]products.Product, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, clone(r.items[id]))
	}
	return list, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepository) Create(_ context.Context, in products.CreateInput) (products.Product, error) {
	p := products.Product{
		ID:           products.NewID(),
		Name:         in.Name,
		Price:        in.Price,
		Currency:     in.Currency,
		Categories:   append([]string(nil), in.Categories...),
		Measurements: in.Measurements,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = p
	r.order = append(r.order, p.ID)
	return clone(p), nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, in products.UpdateInput) (products.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	p = in.Apply(p)
	r.items[id] = p
	return clone(p), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return products.ErrNotFound
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) Health() error {
	return nil
}

func clone(p products.Product) products.Product {
	p.Categories = append([]string(nil), p.Categories...)
	return p
}
