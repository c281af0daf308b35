package http

import (
	"context"
	"errors"

	"storefront-api/internal/products"
)

type stubProductService struct {
	listFn   func(ctx context.Context) ([]products.Product, error)
	getFn    func(ctx context.Context, id string) (products.Product, error)
	createFn func(ctx context.Context, in products.CreateInput) (products.Product, error)
	updateFn func(ctx context.Context, id string, in products.UpdateInput) (products.Product, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubProductService) ListProducts(ctx context.Context) ([]products.Product, error) {
	return s.listFn(ctx)
}
func (s *stubProductService) GetProduct(ctx context.Context, id string) (products.Product, error) {
	return s.getFn(ctx, id)
}
func (s *stubProductService) CreateProduct(ctx context.Context, in products.CreateInput) (products.Product, error) {
	return s.createFn(ctx, in)
}
func (s *stubProductService) UpdateProduct(ctx context.Context, id string, in products.UpdateInput) (products.Product, error) {
	return s.updateFn(ctx, id, in)
}
func (s *stubProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

var errEngineDown = errors.New("engine down")

// failingRepo is a repository whose engine is unreachable.
type failingRepo struct{}

func (failingRepo) List(context.Context) ([]products.Product, error) { return nil, errEngineDown }
func (failingRepo) Get(context.Context, string) (products.Product, error) {
	return products.Product{}, errEngineDown
}
func (failingRepo) Create(context.Context, products.CreateInput) (products.Product, error) {
	return products.Product{}, errEngineDown
}
func (failingRepo) Update(context.Context, string, products.UpdateInput) (products.Product, error) {
	return products.Product{}, errEngineDown
}
func (failingRepo) Delete(context.Context, string) error { return errEngineDown }
func (failingRepo) Health() error                        { return errEngineDown }
