package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront-api/internal/apperr"
	"storefront-api/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

// publishTimeout bounds how long a request waits on the broker.
const publishTimeout = 5 * time.Second

type Repository interface {
	List(ctx context.Context) ([]products.Product, error)
	Get(ctx context.Context, id string) (products.Product, error)
	Create(ctx context.Context, in products.CreateInput) (products.Product, error)
	Update(ctx context.Context, id string, in products.UpdateInput) (products.Product, error)
	Delete(ctx context.Context, id string) error
	Health() error
}

type Publisher interface {
	Publish(ctx context.Context, event products.ProductEvent) error
}

type Counters struct {
	Created prometheus.Counter
	Updated prometheus.Counter
	Deleted prometheus.Counter
}

type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	counters  Counters
}

func New(repo Repository, publisher Publisher, logger *slog.Logger, counters Counters) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		counters:  counters,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]products.Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageError, fmt.Errorf("repo list: %w", err), "Failed to fetch products")
	}
	return items, nil
}

func (s *Service) GetProduct(ctx context.Context, rawID string) (products.Product, error) {
	id, err := checkID(rawID)
	if err != nil {
		return products.Product{}, err
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return products.Product{}, lookupError(rawID, fmt.Errorf("repo get: %w", err))
	}
	return p, nil
}

// CreateProduct stores a validated product and returns it as constructed.
func (s *Service) CreateProduct(ctx context.Context, in products.CreateInput) (products.Product, error) {
	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return products.Product{}, apperr.Wrap(apperr.StorageError, fmt.Errorf("repo create: %w", err), "Failed to create product")
	}

	s.publish(ctx, products.EventCreated, p.ID, p.Name)
	s.counters.Created.Inc()
	return p, nil
}

// UpdateProduct merges the present fields and returns the stored result.
func (s *Service) UpdateProduct(ctx context.Context, rawID string, in products.UpdateInput) (products.Product, error) {
	id, err := checkID(rawID)
	if err != nil {
		return products.Product{}, err
	}

	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return products.Product{}, lookupError(rawID, fmt.Errorf("repo update: %w", err))
	}

	s.publish(ctx, products.EventUpdated, p.ID, p.Name)
	s.counters.Updated.Inc()
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := checkID(rawID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(rawID, fmt.Errorf("repo delete: %w", err))
	}

	s.publish(ctx, products.EventDeleted, id, "")
	s.counters.Deleted.Inc()
	return nil
}

// Health reports whether the storage engine is reachable.
func (s *Service) Health() error {
	return s.repo.Health()
}

func (s *Service) publish(ctx context.Context, eventType, id, name string) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, products.ProductEvent{
		EventType: eventType,
		ProductID: id,
		Name:      name,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("publish "+eventType+" event failed",
			"product_id", id,
			"error", err,
		)
	}
}

// checkID validates id and returns the canonical lowercase form engines match on.
func checkID(id string) (string, error) {
	canonical, ok := products.CanonicalID(id)
	if !ok {
		return "", apperr.New(apperr.InvalidArgument, "Invalid product ID format")
	}
	return canonical, nil
}

func lookupError(id string, err error) error {
	if errors.Is(err, products.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, err, fmt.Sprintf("Product with ID %s not found", id))
	}
	return apperr.Wrap(apperr.StorageError, err, "Storage operation failed")
}
