package users

import (
	"context"
	"errors"
	"strconv"

	"storefront-api/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
)

type Service struct {
	store            *Store
	created          prometheus.Counter
	ageZeroIsMissing bool
}

type ServiceOption func(*Service)

// WithAgeZeroIsMissing rejects age 0 on create as if the field were absent.
func WithAgeZeroIsMissing(enabled bool) ServiceOption {
	return func(s *Service) { s.ageZeroIsMissing = enabled }
}

func NewService(store *Store, created prometheus.Counter, opts ...ServiceOption) *Service {
	s := &Service{store: store, created: created}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(_ context.Context) []User {
	return s.store.List()
}

func (s *Service) Count(_ context.Context) int {
	return s.store.Count()
}

// Get parses rawID as a decimal integer and looks the user up.
func (s *Service) Get(_ context.Context, rawID string) (User, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return User{}, apperr.Wrap(apperr.InvalidArgument, err, "Invalid user ID format")
	}

	u, err := s.store.GetByID(id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.Wrap(apperr.NotFound, err, "User not found")
	}
	return u, err
}

func (s *Service) Create(_ context.Context, in CreateInput) (User, error) {
	if s.ageZeroIsMissing && in.Age == 0 {
		return User{}, apperr.New(apperr.InvalidArgument, "age is required")
	}

	u := s.store.Create(in)
	s.created.Inc()
	return u, nil
}
