//go:build integration

package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"storefront-api/internal/products"
	"storefront-api/internal/products/messaging"
	"storefront-api/internal/products/service"

	"github.com/prometheus/client_golang/prometheus"
)

type productRepository interface {
	List(ctx context.Context) ([]products.Product, error)
	Get(ctx context.Context, id string) (products.Product, error)
	Create(ctx context.Context, in products.CreateInput) (products.Product, error)
	Update(ctx context.Context, id string, in products.UpdateInput) (products.Product, error)
	Delete(ctx context.Context, id string) error
	Health() error
}

// runRepositoryContract checks the behavior every engine must share.
// fresh must return a repository over an empty collection.
func runRepositoryContract(t *testing.T, fresh func(t *testing.T) productRepository) {
	ctx := context.Background()
	absent := products.NewID()

	t.Run("create then get returns the submitted fields", func(t *testing.T) {
		repo := fresh(t)

		created, err := repo.Create(ctx, sampleInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !products.ValidID(created.ID) {
			t.Fatalf("want 24-hex id, got %q", created.ID)
		}

		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertSameProduct(t, got, created)
	})

	t.Run("get absent id returns ErrNotFound", func(t *testing.T) {
		repo := fresh(t)
		if _, err := repo.Get(ctx, absent); !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("update merges only present fields", func(t *testing.T) {
		repo := fresh(t)
		created, _ := repo.Create(ctx, sampleInput())

		name := "X"
		updated, err := repo.Update(ctx, created.ID, products.UpdateInput{Name: &name})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := created
		want.Name = "X"
		assertSameProduct(t, updated, want)

		got, _ := repo.Get(ctx, created.ID)
		assertSameProduct(t, got, want)
	})

	t.Run("update replaces categories and measurements", func(t *testing.T) {
		repo := fresh(t)
		created, _ := repo.Create(ctx, sampleInput())

		m := products.Measurements{Height: 1, Width: 2, Weight: 3}
		updated, err := repo.Update(ctx, created.ID, products.UpdateInput{
			Categories:   []string{"a", "b"},
			Measurements: &m,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := created
		want.Categories = []string{"a", "b"}
		want.Measurements = m
		assertSameProduct(t, updated, want)
	})

	t.Run("update absent id returns ErrNotFound", func(t *testing.T) {
		repo := fresh(t)
		name := "X"
		if _, err := repo.Update(ctx, absent, products.UpdateInput{Name: &name}); !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("second delete returns ErrNotFound", func(t *testing.T) {
		repo := fresh(t)
		created, _ := repo.Create(ctx, sampleInput())

		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := repo.Delete(ctx, created.ID); !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("list returns insertion order", func(t *testing.T) {
		repo := fresh(t)

		names := []string{"Alpha", "Beta", "Gamma"}
		for _, name := range names {
			in := sampleInput()
			in.Name = name
			if _, err := repo.Create(ctx, in); err != nil {
				t.Fatalf("seed %q: %v", name, err)
			}
		}

		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != len(names) {
			t.Fatalf("want %d items, got %d", len(names), len(list))
		}
		for i, name := range names {
			if list[i].Name != name {
				t.Fatalf("want %q at %d, got %q", name, i, list[i].Name)
			}
		}
	})

	t.Run("uppercase id resolves through the service", func(t *testing.T) {
		repo := fresh(t)
		svc := service.New(repo, messaging.NopPublisher{}, slog.New(slog.NewJSONHandler(io.Discard, nil)), service.Counters{
			Created: prometheus.NewCounter(prometheus.CounterOpts{Name: "c_created"}),
			Updated: prometheus.NewCounter(prometheus.CounterOpts{Name: "c_updated"}),
			Deleted: prometheus.NewCounter(prometheus.CounterOpts{Name: "c_deleted"}),
		})

		created, err := svc.CreateProduct(ctx, sampleInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		upper := strings.ToUpper(created.ID)

		got, err := svc.GetProduct(ctx, upper)
		if err != nil {
			t.Fatalf("get %s: unexpected error: %v", upper, err)
		}
		assertSameProduct(t, got, created)

		if err := svc.DeleteProduct(ctx, upper); err != nil {
			t.Fatalf("delete %s: unexpected error: %v", upper, err)
		}
		if _, err := repo.Get(ctx, created.ID); !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("empty list is a non-nil slice", func(t *testing.T) {
		repo := fresh(t)
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Fatalf("want empty non-nil slice, got %#v", list)
		}
	})
}

func assertSameProduct(t *testing.T, got, want products.Product) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Price != want.Price ||
		got.Currency != want.Currency || got.Measurements != want.Measurements {
		t.Fatalf("want %+v, got %+v", want, got)
	}
	if len(got.Categories) != len(want.Categories) {
		t.Fatalf("want categories %v, got %v", want.Categories, got.Categories)
	}
	for i := range want.Categories {
		if got.Categories[i] != want.Categories[i] {
			t.Fatalf("want categories %v, got %v", want.Categories, got.Categories)
		}
	}
}
