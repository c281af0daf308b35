package repository

import (
	"context"
	"errors"
	"testing"

	"storefront-api/internal/products"
)

func sampleInput() products.CreateInput {
	return products.CreateInput{
		Name:         "Sample",
		Price:        49.9,
		Currency:     "USD",
		Categories:   []string{"category"},
		Measurements: products.Measurements{Height: 10, Width: 5, Weight: 1},
	}
}

func TestMemoryRepository_CRUD(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

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
	if got.Name != "Sample" || got.Price != 49.9 || got.Measurements.Height != 10 {
		t.Fatalf("unexpected product %+v", got)
	}

	price := 10.0
	updated, err := repo.Update(ctx, created.ID, products.UpdateInput{Price: &price})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Price != 10 || updated.Name != "Sample" {
		t.Fatalf("want merged update, got %+v", updated)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !errors.Is(err, products.ErrNotFound) {
		t.Fatalf("want ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.Update(ctx, created.ID, products.UpdateInput{Price: &price}); !errors.Is(err, products.ErrNotFound) {
		t.Fatalf("want ErrNotFound on update after delete, got %v", err)
	}
}

func TestMemoryRepository_ListInInsertionOrder(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	names := []string{"Alpha", "Beta", "Gamma"}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		in := sampleInput()
		in.Name = name
		p, err := repo.Create(ctx, in)
		if err != nil {
			t.Fatalf("seed %q: %v", name, err)
		}
		ids = append(ids, p.ID)
	}

	if err := repo.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Alpha" || list[1].Name != "Gamma" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	p, _ := repo.Create(ctx, sampleInput())
	p.Categories[0] = "mutated"

	got, _ := repo.Get(ctx, p.ID)
	if got.Categories[0] != "category" {
		t.Fatalf("stored categories were mutated: %v", got.Categories)
	}
}
