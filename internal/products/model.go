package products

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

const (
	EventsQueue  = "products.events"
	EventCreated = "product_created"
	EventUpdated = "product_updated"
	EventDeleted = "product_deleted"
)

type Measurements struct {
	Height float64 `json:"height" example:"10"`
	Width  float64 `json:"width" example:"5"`
	Weight float64 `json:"weight" example:"1"`
}

type Product struct {
	ID           string       `json:"id" example:"65f1c2a9e4b0a1b2c3d4e5f6"`
	Name         string       `json:"name" example:"Sample"`
	Price        float64      `json:"price" example:"49.9"`
	Currency     string       `json:"currency" example:"USD"`
	Categories   []string     `json:"categories"`
	Measurements Measurements `json:"measurements"`
}

// CreateInput is a fully validated creation payload.
type CreateInput struct {
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	Categories   []string     `json:"categories"`
	Measurements Measurements `json:"measurements"`
}

// UpdateInput carries only the fields present in a partial update.
// A nil Categories slice means the field was absent.
type UpdateInput struct {
	Name         *string       `json:"name,omitempty"`
	Price        *float64      `json:"price,omitempty"`
	Currency     *string       `json:"currency,omitempty"`
	Categories   []string      `json:"categories,omitempty"`
	Measurements *Measurements `json:"measurements,omitempty"`
}

func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.Price == nil && in.Currency == nil &&
		in.Categories == nil && in.Measurements == nil
}

// Apply merges the present fields of in into p.
func (in UpdateInput) Apply(p Product) Product {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.Categories != nil {
		p.Categories = append([]string(nil), in.Categories...)
	}
	if in.Measurements != nil {
		p.Measurements = *in.Measurements
	}
	return p
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
