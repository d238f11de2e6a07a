package domain

import (
	"fmt"
	"strings"
	"time"
)

// UploadsPrefix is the public path prefix every stored product photo lives under.
const UploadsPrefix = "/uploads/"

// Product is a catalog entry owned by the admin that created it.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Photo     string    `json:"photo"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the invariants a product must hold before it is persisted.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be a positive number", ErrValidation)
	}
	if !strings.HasPrefix(p.Photo, UploadsPrefix) {
		return fmt.Errorf("%w: invalid photo path", ErrValidation)
	}
	if p.OwnerID == "" {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}
	return nil
}

// OwnedBy reports whether userID is the product's creator.
func (p *Product) OwnedBy(userID string) bool {
	return p.OwnerID != "" && p.OwnerID == userID
}

// ProductChanges carries the optional fields of an update. Nil means unchanged.
type ProductChanges struct {
	Name  *string
	Price *float64
	Photo *string
}

// Apply returns a copy of p with the changes applied. OwnerID and CreatedAt are never touched.
func (c ProductChanges) Apply(p Product) Product {
	if c.Name != nil && strings.TrimSpace(*c.Name) != "" {
		p.Name = *c.Name
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Photo != nil && *c.Photo != "" {
		p.Photo = *c.Photo
	}
	return p
}
