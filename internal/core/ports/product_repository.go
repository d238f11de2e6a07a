package ports

import (
	"context"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Product, error)
	// UpdateOwned replaces the mutable fields of the product only while it is
	// still owned by ownerID. A missing or re-owned product yields domain.ErrProductNotFound.
	UpdateOwned(ctx context.Context, id, ownerID string, p *domain.Product) (*domain.Product, error)
	// DeleteOwned removes the product only while it is still owned by ownerID.
	DeleteOwned(ctx context.Context, id, ownerID string) error
}
