package ports

import (
	"context"
	"io"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
)

// PhotoUpload is an uploaded file handed from the transport layer to the service.
type PhotoUpload struct {
	Filename string
	Content  io.Reader
}

// CreateProductInput carries the data needed to create a product.
// The owner is always the acting identity, never client input.
type CreateProductInput struct {
	Name  string
	Price float64
	Photo *PhotoUpload
}

// UpdateProductInput carries the optional fields of a product update.
type UpdateProductInput struct {
	Name  *string
	Price *float64
	Photo *PhotoUpload
}

// ProductService defines owner-scoped use cases for products.
type ProductService interface {
	Create(ctx context.Context, actor *domain.User, input CreateProductInput) (*domain.Product, error)
	List(ctx context.Context, actor *domain.User) ([]*domain.Product, error)
	Update(ctx context.Context, actor *domain.User, id string, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}
