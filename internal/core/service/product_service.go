package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

// ProductService enforces ownership on every product mutation.
type ProductService struct {
	repo    ports.ProductRepository
	assets  ports.AssetStore
	cleaner ports.AssetCleaner
	log     zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, assets ports.AssetStore, cleaner ports.AssetCleaner, log zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, assets: assets, cleaner: cleaner, log: log}
}

// Create stores the photo and the product. OwnerID comes from actor only.
func (s *ProductService) Create(ctx context.Context, actor *domain.User, in ports.CreateProductInput) (*domain.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" || in.Photo == nil {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be a positive number", domain.ErrValidation)
	}

	photo, err := s.assets.Save(ctx, in.Photo.Filename, in.Photo.Content)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		Photo:     photo,
		OwnerID:   actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := product.Validate(); err != nil {
		s.cleaner.Schedule(photo)
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.cleaner.Schedule(photo)
		s.log.Error().Err(err).Str("owner_id", actor.ID).Msg("failed to create product")
		return nil, err
	}

	s.log.Info().Str("product_id", created.ID).Str("owner_id", actor.ID).Msg("product created")
	return created, nil
}

// List returns only the actor's products.
func (s *ProductService) List(ctx context.Context, actor *domain.User) ([]*domain.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, actor.ID)
}

// Update applies the changes when actor owns the product. A replaced photo
// is removed best-effort once the new state is committed.
func (s *ProductService) Update(ctx context.Context, actor *domain.User, id string, in ports.UpdateProductInput) (*domain.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be a positive number", domain.ErrValidation)
	}

	current, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	changes := domain.ProductChanges{Name: in.Name, Price: in.Price}
	var newPhoto string
	if in.Photo != nil {
		newPhoto, err = s.assets.Save(ctx, in.Photo.Filename, in.Photo.Content)
		if err != nil {
			return nil, err
		}
		changes.Photo = &newPhoto
	}

	next := changes.Apply(*current)
	if err := next.Validate(); err != nil {
		s.scheduleIfSet(newPhoto)
		return nil, err
	}

	updated, err := s.repo.UpdateOwned(ctx, current.ID, actor.ID, &next)
	if err != nil {
		s.scheduleIfSet(newPhoto)
		return nil, err
	}

	if newPhoto != "" && current.Photo != "" && current.Photo != newPhoto {
		s.cleaner.Schedule(current.Photo)
	}

	s.log.Info().Str("product_id", updated.ID).Str("owner_id", actor.ID).Msg("product updated")
	return updated, nil
}

// Delete removes the product when actor owns it. Removing its photo is
// best-effort and never fails the deletion.
func (s *ProductService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	current, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteOwned(ctx, current.ID, actor.ID); err != nil {
		return err
	}

	s.scheduleIfSet(current.Photo)
	s.log.Info().Str("product_id", current.ID).Str("owner_id", actor.ID).Msg("product deleted")
	return nil
}

// ownedProduct reads the product fresh and checks existence, then ownership.
func (s *ProductService) ownedProduct(ctx context.Context, actor *domain.User, id string) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.OwnedBy(actor.ID) {
		s.log.Warn().Str("product_id", id).Str("actor_id", actor.ID).Msg("ownership check failed")
		return nil, domain.ErrNotOwner
	}
	return product, nil
}

func (s *ProductService) scheduleIfSet(path string) {
	if path != "" {
		s.cleaner.Schedule(path)
	}
}

func requireAdmin(actor *domain.User) error {
	if actor == nil || actor.ID == "" {
		return domain.ErrUnauthorized
	}
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}
