package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
)

var (
	admin1 = &domain.User{ID: "a1", Username: "admin1", Role: domain.RoleAdmin}
	admin2 = &domain.User{ID: "a2", Username: "admin2", Role: domain.RoleAdmin}
	plain  = &domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser}
)

type productFixture struct {
	repo    *stubProductRepo
	assets  *stubAssetStore
	cleaner *stubCleaner
	svc     *ProductService
}

func newProductFixture() *productFixture {
	repo := newStubProductRepo()
	assets := &stubAssetStore{}
	cleaner := &stubCleaner{}
	return &productFixture{
		repo:    repo,
		assets:  assets,
		cleaner: cleaner,
		svc:     NewProductService(repo, assets, cleaner, zerolog.Nop()),
	}
}

func photo(name string) *ports.PhotoUpload {
	return &ports.PhotoUpload{Filename: name, Content: strings.NewReader("img")}
}

func ptr[T any](v T) *T { return &v }

func (f *productFixture) seed(t *testing.T, owner *domain.User, name string) *domain.Product {
	t.Helper()
	p, err := f.svc.Create(context.Background(), owner, ports.CreateProductInput{Name: name, Price: 10, Photo: photo(name + ".png")})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return p
}

func TestProductService_Create_SetsOwnerFromActor(t *testing.T) {
	f := newProductFixture()

	p, err := f.svc.Create(context.Background(), admin1, ports.CreateProductInput{Name: "Lamp", Price: 19.5, Photo: photo("lamp.png")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.OwnerID != admin1.ID {
		t.Fatalf("expected owner %s, got %s", admin1.ID, p.OwnerID)
	}
	if !strings.HasPrefix(p.Photo, domain.UploadsPrefix) {
		t.Fatalf("unexpected photo path %q", p.Photo)
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp")
	}
}

func TestProductService_Create_Validation(t *testing.T) {
	f := newProductFixture()

	cases := []struct {
		name string
		in   ports.CreateProductInput
	}{
		{"missing name", ports.CreateProductInput{Price: 1, Photo: photo("a.png")}},
		{"missing photo", ports.CreateProductInput{Name: "x", Price: 1}},
		{"negative price", ports.CreateProductInput{Name: "x", Price: -1, Photo: photo("a.png")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(context.Background(), admin1, tc.in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if len(f.assets.saved) != 0 {
		t.Fatalf("invalid input must not store assets")
	}
}

func TestProductService_Create_RoleGate(t *testing.T) {
	f := newProductFixture()

	if _, err := f.svc.Create(context.Background(), plain, ports.CreateProductInput{Name: "x", Price: 1, Photo: photo("a.png")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), nil, ports.CreateProductInput{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestProductService_Create_PersistFailureCleansUpPhoto(t *testing.T) {
	f := newProductFixture()
	f.repo.createErr = errors.New("write conflict")

	if _, err := f.svc.Create(context.Background(), admin1, ports.CreateProductInput{Name: "x", Price: 1, Photo: photo("a.png")}); err == nil {
		t.Fatalf("expected error")
	}
	if len(f.cleaner.scheduled) != 1 || f.cleaner.scheduled[0] != f.assets.saved[0] {
		t.Fatalf("expected uploaded photo to be scheduled for removal, got %v", f.cleaner.scheduled)
	}
}

func TestProductService_List_OnlyOwn(t *testing.T) {
	f := newProductFixture()
	f.seed(t, admin1, "a")
	f.seed(t, admin1, "b")
	f.seed(t, admin2, "c")

	list, err := f.svc.List(context.Background(), admin1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 products, got %d", len(list))
	}
	for _, p := range list {
		if p.OwnerID != admin1.ID {
			t.Fatalf("listed foreign product %+v", p)
		}
	}
}

func TestProductService_Update_Owner(t *testing.T) {
	f := newProductFixture()
	p := f.seed(t, admin1, "lamp")
	oldPhoto := p.Photo

	updated, err := f.svc.Update(context.Background(), admin1, p.ID, ports.UpdateProductInput{
		Name:  ptr("Desk lamp"),
		Photo: photo("new.png"),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Desk lamp" || updated.Price != 10 {
		t.Fatalf("unexpected product: %+v", updated)
	}
	if updated.Photo == oldPhoto {
		t.Fatalf("expected photo to change")
	}
	if updated.OwnerID != admin1.ID {
		t.Fatalf("owner must be immutable")
	}
	if len(f.cleaner.scheduled) != 1 || f.cleaner.scheduled[0] != oldPhoto {
		t.Fatalf("expected old photo cleanup, got %v", f.cleaner.scheduled)
	}
}

func TestProductService_Update_NonOwnerForbidden(t *testing.T) {
	f := newProductFixture()
	p := f.seed(t, admin1, "lamp")

	_, err := f.svc.Update(context.Background(), admin2, p.ID, ports.UpdateProductInput{Name: ptr("stolen"), Price: ptr(0.0)})
	if !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), p.ID)
	if stored.Name != "lamp" || stored.Price != 10 {
		t.Fatalf("product changed by non-owner: %+v", stored)
	}
}

func TestProductService_Update_NotFoundBeforeOwnership(t *testing.T) {
	f := newProductFixture()

	if _, err := f.svc.Update(context.Background(), admin2, "missing", ports.UpdateProductInput{Name: ptr("x")}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_Update_NegativePrice(t *testing.T) {
	f := newProductFixture()
	p := f.seed(t, admin1, "lamp")

	if _, err := f.svc.Update(context.Background(), admin1, p.ID, ports.UpdateProductInput{Price: ptr(-3.0)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProductService_Update_WriteFailureCleansUpNewPhoto(t *testing.T) {
	f := newProductFixture()
	p := f.seed(t, admin1, "lamp")
	f.repo.updateErr = errors.New("write failed")

	if _, err := f.svc.Update(context.Background(), admin1, p.ID, ports.UpdateProductInput{Photo: photo("n.png")}); err == nil {
		t.Fatalf("expected error")
	}
	newPhoto := f.assets.saved[len(f.assets.saved)-1]
	if len(f.cleaner.scheduled) != 1 || f.cleaner.scheduled[0] != newPhoto {
		t.Fatalf("expected new photo cleanup, got %v", f.cleaner.scheduled)
	}
}

func TestProductService_Delete_Owner(t *testing.T) {
	f := newProductFixture()
	p := f.seed(t, admin1, "lamp")

	if err := f.svc.Delete(context.Background(), admin1, p.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := f.repo.FindByID(context.Background(), p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected product removed, got %v", err)
	}
	if len(f.cleaner.scheduled) != 1 || f.cleaner.scheduled[0] != p.Photo {
		t.Fatalf("expected photo cleanup, got %v", f.cleaner.scheduled)
	}
}

func TestProductService_Delete_NonOwnerForbidden(t *testing.T) {
	f := newProductFixture()
	p := f.seed(t, admin1, "lamp")

	if err := f.svc.Delete(context.Background(), admin2, p.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	list, _ := f.svc.List(context.Background(), admin1)
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("product should still be listed under its owner")
	}
	if len(f.cleaner.scheduled) != 0 {
		t.Fatalf("no cleanup expected, got %v", f.cleaner.scheduled)
	}
}
