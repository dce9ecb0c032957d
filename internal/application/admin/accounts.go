package admin

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
)

// ListUsers lists accounts for the users screen
func (s *Service) ListUsers(ctx context.Context, filter identity.UserAccountFilter) ([]identity.UserAccount, error) {
	key := cache.NewKey(cache.GroupUsers, filter.Values())
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]identity.UserAccount, error) {
		return s.backend.ListUsers(ctx, filter)
	})
}

func (s *Service) GetUser(ctx context.Context, id string) (*identity.UserAccount, error) {
	return get(ctx, s, cache.GroupUsers, id, s.backend.GetUser)
}

// UpdateUser changes roles and activation. Roles are normalized and must
// be known.
func (s *Service) UpdateUser(ctx context.Context, id string, upd identity.AccountUpdate) (*identity.UserAccount, error) {
	if upd.Roles == nil && upd.IsActive == nil {
		return nil, errNothingToUpdate
	}
	if upd.Roles != nil {
		upd.Roles = identity.NormalizeRoles(upd.Roles)
		if len(upd.Roles) == 0 {
			return nil, shared.ErrInvalidInput.WithMessage("Se requiere al menos un rol")
		}
		for _, r := range upd.Roles {
			if r != identity.RoleAdmin && r != identity.RoleEmployee && r != identity.RoleUser {
				return nil, shared.ErrInvalidInput.WithMessage("Rol desconocido: " + r)
			}
		}
	}
	u, err := mutate(ctx, s, cache.GroupUsers, "update", func() (identity.UserAccount, error) {
		return s.backend.UpdateUser(ctx, id, upd)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListOrders lists every order matching filter
func (s *Service) ListOrders(ctx context.Context, filter checkout.OrderFilter) ([]checkout.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	key := cache.NewKey(cache.GroupOrders, filter.Values())
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]checkout.Order, error) {
		return s.backend.ListOrders(ctx, filter)
	})
}

func (s *Service) GetOrder(ctx context.Context, id string) (*checkout.Order, error) {
	return get(ctx, s, cache.GroupOrders, id, s.backend.GetOrder)
}

// UploadTarget selects the backend upload endpoint
type UploadTarget int

const (
	// UploadCatalogImage stores an image through /upload
	UploadCatalogImage UploadTarget = iota
	// UploadFileImage stores an image through /files/image
	UploadFileImage
)

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// Upload stores an image and returns its public url
func (s *Service) Upload(ctx context.Context, target UploadTarget, filename string, content io.Reader) (string, error) {
	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return "", shared.ErrInvalidInput.WithMessage("Se requiere un archivo")
	}
	if !imageExtensions[strings.ToLower(path.Ext(filename))] {
		return "", shared.ErrInvalidInput.WithMessage("Solo se permiten imágenes")
	}
	if target == UploadFileImage {
		return s.backend.UploadFile(ctx, filename, content)
	}
	return s.backend.UploadImage(ctx, filename, content)
}
