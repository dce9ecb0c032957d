// Package admin implements the back-office mutations. Reads go through
// the query cache; every successful mutation invalidates the groups it
// affects and never edits cached lists in place.
package admin

import (
	"context"
	"io"
	"net/url"

	"github.com/autoparts/storefront/internal/domain/catalog"
	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Backend is the slice of the REST backend the back-office writes to
type Backend interface {
	CreateSparePart(ctx context.Context, d catalog.SparePartDraft) (catalog.SparePart, error)
	UpdateSparePart(ctx context.Context, id string, p catalog.SparePartPatch) (catalog.SparePart, error)
	DeleteSparePart(ctx context.Context, id string) error

	GetCategory(ctx context.Context, id string) (catalog.Category, error)
	CreateCategory(ctx context.Context, in catalog.CategoryInput) (catalog.Category, error)
	UpdateCategory(ctx context.Context, id string, in catalog.CategoryInput) (catalog.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	GetBrand(ctx context.Context, id string) (catalog.Brand, error)
	CreateBrand(ctx context.Context, in catalog.BrandInput) (catalog.Brand, error)
	UpdateBrand(ctx context.Context, id string, in catalog.BrandInput) (catalog.Brand, error)
	DeleteBrand(ctx context.Context, id string) error

	GetBrandModel(ctx context.Context, id string) (catalog.BrandModel, error)
	CreateBrandModel(ctx context.Context, in catalog.BrandModelInput) (catalog.BrandModel, error)
	UpdateBrandModel(ctx context.Context, id string, in catalog.BrandModelInput) (catalog.BrandModel, error)
	DeleteBrandModel(ctx context.Context, id string) error

	GetModelType(ctx context.Context, id string) (catalog.ModelType, error)
	CreateModelType(ctx context.Context, in catalog.ModelTypeInput) (catalog.ModelType, error)
	UpdateModelType(ctx context.Context, id string, in catalog.ModelTypeInput) (catalog.ModelType, error)
	DeleteModelType(ctx context.Context, id string) error

	ListUsers(ctx context.Context, filter identity.UserAccountFilter) ([]identity.UserAccount, error)
	GetUser(ctx context.Context, id string) (identity.UserAccount, error)
	UpdateUser(ctx context.Context, id string, upd identity.AccountUpdate) (identity.UserAccount, error)

	ListOrders(ctx context.Context, filter checkout.OrderFilter) ([]checkout.Order, error)
	GetOrder(ctx context.Context, id string) (checkout.Order, error)

	UploadImage(ctx context.Context, filename string, content io.Reader) (string, error)
	UploadFile(ctx context.Context, filename string, content io.Reader) (string, error)
}

// affected lists the groups a mutation of one group makes stale. Spare
// parts embed brand, model, type and category names, so any change to
// those lists also drops cached listings.
var affected = map[cache.Group][]cache.Group{
	cache.GroupSpareParts:  {cache.GroupSpareParts},
	cache.GroupCategories:  {cache.GroupCategories, cache.GroupSpareParts},
	cache.GroupBrands:      {cache.GroupBrands, cache.GroupBrandModels, cache.GroupModelTypes, cache.GroupSpareParts},
	cache.GroupBrandModels: {cache.GroupBrandModels, cache.GroupModelTypes, cache.GroupSpareParts},
	cache.GroupModelTypes:  {cache.GroupModelTypes, cache.GroupSpareParts},
	cache.GroupUsers:       {cache.GroupUsers},
}

// AffectedGroups returns the groups invalidated by a mutation of group
func AffectedGroups(group cache.Group) []cache.Group {
	if groups, ok := affected[group]; ok {
		return groups
	}
	return []cache.Group{group}
}

type Service struct {
	backend Backend
	cache   *cache.QueryCache
	logger  *zap.Logger
}

func NewService(backend Backend, queryCache *cache.QueryCache, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		cache:   queryCache,
		logger:  logger.Named("admin"),
	}
}

// mutate runs fn and, when it succeeds, invalidates everything group
// affects. A failed invalidation is logged; the mutation already happened.
func mutate[T any](ctx context.Context, s *Service, group cache.Group, action string, fn func() (T, error)) (T, error) {
	out, err := fn()
	if err != nil {
		return out, err
	}
	groups := AffectedGroups(group)
	if err := s.cache.Invalidate(ctx, groups...); err != nil {
		logger.L(ctx).Error("Cache invalidation failed after mutation",
			zap.String("group", string(group)),
			zap.String("action", action),
			zap.Error(err))
	}
	logger.L(ctx).Info("Admin mutation",
		zap.String("group", string(group)),
		zap.String("action", action))
	return out, nil
}

// remove deletes after checking the caller confirmed it
func (s *Service) remove(ctx context.Context, group cache.Group, id string, confirmed bool, del func(ctx context.Context, id string) error) error {
	if !confirmed {
		return shared.ErrConfirmationRequired
	}
	if id == "" {
		return shared.ErrInvalidInput.WithMessage("id is required")
	}
	_, err := mutate(ctx, s, group, "delete", func() (struct{}, error) {
		return struct{}{}, del(ctx, id)
	})
	return err
}

func get[T any](ctx context.Context, s *Service, group cache.Group, id string, load func(ctx context.Context, id string) (T, error)) (*T, error) {
	key := cache.NewKey(group, url.Values{"id": {id}})
	v, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (T, error) {
		return load(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}
