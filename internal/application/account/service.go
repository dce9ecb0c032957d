// Package account serves the signed-in user's saved addresses and order
// history.
package account

import (
	"context"
	"net/url"
	"reflect"
	"strings"

	"github.com/autoparts/storefront/internal/domain/checkout"
	"github.com/autoparts/storefront/internal/domain/identity"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Backend is the slice of the REST backend this service uses. The backend
// scopes user details to the bearer token's user.
type Backend interface {
	ListUserDetails(ctx context.Context) ([]identity.UserDetail, error)
	GetUserDetail(ctx context.Context, id string) (identity.UserDetail, error)
	CreateUserDetail(ctx context.Context, d identity.UserDetail) (identity.UserDetail, error)
	UpdateUserDetail(ctx context.Context, id string, d identity.UserDetail) (identity.UserDetail, error)
	DeleteUserDetail(ctx context.Context, id string) error
	ListOrders(ctx context.Context, filter checkout.OrderFilter) ([]checkout.Order, error)
	GetOrder(ctx context.Context, id string) (checkout.Order, error)
}

type Service struct {
	backend  Backend
	cache    *cache.QueryCache
	validate *validator.Validate
	logger   *zap.Logger
}

func NewService(backend Backend, queryCache *cache.QueryCache, logger *zap.Logger) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	// errors name fields the way clients send them
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Service{
		backend:  backend,
		cache:    queryCache,
		validate: v,
		logger:   logger.Named("account"),
	}
}

// cached keys always carry the user so a shared cache never leaks another
// user's rows
func userKey(group cache.Group, userID string, extra url.Values) cache.Key {
	params := url.Values{"user": {userID}}
	for k, v := range extra {
		params[k] = v
	}
	return cache.NewKey(group, params)
}

// Details lists the user's saved addresses
func (s *Service) Details(ctx context.Context, userID string) ([]identity.UserDetail, error) {
	return cache.Fetch(ctx, s.cache, userKey(cache.GroupUserDetails, userID, nil),
		func(ctx context.Context) ([]identity.UserDetail, error) {
			return s.backend.ListUserDetails(ctx)
		})
}

func (s *Service) Detail(ctx context.Context, userID, id string) (*identity.UserDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("id is required")
	}
	d, err := cache.Fetch(ctx, s.cache, userKey(cache.GroupUserDetails, userID, url.Values{"id": {id}}),
		func(ctx context.Context) (identity.UserDetail, error) {
			return s.backend.GetUserDetail(ctx, id)
		})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDetail validates and saves a new address
func (s *Service) CreateDetail(ctx context.Context, d identity.UserDetail) (*identity.UserDetail, error) {
	d.ID = ""
	if err := s.check(d); err != nil {
		return nil, err
	}
	created, err := s.backend.CreateUserDetail(ctx, d)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "create")
	return &created, nil
}

func (s *Service) UpdateDetail(ctx context.Context, id string, d identity.UserDetail) (*identity.UserDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("id is required")
	}
	d.ID = ""
	if err := s.check(d); err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateUserDetail(ctx, id, d)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "update")
	return &updated, nil
}

func (s *Service) DeleteDetail(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return shared.ErrInvalidInput.WithMessage("id is required")
	}
	if err := s.backend.DeleteUserDetail(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, "delete")
	return nil
}

// Orders lists the user's own orders; the user filter cannot be overridden
func (s *Service) Orders(ctx context.Context, userID string, filter checkout.OrderFilter) ([]checkout.Order, error) {
	filter.UserID = userID
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, cache.NewKey(cache.GroupOrders, filter.Values()),
		func(ctx context.Context) ([]checkout.Order, error) {
			return s.backend.ListOrders(ctx, filter)
		})
}

// Order returns one of the user's orders. Someone else's order is
// reported as not found.
func (s *Service) Order(ctx context.Context, userID, id string) (*checkout.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("id is required")
	}
	o, err := cache.Fetch(ctx, s.cache, userKey(cache.GroupOrders, userID, url.Values{"id": {id}}),
		func(ctx context.Context) (checkout.Order, error) {
			return s.backend.GetOrder(ctx, id)
		})
	if err != nil {
		return nil, err
	}
	if o.UserID != "" && o.UserID != userID {
		return nil, shared.ErrNotFound.WithMessage("Orden no encontrada")
	}
	return &o, nil
}

func (s *Service) check(d identity.UserDetail) error {
	if err := s.validate.Struct(d); err != nil {
		return shared.ErrInvalidInput.WithMessage("Revisa los datos de la dirección").Wrap(err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, action string) {
	if err := s.cache.Invalidate(ctx, cache.GroupUserDetails); err != nil {
		logger.L(ctx).Error("Cache invalidation failed after mutation",
			zap.String("group", string(cache.GroupUserDetails)),
			zap.String("action", action),
			zap.Error(err))
	}
}
