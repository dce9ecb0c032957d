// Package catalog serves catalog listings, search and the filter panel.
package catalog

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/autoparts/storefront/internal/domain/catalog"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/autoparts/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Backend is the slice of the REST backend the catalog reads from
type Backend interface {
	ListSpareParts(ctx context.Context, q catalog.SparePartQuery) (catalog.SparePartPage, error)
	GetSparePart(ctx context.Context, id string) (catalog.SparePart, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	ListBrands(ctx context.Context) ([]catalog.Brand, error)
	ListBrandModels(ctx context.Context, brandID string) ([]catalog.BrandModel, error)
	ListModelTypes(ctx context.Context, modelID string) ([]catalog.ModelType, error)
}

// Config holds listing policy
type Config struct {
	PageSize int
	MinStock int
}

// Service composes catalog queries and serves them through the query cache
type Service struct {
	backend   Backend
	cache     *cache.QueryCache
	debouncer *Debouncer
	config    Config
	metrics   *telemetry.Metrics
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	backend Backend,
	queryCache *cache.QueryCache,
	debouncer *Debouncer,
	config Config,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *Service {
	if config.PageSize <= 0 {
		config.PageSize = catalog.DefaultPageSize
	}
	if config.MinStock <= 0 {
		config.MinStock = catalog.StorefrontMinStock
	}
	return &Service{
		backend:   backend,
		cache:     queryCache,
		debouncer: debouncer,
		config:    config,
		metrics:   metrics,
		now:       time.Now,
		logger:    logger.Named("catalog"),
	}
}

// ListSpareParts runs one listing query. The storefront audience only
// sees parts with at least MinStock units; the admin audience sees all.
func (s *Service) ListSpareParts(ctx context.Context, q catalog.SparePartQuery, audience Audience) (*SparePartListing, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = s.config.PageSize
	}
	q = q.Normalize()
	q, err := s.ResolveQuery(ctx, q)
	if err != nil {
		return nil, err
	}
	if audience == AudienceStorefront {
		minStock := s.config.MinStock
		q.MinStock = &minStock
	}

	key := cache.NewKey(cache.GroupSpareParts, q.Values())
	page, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (catalog.SparePartPage, error) {
		return s.backend.ListSpareParts(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []catalog.SparePart{}
	}

	return &SparePartListing{
		Items: page.Results,
		Page:  catalog.NewPageInfo(q, page),
		Query: q.Values().Encode(),
	}, nil
}

// Search is the debounced listing used while the shopper types. Only the
// last request of a burst from one profile reaches the backend; the
// others fail with shared.ErrSuperseded.
func (s *Service) Search(ctx context.Context, profileKey string, q catalog.SparePartQuery) (*SparePartListing, error) {
	if err := s.debouncer.Wait(ctx, profileKey); err != nil {
		if errors.Is(err, shared.ErrSuperseded) {
			s.metrics.ObserveSuperseded()
			logger.L(ctx).Debug("Search superseded", zap.String("search", q.Search))
		}
		return nil, err
	}
	return s.ListSpareParts(ctx, q.WithSearch(q.Search), AudienceStorefront)
}

// GetSparePart returns one spare part
func (s *Service) GetSparePart(ctx context.Context, id string) (*catalog.SparePart, error) {
	key := cache.NewKey(cache.GroupSpareParts, url.Values{"id": {id}})
	part, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (catalog.SparePart, error) {
		return s.backend.GetSparePart(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (s *Service) Categories(ctx context.Context) ([]catalog.Category, error) {
	return cache.Fetch(ctx, s.cache, cache.NewKey(cache.GroupCategories, nil), s.backend.ListCategories)
}

func (s *Service) Brands(ctx context.Context) ([]catalog.Brand, error) {
	return cache.Fetch(ctx, s.cache, cache.NewKey(cache.GroupBrands, nil), s.backend.ListBrands)
}

// BrandModels lists the models of a brand by brand id
func (s *Service) BrandModels(ctx context.Context, brandID string) ([]catalog.BrandModel, error) {
	key := cache.NewKey(cache.GroupBrandModels, url.Values{"brandId": {brandID}})
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]catalog.BrandModel, error) {
		return s.backend.ListBrandModels(ctx, brandID)
	})
}

// ModelTypes lists the types of a model by model id
func (s *Service) ModelTypes(ctx context.Context, modelID string) ([]catalog.ModelType, error) {
	key := cache.NewKey(cache.GroupModelTypes, url.Values{"modelId": {modelID}})
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]catalog.ModelType, error) {
		return s.backend.ListModelTypes(ctx, modelID)
	})
}

// Years lists the selectable model years, newest first
func (s *Service) Years() []string {
	return catalog.YearOptions(s.now())
}
