package admin

import (
	"context"

	"github.com/autoparts/storefront/internal/domain/catalog"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/autoparts/storefront/internal/infrastructure/cache"
)

var errNothingToUpdate = shared.ErrInvalidInput.WithMessage("No hay cambios para guardar")

func (s *Service) CreateSparePart(ctx context.Context, d catalog.SparePartDraft) (*catalog.SparePart, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	part, err := mutate(ctx, s, cache.GroupSpareParts, "create", func() (catalog.SparePart, error) {
		return s.backend.CreateSparePart(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (s *Service) UpdateSparePart(ctx context.Context, id string, p catalog.SparePartPatch) (*catalog.SparePart, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	part, err := mutate(ctx, s, cache.GroupSpareParts, "update", func() (catalog.SparePart, error) {
		return s.backend.UpdateSparePart(ctx, id, p)
	})
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (s *Service) DeleteSparePart(ctx context.Context, id string, confirmed bool) error {
	return s.remove(ctx, cache.GroupSpareParts, id, confirmed, s.backend.DeleteSparePart)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	return get(ctx, s, cache.GroupCategories, id, s.backend.GetCategory)
}

func (s *Service) CreateCategory(ctx context.Context, in catalog.CategoryInput) (*catalog.Category, error) {
	if err := in.ValidateForCreate(); err != nil {
		return nil, err
	}
	c, err := mutate(ctx, s, cache.GroupCategories, "create", func() (catalog.Category, error) {
		return s.backend.CreateCategory(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in catalog.CategoryInput) (*catalog.Category, error) {
	if in == (catalog.CategoryInput{}) {
		return nil, errNothingToUpdate
	}
	c, err := mutate(ctx, s, cache.GroupCategories, "update", func() (catalog.Category, error) {
		return s.backend.UpdateCategory(ctx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string, confirmed bool) error {
	return s.remove(ctx, cache.GroupCategories, id, confirmed, s.backend.DeleteCategory)
}

func (s *Service) GetBrand(ctx context.Context, id string) (*catalog.Brand, error) {
	return get(ctx, s, cache.GroupBrands, id, s.backend.GetBrand)
}

func (s *Service) CreateBrand(ctx context.Context, in catalog.BrandInput) (*catalog.Brand, error) {
	if err := in.ValidateForCreate(); err != nil {
		return nil, err
	}
	b, err := mutate(ctx, s, cache.GroupBrands, "create", func() (catalog.Brand, error) {
		return s.backend.CreateBrand(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) UpdateBrand(ctx context.Context, id string, in catalog.BrandInput) (*catalog.Brand, error) {
	if in == (catalog.BrandInput{}) {
		return nil, errNothingToUpdate
	}
	b, err := mutate(ctx, s, cache.GroupBrands, "update", func() (catalog.Brand, error) {
		return s.backend.UpdateBrand(ctx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) DeleteBrand(ctx context.Context, id string, confirmed bool) error {
	return s.remove(ctx, cache.GroupBrands, id, confirmed, s.backend.DeleteBrand)
}

func (s *Service) GetBrandModel(ctx context.Context, id string) (*catalog.BrandModel, error) {
	return get(ctx, s, cache.GroupBrandModels, id, s.backend.GetBrandModel)
}

func (s *Service) CreateBrandModel(ctx context.Context, in catalog.BrandModelInput) (*catalog.BrandModel, error) {
	if err := in.ValidateForCreate(); err != nil {
		return nil, err
	}
	m, err := mutate(ctx, s, cache.GroupBrandModels, "create", func() (catalog.BrandModel, error) {
		return s.backend.CreateBrandModel(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) UpdateBrandModel(ctx context.Context, id string, in catalog.BrandModelInput) (*catalog.BrandModel, error) {
	if in == (catalog.BrandModelInput{}) {
		return nil, errNothingToUpdate
	}
	m, err := mutate(ctx, s, cache.GroupBrandModels, "update", func() (catalog.BrandModel, error) {
		return s.backend.UpdateBrandModel(ctx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) DeleteBrandModel(ctx context.Context, id string, confirmed bool) error {
	return s.remove(ctx, cache.GroupBrandModels, id, confirmed, s.backend.DeleteBrandModel)
}

func (s *Service) GetModelType(ctx context.Context, id string) (*catalog.ModelType, error) {
	return get(ctx, s, cache.GroupModelTypes, id, s.backend.GetModelType)
}

func (s *Service) CreateModelType(ctx context.Context, in catalog.ModelTypeInput) (*catalog.ModelType, error) {
	if err := in.ValidateForCreate(); err != nil {
		return nil, err
	}
	t, err := mutate(ctx, s, cache.GroupModelTypes, "create", func() (catalog.ModelType, error) {
		return s.backend.CreateModelType(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) UpdateModelType(ctx context.Context, id string, in catalog.ModelTypeInput) (*catalog.ModelType, error) {
	if in == (catalog.ModelTypeInput{}) {
		return nil, errNothingToUpdate
	}
	t, err := mutate(ctx, s, cache.GroupModelTypes, "update", func() (catalog.ModelType, error) {
		return s.backend.UpdateModelType(ctx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) DeleteModelType(ctx context.Context, id string, confirmed bool) error {
	return s.remove(ctx, cache.GroupModelTypes, id, confirmed, s.backend.DeleteModelType)
}
