package catalog

import (
	"context"

	"github.com/autoparts/storefront/internal/domain/catalog"
	"golang.org/x/sync/errgroup"
)

// Filters builds the filter panel for a selection. Categories load in
// parallel with the brand chain; a brand's models and a model's types are
// resolved by looking the selected name up among the parent's options.
func (s *Service) Filters(ctx context.Context, sel catalog.Selection) (*FilterPanel, error) {
	brandName := catalog.FilterValue(sel.Brand)
	modelName := catalog.FilterValue(sel.BrandModel)

	var (
		categories []catalog.Category
		brands     []catalog.Brand
		models     []catalog.BrandModel
		types      []catalog.ModelType
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.Categories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if brands, err = s.Brands(gctx); err != nil || brandName == "" {
			return err
		}
		brand, ok := findByName(brands, brandName, func(b catalog.Brand) (string, string) { return b.ID, b.Name })
		if !ok {
			return nil
		}
		if models, err = s.BrandModels(gctx, brand); err != nil || modelName == "" {
			return err
		}
		model, ok := findByName(models, modelName, func(m catalog.BrandModel) (string, string) { return m.ID, m.Name })
		if !ok {
			return nil
		}
		types, err = s.ModelTypes(gctx, model)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := catalog.NewFilterState()
	state.SetOptions(catalog.LevelCategory, "", toOptions(categories, func(c catalog.Category) (string, string) { return c.ID, c.Name }))
	state.SetOptions(catalog.LevelBrand, "", toOptions(brands, func(b catalog.Brand) (string, string) { return b.ID, b.Name }))
	state.SetOptions(catalog.LevelModelTypeYear, "", yearOptions(s.Years()))

	state = applyIfEnabled(state, catalog.LevelCategory, sel.Category)
	state = applyIfEnabled(state, catalog.LevelBrand, sel.Brand)
	if models != nil {
		state.SetOptions(catalog.LevelBrandModel, state.Brand.Value, toOptions(models, func(m catalog.BrandModel) (string, string) { return m.ID, m.Name }))
	}
	state = applyKnown(state, catalog.LevelBrandModel, sel.BrandModel)
	if types != nil {
		state.SetOptions(catalog.LevelModelType, state.BrandModel.Value, toOptions(types, func(t catalog.ModelType) (string, string) { return t.ID, t.Name }))
	}
	state = applyKnown(state, catalog.LevelModelType, sel.ModelType)
	state = applyIfEnabled(state, catalog.LevelModelTypeYear, sel.ModelTypeYear)

	return &FilterPanel{State: state, Query: state.Selection()}, nil
}

// applyIfEnabled ignores values for levels whose parent is unset, the
// same way the select would be greyed out
func applyIfEnabled(state catalog.FilterState, l catalog.Level, value string) catalog.FilterState {
	if !state.Get(l).Enabled {
		return state
	}
	next, err := state.Apply(l, value)
	if err != nil {
		return state
	}
	return next
}

// applyKnown applies a dependent value only when it is one of the options
// loaded for the current parent. Anything else leaves the level unset.
func applyKnown(state catalog.FilterState, l catalog.Level, value string) catalog.FilterState {
	name := catalog.FilterValue(value)
	if name == "" {
		return applyIfEnabled(state, l, value)
	}
	if state.NeedsOptions(l) {
		return state
	}
	if _, ok := state.Lookup(l, name); !ok {
		return state
	}
	return applyIfEnabled(state, l, name)
}

// ResolveQuery drops a brand model or model type that does not belong to
// its parent, so the listing never sends an inconsistent cascade.
func (s *Service) ResolveQuery(ctx context.Context, q catalog.SparePartQuery) (catalog.SparePartQuery, error) {
	if q.BrandModel == "" && q.ModelType == "" {
		return q, nil
	}
	panel, err := s.Filters(ctx, catalog.Selection{
		Brand:      q.Brand,
		BrandModel: q.BrandModel,
		ModelType:  q.ModelType,
	})
	if err != nil {
		return q, err
	}
	q.BrandModel = panel.Query.BrandModel
	q.ModelType = panel.Query.ModelType
	return q, nil
}

func findByName[T any](items []T, name string, fields func(T) (id, name string)) (string, bool) {
	for _, item := range items {
		if id, n := fields(item); n == name {
			return id, true
		}
	}
	return "", false
}

func toOptions[T any](items []T, fields func(T) (id, name string)) []catalog.Option {
	options := make([]catalog.Option, 0, len(items))
	for _, item := range items {
		id, name := fields(item)
		options = append(options, catalog.Option{ID: id, Name: name})
	}
	return options
}

func yearOptions(years []string) []catalog.Option {
	options := make([]catalog.Option, 0, len(years))
	for _, y := range years {
		options = append(options, catalog.Option{Name: y})
	}
	return options
}
