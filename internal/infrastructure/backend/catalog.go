package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/autoparts/storefront/internal/domain/catalog"
)

// ListSpareParts sends exactly one GET /spare-part for q
func (c *Client) ListSpareParts(ctx context.Context, q catalog.SparePartQuery) (catalog.SparePartPage, error) {
	var page catalog.SparePartPage
	err := c.get(ctx, "spare-part", "/spare-part", q.Values(), &page)
	return page, err
}

func (c *Client) GetSparePart(ctx context.Context, id string) (catalog.SparePart, error) {
	var part catalog.SparePart
	err := c.get(ctx, "spare-part", pathID("/spare-part", id), nil, &part)
	return part, err
}

func (c *Client) CreateSparePart(ctx context.Context, d catalog.SparePartDraft) (catalog.SparePart, error) {
	var part catalog.SparePart
	err := c.send(ctx, http.MethodPost, "spare-part", "/spare-part", d, &part)
	return part, err
}

func (c *Client) UpdateSparePart(ctx context.Context, id string, p catalog.SparePartPatch) (catalog.SparePart, error) {
	var part catalog.SparePart
	err := c.send(ctx, http.MethodPatch, "spare-part", pathID("/spare-part", id), p, &part)
	return part, err
}

func (c *Client) DeleteSparePart(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "spare-part", pathID("/spare-part", id), nil, nil)
}

func (c *Client) ListBrands(ctx context.Context) ([]catalog.Brand, error) {
	var brands []catalog.Brand
	err := c.get(ctx, "brand", "/brand", nil, &brands)
	return brands, err
}

func (c *Client) GetBrand(ctx context.Context, id string) (catalog.Brand, error) {
	var b catalog.Brand
	err := c.get(ctx, "brand", pathID("/brand", id), nil, &b)
	return b, err
}

func (c *Client) CreateBrand(ctx context.Context, in catalog.BrandInput) (catalog.Brand, error) {
	var b catalog.Brand
	err := c.send(ctx, http.MethodPost, "brand", "/brand", in, &b)
	return b, err
}

func (c *Client) UpdateBrand(ctx context.Context, id string, in catalog.BrandInput) (catalog.Brand, error) {
	var b catalog.Brand
	err := c.send(ctx, http.MethodPatch, "brand", pathID("/brand", id), in, &b)
	return b, err
}

func (c *Client) DeleteBrand(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "brand", pathID("/brand", id), nil, nil)
}

// ListBrandModels lists the models of one brand
func (c *Client) ListBrandModels(ctx context.Context, brandID string) ([]catalog.BrandModel, error) {
	var models []catalog.BrandModel
	err := c.get(ctx, "brand-model", "/brand/model/all", url.Values{"brandId": {brandID}}, &models)
	return models, err
}

func (c *Client) GetBrandModel(ctx context.Context, id string) (catalog.BrandModel, error) {
	var m catalog.BrandModel
	err := c.get(ctx, "brand-model", pathID("/brand/model", id), nil, &m)
	return m, err
}

func (c *Client) CreateBrandModel(ctx context.Context, in catalog.BrandModelInput) (catalog.BrandModel, error) {
	var m catalog.BrandModel
	err := c.send(ctx, http.MethodPost, "brand-model", "/brand/model", in, &m)
	return m, err
}

func (c *Client) UpdateBrandModel(ctx context.Context, id string, in catalog.BrandModelInput) (catalog.BrandModel, error) {
	var m catalog.BrandModel
	err := c.send(ctx, http.MethodPatch, "brand-model", pathID("/brand/model", id), in, &m)
	return m, err
}

func (c *Client) DeleteBrandModel(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "brand-model", pathID("/brand/model", id), nil, nil)
}

// ListModelTypes lists the types of one brand model
func (c *Client) ListModelTypes(ctx context.Context, modelID string) ([]catalog.ModelType, error) {
	var types []catalog.ModelType
	err := c.get(ctx, "model-type", "/brand/model/type/all", url.Values{"modelId": {modelID}}, &types)
	return types, err
}

func (c *Client) GetModelType(ctx context.Context, id string) (catalog.ModelType, error) {
	var t catalog.ModelType
	err := c.get(ctx, "model-type", pathID("/brand/model/type", id), nil, &t)
	return t, err
}

func (c *Client) CreateModelType(ctx context.Context, in catalog.ModelTypeInput) (catalog.ModelType, error) {
	var t catalog.ModelType
	err := c.send(ctx, http.MethodPost, "model-type", "/brand/model/type", in, &t)
	return t, err
}

func (c *Client) UpdateModelType(ctx context.Context, id string, in catalog.ModelTypeInput) (catalog.ModelType, error) {
	var t catalog.ModelType
	err := c.send(ctx, http.MethodPatch, "model-type", pathID("/brand/model/type", id), in, &t)
	return t, err
}

func (c *Client) DeleteModelType(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "model-type", pathID("/brand/model/type", id), nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	err := c.get(ctx, "category", "/category", nil, &categories)
	return categories, err
}

func (c *Client) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	var cat catalog.Category
	err := c.get(ctx, "category", pathID("/category", id), nil, &cat)
	return cat, err
}

func (c *Client) CreateCategory(ctx context.Context, in catalog.CategoryInput) (catalog.Category, error) {
	var cat catalog.Category
	err := c.send(ctx, http.MethodPost, "category", "/category", in, &cat)
	return cat, err
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in catalog.CategoryInput) (catalog.Category, error) {
	var cat catalog.Category
	err := c.send(ctx, http.MethodPatch, "category", pathID("/category", id), in, &cat)
	return cat, err
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "category", pathID("/category", id), nil, nil)
}
