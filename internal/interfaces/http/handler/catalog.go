package handler

import (
	"strings"

	appcatalog "github.com/autoparts/storefront/internal/application/catalog"
	"github.com/autoparts/storefront/internal/domain/catalog"
	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CatalogHandler serves the public catalog
type CatalogHandler struct {
	BaseHandler
	catalogService *appcatalog.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *appcatalog.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// SparePartListRequest represents the listing query string. Either page
// or offset may be used; page wins when both are sent.
type SparePartListRequest struct {
	catalog.Selection
	Page     *int   `form:"page" binding:"omitempty,min=0"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"omitempty,max=200"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	MinStock *int   `form:"minStock" binding:"omitempty,min=0"`
}

// ToQuery converts the request into a catalog query
func (r SparePartListRequest) ToQuery() (catalog.SparePartQuery, error) {
	q := catalog.SparePartQuery{
		Offset:        r.Offset,
		Limit:         r.Limit,
		Search:        r.Search,
		Category:      r.Category,
		Brand:         r.Brand,
		BrandModel:    r.BrandModel,
		ModelType:     r.ModelType,
		ModelTypeYear: r.ModelTypeYear,
		MinStock:      r.MinStock,
	}
	var err error
	if q.MinPrice, err = parsePrice("minPrice", r.MinPrice); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePrice("maxPrice", r.MaxPrice); err != nil {
		return q, err
	}
	if r.Page != nil {
		q = q.AtPage(*r.Page)
	}
	return q, nil
}

func parsePrice(name, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage(name + " must be a number").Wrap(err)
	}
	return &d, nil
}

func (h *CatalogHandler) bindQuery(c *gin.Context) (catalog.SparePartQuery, bool) {
	var req SparePartListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return catalog.SparePartQuery{}, false
	}
	q, err := req.ToQuery()
	if err != nil {
		h.HandleError(c, err)
		return q, false
	}
	return q, true
}

// ListSpareParts godoc
// @Summary      List spare parts
// @Description  Storefront listing; only parts in stock are shown
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Zero-based page"
// @Param        limit query int false "Page size"
// @Param        search query string false "Search text"
// @Param        category query string false "Category"
// @Param        brand query string false "Brand"
// @Param        brandModel query string false "Brand model"
// @Param        modelType query string false "Model type"
// @Param        modelTypeYear query string false "Model year"
// @Success      200 {object} dto.Response{data=appcatalog.SparePartListing}
// @Router       /catalog/spare-parts [get]
func (h *CatalogHandler) ListSpareParts(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	listing, err := h.catalogService.ListSpareParts(c.Request.Context(), q, appcatalog.AudienceStorefront)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listing)
}

// Search godoc
// @Summary      Search as you type
// @Description  Debounced per profile; a request overtaken by a newer one answers 409
// @Tags         catalog
// @Produce      json
// @Param        search query string false "Search text"
// @Success      200 {object} dto.Response{data=appcatalog.SparePartListing}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	listing, err := h.catalogService.Search(c.Request.Context(), profileID(c).String(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listing)
}

// GetSparePart godoc
// @Summary      Get spare part
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Spare part ID"
// @Success      200 {object} dto.Response{data=catalog.SparePart}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/spare-parts/{id} [get]
func (h *CatalogHandler) GetSparePart(c *gin.Context) {
	part, err := h.catalogService.GetSparePart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// Filters godoc
// @Summary      Cascading filter state
// @Description  Applies the selection level by level and returns each level's options
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=appcatalog.FilterPanel}
// @Router       /catalog/filters [get]
func (h *CatalogHandler) Filters(c *gin.Context) {
	var sel catalog.Selection
	if err := c.ShouldBindQuery(&sel); err != nil {
		h.BindError(c, err)
		return
	}
	panel, err := h.catalogService.Filters(c.Request.Context(), sel)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, panel)
}

// Categories godoc
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.Category}
// @Router       /catalog/categories [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	items, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Brands godoc
// @Summary      List brands
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.Brand}
// @Router       /catalog/brands [get]
func (h *CatalogHandler) Brands(c *gin.Context) {
	items, err := h.catalogService.Brands(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// BrandModels godoc
// @Summary      List the models of a brand
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Brand ID"
// @Success      200 {object} dto.Response{data=[]catalog.BrandModel}
// @Router       /catalog/brands/{id}/models [get]
func (h *CatalogHandler) BrandModels(c *gin.Context) {
	items, err := h.catalogService.BrandModels(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ModelTypes godoc
// @Summary      List the types of a model
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Brand model ID"
// @Success      200 {object} dto.Response{data=[]catalog.ModelType}
// @Router       /catalog/brand-models/{id}/types [get]
func (h *CatalogHandler) ModelTypes(c *gin.Context) {
	items, err := h.catalogService.ModelTypes(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Years godoc
// @Summary      Selectable model years
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Router       /catalog/years [get]
func (h *CatalogHandler) Years(c *gin.Context) {
	h.Success(c, h.catalogService.Years())
}
