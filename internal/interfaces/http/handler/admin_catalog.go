package handler

import (
	"github.com/autoparts/storefront/internal/application/admin"
	appcatalog "github.com/autoparts/storefront/internal/application/catalog"
	"github.com/autoparts/storefront/internal/domain/catalog"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the back-office. Deletes must be confirmed with
// ?confirm=true or the X-Confirm header.
type AdminHandler struct {
	BaseHandler
	adminService   *admin.Service
	catalogService *appcatalog.Service
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *admin.Service, catalogService *appcatalog.Service) *AdminHandler {
	return &AdminHandler{adminService: adminService, catalogService: catalogService}
}

// ListSpareParts godoc
// @Summary      List spare parts (back-office)
// @Description  Same filters as the storefront listing, without the stock floor
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=appcatalog.SparePartListing}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/spare-parts [get]
func (h *AdminHandler) ListSpareParts(c *gin.Context) {
	var req SparePartListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	q, err := req.ToQuery()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	listing, err := h.catalogService.ListSpareParts(c.Request.Context(), q, appcatalog.AudienceAdmin)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listing)
}

// GetSparePart godoc
// @Summary      Get spare part (back-office)
// @Tags         admin
// @Produce      json
// @Param        id path string true "Spare part ID"
// @Success      200 {object} dto.Response{data=catalog.SparePart}
// @Router       /admin/spare-parts/{id} [get]
func (h *AdminHandler) GetSparePart(c *gin.Context) {
	part, err := h.catalogService.GetSparePart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// CreateSparePart godoc
// @Summary      Create spare part
// @Description  The code is generated when left empty
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body catalog.SparePartDraft true "Spare part"
// @Success      201 {object} dto.Response{data=catalog.SparePart}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/spare-parts [post]
func (h *AdminHandler) CreateSparePart(c *gin.Context) {
	var req catalog.SparePartDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	part, err := h.adminService.CreateSparePart(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, part)
}

// UpdateSparePart godoc
// @Summary      Update spare part
// @Description  Only the fields present in the body change
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Spare part ID"
// @Param        request body catalog.SparePartPatch true "Changes"
// @Success      200 {object} dto.Response{data=catalog.SparePart}
// @Router       /admin/spare-parts/{id} [patch]
func (h *AdminHandler) UpdateSparePart(c *gin.Context) {
	var req catalog.SparePartPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	part, err := h.adminService.UpdateSparePart(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// DeleteSparePart godoc
// @Summary      Delete spare part
// @Tags         admin
// @Param        id path string true "Spare part ID"
// @Param        confirm query bool true "Must be true"
// @Success      204
// @Failure      428 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/spare-parts/{id} [delete]
func (h *AdminHandler) DeleteSparePart(c *gin.Context) {
	if err := h.adminService.DeleteSparePart(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListCategories godoc
// @Summary      List categories (back-office)
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.Category}
// @Router       /admin/categories [get]
func (h *AdminHandler) ListCategories(c *gin.Context) {
	items, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetCategory godoc
// @Summary      Get category
// @Tags         admin
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=catalog.Category}
// @Router       /admin/categories/{id} [get]
func (h *AdminHandler) GetCategory(c *gin.Context) {
	item, err := h.adminService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateCategory godoc
// @Summary      Create category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body catalog.CategoryInput true "Category"
// @Success      201 {object} dto.Response{data=catalog.Category}
// @Router       /admin/categories [post]
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req catalog.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.adminService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateCategory godoc
// @Summary      Update category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        request body catalog.CategoryInput true "Changes"
// @Success      200 {object} dto.Response{data=catalog.Category}
// @Router       /admin/categories/{id} [patch]
func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	var req catalog.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.adminService.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteCategory godoc
// @Summary      Delete category
// @Tags         admin
// @Param        id path string true "Category ID"
// @Param        confirm query bool true "Must be true"
// @Success      204
// @Failure      428 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/categories/{id} [delete]
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.adminService.DeleteCategory(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListBrands godoc
// @Summary      List brands (back-office)
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.Brand}
// @Router       /admin/brands [get]
func (h *AdminHandler) ListBrands(c *gin.Context) {
	items, err := h.catalogService.Brands(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetBrand godoc
// @Summary      Get brand
// @Tags         admin
// @Produce      json
// @Param        id path string true "Brand ID"
// @Success      200 {object} dto.Response{data=catalog.Brand}
// @Router       /admin/brands/{id} [get]
func (h *AdminHandler) GetBrand(c *gin.Context) {
	item, err := h.adminService.GetBrand(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateBrand godoc
// @Summary      Create brand
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body catalog.BrandInput true "Brand"
// @Success      201 {object} dto.Response{data=catalog.Brand}
// @Router       /admin/brands [post]
func (h *AdminHandler) CreateBrand(c *gin.Context) {
	var req catalog.BrandInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.adminService.CreateBrand(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateBrand godoc
// @Summary      Update brand
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Brand ID"
// @Param        request body catalog.BrandInput true "Changes"
// @Success      200 {object} dto.Response{data=catalog.Brand}
// @Router       /admin/brands/{id} [patch]
func (h *AdminHandler) UpdateBrand(c *gin.Context) {
	var req catalog.BrandInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.adminService.UpdateBrand(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteBrand godoc
// @Summary      Delete brand
// @Tags         admin
// @Param        id path string true "Brand ID"
// @Param        confirm query bool true "Must be true"
// @Success      204
// @Failure      428 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/brands/{id} [delete]
func (h *AdminHandler) DeleteBrand(c *gin.Context) {
	if err := h.adminService.DeleteBrand(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListBrandModels godoc
// @Summary      List brand models (back-office)
// @Tags         admin
// @Produce      json
// @Param        brandId query string true "Brand ID"
// @Success      200 {object} dto.Response{data=[]catalog.BrandModel}
// @Router       /admin/brand-models [get]
func (h *AdminHandler) ListBrandModels(c *gin.Context) {
	brandID := c.Query("brandId")
	if brandID == "" {
		h.BadRequest(c, "brandId es obligatorio")
		return
	}
	items, err := h.catalogService.BrandModels(c.Request.Context(), brandID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetBrandModel godoc
// @Summary      Get brand model
// @Tags         admin
// @Produce      json
// @Param        id path string true "Brand model ID"
// @Success      200 {object} dto.Response{data=catalog.BrandModel}
// @Router       /admin/brand-models/{id} [get]
func (h *AdminHandler) GetBrandModel(c *gin.Context) {
	item, err := h.adminService.GetBrandModel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateBrandModel godoc
// @Summary      Create brand model
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body catalog.BrandModelInput true "Brand model"
// @Success      201 {object} dto.Response{data=catalog.BrandModel}
// @Router       /admin/brand-models [post]
func (h *AdminHandler) CreateBrandModel(c *gin.Context) {
	var req catalog.BrandModelInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.adminService.CreateBrandModel(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateBrandModel godoc
// @Summary      Update brand model
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Brand model ID"
// @Param        request body catalog.BrandModelInput true "Changes"
// @Success      200 {object} dto.Response{data=catalog.BrandModel}
// @Router       /admin/brand-models/{id} [patch]
func (h *AdminHandler) UpdateBrandModel(c *gin.Context) {
	var req catalog.BrandModelInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.adminService.UpdateBrandModel(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteBrandModel godoc
// @Summary      Delete brand model
// @Tags         admin
// @Param        id path string true "Brand model ID"
// @Param        confirm query bool true "Must be true"
// @Success      204
// @Failure      428 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/brand-models/{id} [delete]
func (h *AdminHandler) DeleteBrandModel(c *gin.Context) {
	if err := h.adminService.DeleteBrandModel(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListModelTypes godoc
// @Summary      List model types (back-office)
// @Tags         admin
// @Produce      json
// @Param        modelId query string true "Brand model ID"
// @Success      200 {object} dto.Response{data=[]catalog.ModelType}
// @Router       /admin/model-types [get]
func (h *AdminHandler) ListModelTypes(c *gin.Context) {
	modelID := c.Query("modelId")
	if modelID == "" {
		h.BadRequest(c, "modelId es obligatorio")
		return
	}
	items, err := h.catalogService.ModelTypes(c.Request.Context(), modelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetModelType godoc
// @Summary      Get model type
// @Tags         admin
// @Produce      json
// @Param        id path string true "Model type ID"
// @Success      200 {object} dto.Response{data=catalog.ModelType}
// @Router       /admin/model-types/{id} [get]
func (h *AdminHandler) GetModelType(c *gin.Context) {
	item, err := h.adminService.GetModelType(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateModelType godoc
// @Summary      Create model type
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body catalog.ModelTypeInput true "Model type"
// @Success      201 {object} dto.Response{data=catalog.ModelType}
// @Router       /admin/model-types [post]
func (h *AdminHandler) CreateModelType(c *gin.Context) {
	var req catalog.ModelTypeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.adminService.CreateModelType(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateModelType godoc
// @Summary      Update model type
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Model type ID"
// @Param        request body catalog.ModelTypeInput true "Changes"
// @Success      200 {object} dto.Response{data=catalog.ModelType}
// @Router       /admin/model-types/{id} [patch]
func (h *AdminHandler) UpdateModelType(c *gin.Context) {
	var req catalog.ModelTypeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.adminService.UpdateModelType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteModelType godoc
// @Summary      Delete model type
// @Tags         admin
// @Param        id path string true "Model type ID"
// @Param        confirm query bool true "Must be true"
// @Success      204
// @Failure      428 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/model-types/{id} [delete]
func (h *AdminHandler) DeleteModelType(c *gin.Context) {
	if err := h.adminService.DeleteModelType(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
