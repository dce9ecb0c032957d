package handler

import (
	"github.com/autoparts/storefront/internal/application/catalog"
	"github.com/autoparts/storefront/internal/application/clientstore"
	"github.com/autoparts/storefront/internal/domain/cart"
	"github.com/gin-gonic/gin"
)

// CartHandler serves the profile's cart
type CartHandler struct {
	BaseHandler
	store   *clientstore.Service
	catalog *catalog.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(store *clientstore.Service, catalogService *catalog.Service) *CartHandler {
	return &CartHandler{store: store, catalog: catalogService}
}

// AddItemRequest represents the add-to-cart body. Price, code, name and
// image are read from the catalog, never trusted from the client.
type AddItemRequest struct {
	SparePartID string `json:"sparePartId" binding:"required"`
	Quantity    int    `json:"quantity" binding:"omitempty,min=0,max=999"`
}

// UpdateQuantityRequest represents the quantity change body
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=999"`
}

// CartResponse is the cart with its freshly computed summary
type CartResponse struct {
	Items      []cart.Item  `json:"items"`
	Summary    cart.Summary `json:"summary"`
	TotalLabel string       `json:"totalLabel"`
}

func (h *CartHandler) respond(c *gin.Context, items []cart.Item) {
	if items == nil {
		items = []cart.Item{}
	}
	summary := h.store.Pricer().Summarize(items)
	h.Success(c, CartResponse{
		Items:      items,
		Summary:    summary,
		TotalLabel: cart.FormatPrice(summary.Total),
	})
}

// Get godoc
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=CartResponse}
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	current, err := h.store.Cart(c.Request.Context(), profileID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, current.Items)
}

// AddItem godoc
// @Summary      Add a spare part to the cart
// @Description  Merges into an existing line; a zero quantity adds one unit
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body AddItemRequest true "Item"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ctx := c.Request.Context()
	part, err := h.catalog.GetSparePart(ctx, req.SparePartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	updated, err := h.store.AddItem(ctx, profileID(c), cart.Item{
		ProductID: part.ID,
		Code:      part.Code,
		Name:      part.Name,
		UnitPrice: part.Price,
		Quantity:  req.Quantity,
		ImageURL:  part.PrimaryImage(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, updated.Items)
}

// UpdateQuantity godoc
// @Summary      Change a line's quantity
// @Description  A quantity of zero removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Spare part ID"
// @Param        request body UpdateQuantityRequest true "Quantity"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{id} [patch]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	updated, err := h.store.UpdateQuantity(c.Request.Context(), profileID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, updated.Items)
}

// RemoveItem godoc
// @Summary      Remove a line
// @Tags         cart
// @Produce      json
// @Param        id path string true "Spare part ID"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	updated, err := h.store.RemoveItem(c.Request.Context(), profileID(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, updated.Items)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.store.ClearCart(c.Request.Context(), profileID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
