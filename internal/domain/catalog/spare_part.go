// Package catalog models spare parts, the vehicle lookups and the cascading filter.
package catalog

import (
	"strings"
	"time"

	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SparePart is a sellable item as served by the backend
type SparePart struct {
	ID            string          `json:"_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Images        []string        `json:"images"`
	Category      string          `json:"category"`
	Stock         int             `json:"stock"`
	Brand         string          `json:"brand"`
	BrandModel    string          `json:"brandModel"`
	ModelType     string          `json:"modelType"`
	ModelTypeYear string          `json:"modelTypeYear"`
	UserID        string          `json:"userID,omitempty"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// InStock reports whether at least one unit is available
func (p SparePart) InStock() bool {
	return p.Stock > 0
}

// PrimaryImage returns the first image url, or empty
func (p SparePart) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Page is one page of a paginated backend listing.
// Next and Previous are urls (or nil) set by the backend.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the backend advertised a following page
func (p Page[T]) HasNext() bool {
	return p.Next != nil
}

// HasPrevious reports whether the backend advertised a preceding page
func (p Page[T]) HasPrevious() bool {
	return p.Previous != nil
}

// SparePartPage is a page of spare parts
type SparePartPage = Page[SparePart]

// SparePartDraft is the body for creating a spare part
type SparePartDraft struct {
	Code          string          `json:"code,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Category      string          `json:"category,omitempty"`
	BrandID       string          `json:"brandId"`
	ModelID       string          `json:"modelId"`
	Brand         string          `json:"brand,omitempty"`
	BrandModel    string          `json:"brandModel,omitempty"`
	ModelType     string          `json:"modelType,omitempty"`
	ModelTypeYear string          `json:"modelTypeYear,omitempty"`
	Image         string          `json:"image,omitempty"`
	Images        []string        `json:"images,omitempty"`
}

// Validate checks the invariants the storefront relies on before the
// draft is sent. Anything else is left to backend validation.
func (d SparePartDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return shared.ErrInvalidInput.WithMessage("El nombre es obligatorio")
	}
	if d.Price.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("El precio no puede ser negativo")
	}
	if d.Stock < 0 {
		return shared.ErrInvalidInput.WithMessage("El stock no puede ser negativo")
	}
	if d.ModelTypeYear != "" {
		if err := ValidateYear(d.ModelTypeYear); err != nil {
			return err
		}
	}
	return nil
}

// SparePartPatch is a partial update. Nil fields are left unchanged.
type SparePartPatch struct {
	Code          *string          `json:"code,omitempty"`
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	Category      *string          `json:"category,omitempty"`
	BrandID       *string          `json:"brandId,omitempty"`
	ModelID       *string          `json:"modelId,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
	BrandModel    *string          `json:"brandModel,omitempty"`
	ModelType     *string          `json:"modelType,omitempty"`
	ModelTypeYear *string          `json:"modelTypeYear,omitempty"`
	Image         *string          `json:"image,omitempty"`
	Images        []string         `json:"images,omitempty"`
}

// Validate checks the fields that are present
func (p SparePartPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return shared.ErrInvalidInput.WithMessage("El nombre no puede estar vacío")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("El precio no puede ser negativo")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return shared.ErrInvalidInput.WithMessage("El stock no puede ser negativo")
	}
	if p.ModelTypeYear != nil && *p.ModelTypeYear != "" {
		if err := ValidateYear(*p.ModelTypeYear); err != nil {
			return err
		}
	}
	return nil
}
