package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// SentinelAll is the "no filter" placeholder shown in selects
	SentinelAll = "Todos"
	// DefaultPageSize is the number of spare parts per page
	DefaultPageSize = 10
	// MaxPageSize bounds client supplied limits
	MaxPageSize = 100
	// StorefrontMinStock hides out-of-stock parts from shoppers
	StorefrontMinStock = 1
)

// IsSentinel reports whether v means "no filter". Empty values count too.
func IsSentinel(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" ||
		v == SentinelAll ||
		strings.HasPrefix(v, SentinelAll+" los ") ||
		strings.HasPrefix(v, "Todas las ")
}

// FilterValue trims v and maps sentinels to empty
func FilterValue(v string) string {
	if IsSentinel(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// SparePartQuery is the normalized listing request for /spare-part
type SparePartQuery struct {
	Offset        int
	Limit         int
	Search        string
	Category      string
	Brand         string
	BrandModel    string
	ModelType     string
	ModelTypeYear string
	MinStock      *int
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
}

// Normalize trims every field, drops sentinels, clamps paging and drops
// dependent filters whose parent is unset.
func (q SparePartQuery) Normalize() SparePartQuery {
	n := q
	n.Search = strings.TrimSpace(q.Search)
	n.Category = FilterValue(q.Category)
	n.Brand = FilterValue(q.Brand)
	n.BrandModel = FilterValue(q.BrandModel)
	n.ModelType = FilterValue(q.ModelType)
	n.ModelTypeYear = FilterValue(q.ModelTypeYear)

	if n.Brand == "" {
		n.BrandModel = ""
	}
	if n.BrandModel == "" {
		n.ModelType = ""
	}

	if n.Limit <= 0 {
		n.Limit = DefaultPageSize
	}
	if n.Limit > MaxPageSize {
		n.Limit = MaxPageSize
	}
	if n.Offset < 0 {
		n.Offset = 0
	}
	return n
}

// Validate rejects inconsistent ranges
func (q SparePartQuery) Validate() error {
	if q.MinPrice != nil && q.MinPrice.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("minPrice cannot be negative")
	}
	if q.MaxPrice != nil && q.MaxPrice.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("maxPrice cannot be negative")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return shared.ErrInvalidInput.WithMessage("minPrice cannot exceed maxPrice")
	}
	if q.MinStock != nil && *q.MinStock < 0 {
		return shared.ErrInvalidInput.WithMessage("minStock cannot be negative")
	}
	if q.ModelTypeYear != "" && !IsSentinel(q.ModelTypeYear) {
		return ValidateYear(strings.TrimSpace(q.ModelTypeYear))
	}
	return nil
}

// Values serializes the query. Only non-empty, non-sentinel filters are
// included; offset and limit are always present.
func (q SparePartQuery) Values() url.Values {
	n := q.Normalize()
	v := url.Values{}
	v.Set("offset", strconv.Itoa(n.Offset))
	v.Set("limit", strconv.Itoa(n.Limit))
	setIfNotEmpty(v, "search", n.Search)
	setIfNotEmpty(v, "category", n.Category)
	if n.MinStock != nil {
		v.Set("minStock", strconv.Itoa(*n.MinStock))
	}
	if n.MinPrice != nil {
		v.Set("minPrice", n.MinPrice.String())
	}
	if n.MaxPrice != nil {
		v.Set("maxPrice", n.MaxPrice.String())
	}
	setIfNotEmpty(v, "brand", n.Brand)
	setIfNotEmpty(v, "brandModel", n.BrandModel)
	setIfNotEmpty(v, "modelType", n.ModelType)
	setIfNotEmpty(v, "modelTypeYear", n.ModelTypeYear)
	return v
}

// Page returns the zero-based page index
func (q SparePartQuery) Page() int {
	n := q.Normalize()
	return n.Offset / n.Limit
}

// AtPage moves the query to the given zero-based page
func (q SparePartQuery) AtPage(page int) SparePartQuery {
	if page < 0 {
		page = 0
	}
	n := q.Normalize()
	n.Offset = page * n.Limit
	return n
}

// WithSearch changes the search text and resets pagination
func (q SparePartQuery) WithSearch(search string) SparePartQuery {
	q.Search = search
	q.Offset = 0
	return q
}

// WithFilters replaces the filter fields from the cascading filter state
// and resets pagination.
func (q SparePartQuery) WithFilters(s FilterState) SparePartQuery {
	q.Category = s.Category.Value
	q.Brand = s.Brand.Value
	q.BrandModel = s.BrandModel.Value
	q.ModelType = s.ModelType.Value
	q.ModelTypeYear = s.ModelTypeYear.Value
	q.Offset = 0
	return q
}

// ForStorefront applies the shopper stock floor
func (q SparePartQuery) ForStorefront() SparePartQuery {
	minStock := StorefrontMinStock
	q.MinStock = &minStock
	return q
}

func setIfNotEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// PageInfo is the pagination view of a listing page
type PageInfo struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	Count       int  `json:"count"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPageInfo derives pagination from the query that produced page.
// Next/previous availability comes from the backend's links, not from count.
func NewPageInfo[T any](q SparePartQuery, page Page[T]) PageInfo {
	n := q.Normalize()
	totalPages := 0
	if page.Count > 0 {
		totalPages = (page.Count + n.Limit - 1) / n.Limit
	}
	return PageInfo{
		Page:        n.Offset / n.Limit,
		PageSize:    n.Limit,
		TotalPages:  totalPages,
		Count:       page.Count,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	}
}
