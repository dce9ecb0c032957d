package catalog

import (
	"github.com/autoparts/storefront/internal/domain/catalog"
)

// Audience selects the listing policy
type Audience int

const (
	// AudienceStorefront hides out-of-stock parts
	AudienceStorefront Audience = iota
	// AudienceAdmin lists everything
	AudienceAdmin
)

// SparePartListing is one page of spare parts with its pagination
type SparePartListing struct {
	Items []catalog.SparePart `json:"items"`
	Page  catalog.PageInfo    `json:"page"`
	// Query is the encoded backend query, useful to clients that keep it
	// in their address bar
	Query string `json:"query"`
}

// FilterPanel is the cascading filter state with every option list the
// current selection needs
type FilterPanel struct {
	State catalog.FilterState `json:"state"`
	Query catalog.Selection   `json:"selection"`
}
