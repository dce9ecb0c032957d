package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// Group names a family of cached queries that are invalidated together
type Group string

// Query-key groups
const (
	GroupSpareParts  Group = "spare_parts"
	GroupCategories  Group = "categories"
	GroupBrands      Group = "brands"
	GroupBrandModels Group = "brand_models"
	GroupModelTypes  Group = "model_types"
	GroupUsers       Group = "users"
	GroupOrders      Group = "orders"
	GroupUserDetails Group = "user_details"
)

// Key identifies one cached query: the resource group plus its parameters.
// Two keys built from the same parameters in any order are equal.
type Key struct {
	Group  Group
	Params url.Values
}

// NewKey builds a key; params may be nil
func NewKey(group Group, params url.Values) Key {
	return Key{Group: group, Params: params}
}

// String returns the canonical "group:digest" form. url.Values.Encode
// sorts by parameter name, which makes the digest order independent.
func (k Key) String() string {
	sum := sha256.Sum256([]byte(k.Params.Encode()))
	return string(k.Group) + ":" + hex.EncodeToString(sum[:16])
}
