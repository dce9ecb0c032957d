// Package cart holds the shopping cart and its pricing rules.
package cart

import (
	"strings"

	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Error codes for cart operations
var (
	ErrItemNotFound = shared.NewDomainError("CART_ITEM_NOT_FOUND", "Cart item not found")
	ErrInvalidItem  = shared.NewDomainError("CART_INVALID_ITEM", "Cart item is invalid")
)

// Item is one line of the cart. JSON names follow the persisted
// cart-storage document so existing clients can read it back.
type Item struct {
	ProductID string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image,omitempty"`
}

// Validate checks the item can be stored in a cart.
// A zero quantity is allowed here and means "one" on add.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ProductID) == "" {
		return ErrInvalidItem.WithMessage("Product id is required")
	}
	if strings.TrimSpace(i.Code) == "" {
		return ErrInvalidItem.WithMessage("Product code is required")
	}
	if i.UnitPrice.IsNegative() {
		return ErrInvalidItem.WithMessage("Unit price cannot be negative")
	}
	if i.Quantity < 0 {
		return ErrInvalidItem.WithMessage("Quantity cannot be negative")
	}
	return nil
}

// Cart maps product id to line item, keeping insertion order.
type Cart struct {
	Items []Item `json:"items"`
}

// New returns an empty cart
func New() *Cart {
	return &Cart{Items: make([]Item, 0)}
}

// AddItem merges the quantity into an existing line with the same product id,
// or appends a new line. A quantity of zero counts as one.
func (c *Cart) AddItem(item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	if idx := c.indexOf(item.ProductID); idx >= 0 {
		c.Items[idx].Quantity += item.Quantity
		return nil
	}

	c.Items = append(c.Items, item)
	return nil
}

// RemoveItem drops the line for productID. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(productID string) {
	if idx := c.indexOf(productID); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line instead of storing it.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		return nil
	}
	c.Items[idx].Quantity = quantity
	return nil
}

// Clear empties the cart. Safe to call on an empty cart.
func (c *Cart) Clear() {
	c.Items = make([]Item, 0)
}

// Find returns the line for productID
func (c *Cart) Find(productID string) (Item, bool) {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.Items[idx], true
	}
	return Item{}, false
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	return len(c.Items)
}

// TotalQuantity returns the number of units across all lines
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) indexOf(productID string) int {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			return idx
		}
	}
	return -1
}
