// Package profile identifies a browser and persists its client state.
package profile

import (
	"context"
	"time"

	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// Fixed document keys within a profile
const (
	KeyAuth     = "auth-storage"
	KeyCart     = "cart-storage"
	KeyCheckout = "checkout-storage"
)

// ErrInvalidProfileID is returned for ids that are not UUIDs
var ErrInvalidProfileID = shared.NewDomainError("INVALID_PROFILE", "Profile id is invalid")

// ID identifies one browser profile
type ID string

// NewID issues a fresh profile id
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates a profile id received from a cookie
func ParseID(raw string) (ID, error) {
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidProfileID
	}
	return ID(u.String()), nil
}

// String returns the id text
func (id ID) String() string {
	return string(id)
}

// Store is the durable key-value storage behind the client store.
// Values are opaque JSON documents; a missing key is not an error.
type Store interface {
	// Get returns the document under key, or found=false
	Get(ctx context.Context, id ID, key string) (value []byte, found bool, err error)
	// Put replaces the document under key
	Put(ctx context.Context, id ID, key string, value []byte) error
	// Delete removes the document under key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, id ID, key string) error
	// Touch extends the retention of every document of the profile
	Touch(ctx context.Context, id ID, ttl time.Duration) error
	// Close releases the underlying connection
	Close() error
}
