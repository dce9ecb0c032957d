package store

import (
	"testing"
	"time"

	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore_KeyLayout(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	s := NewRedisStore(client, time.Hour)
	id := profile.ID("0f8fad5b-d9cb-469f-a165-70867728950e")

	assert.Equal(t,
		"storefront:profile:0f8fad5b-d9cb-469f-a165-70867728950e:cart-storage",
		s.Key(id, profile.KeyCart),
	)
	assert.Equal(t,
		"storefront:profile:0f8fad5b-d9cb-469f-a165-70867728950e:auth-storage",
		s.Key(id, profile.KeyAuth),
	)
}
