package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(id string, price string, qty int) Item {
	return Item{
		ProductID: id,
		Code:      "SP-" + id,
		Name:      "Pastilla de freno " + id,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestCart_AddItem(t *testing.T) {
	t.Run("merges quantity on duplicate product id", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 1)))
		require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 2)))

		assert.Equal(t, 1, c.Len())
		item, ok := c.Find("p1")
		require.True(t, ok)
		assert.Equal(t, 3, item.Quantity)
	})

	t.Run("zero quantity defaults to one", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 0)))
		require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 0)))

		item, _ := c.Find("p1")
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("appends distinct products in order", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 1)))
		require.NoError(t, c.AddItem(newTestItem("p2", "5.00", 1)))

		require.Len(t, c.Items, 2)
		assert.Equal(t, "p1", c.Items[0].ProductID)
		assert.Equal(t, "p2", c.Items[1].ProductID)
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		c := New()
		err := c.AddItem(Item{Code: "X"})
		assert.True(t, errors.Is(err, ErrInvalidItem))

		err = c.AddItem(newTestItem("p1", "-1", 1))
		assert.True(t, errors.Is(err, ErrInvalidItem))
		assert.True(t, c.IsEmpty())
	})
}

func TestCart_UpdateQuantity(t *testing.T) {
	t.Run("sets quantity", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 1)))
		require.NoError(t, c.UpdateQuantity("p1", 5))

		item, _ := c.Find("p1")
		assert.Equal(t, 5, item.Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 1)))
		require.NoError(t, c.UpdateQuantity("p1", 0))

		assert.True(t, c.IsEmpty())
	})

	t.Run("negative removes the line", func(t *testing.T) {
		c := New()
		require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 4)))
		require.NoError(t, c.AddItem(newTestItem("p2", "10.00", 1)))
		require.NoError(t, c.UpdateQuantity("p1", -2))

		assert.Equal(t, 1, c.Len())
		_, ok := c.Find("p1")
		assert.False(t, ok)
	})

	t.Run("unknown product", func(t *testing.T) {
		c := New()
		err := c.UpdateQuantity("missing", 2)
		assert.True(t, errors.Is(err, ErrItemNotFound))
	})
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(newTestItem("p1", "10.00", 1)))
	require.NoError(t, c.AddItem(newTestItem("p2", "10.00", 2)))

	c.RemoveItem("p1")
	c.RemoveItem("missing")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.TotalQuantity())

	c.Clear()
	assert.True(t, c.IsEmpty())
	c.Clear()
	assert.True(t, c.IsEmpty())
}
