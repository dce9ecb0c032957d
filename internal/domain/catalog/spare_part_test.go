package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/autoparts/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparePartPage_DecodeBackendPayload(t *testing.T) {
	payload := `{
		"count": 2,
		"next": null,
		"previous": "http://api/spare-part?offset=0&limit=10",
		"results": [{"_id": "a1", "code": "FR-01", "name": "Disco", "price": 120.5, "stock": 3, "images": ["x.png"]}]
	}`

	var page SparePartPage
	require.NoError(t, json.Unmarshal([]byte(payload), &page))

	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrevious())
	require.Len(t, page.Results, 1)
	assert.True(t, decimal.RequireFromString("120.5").Equal(page.Results[0].Price))
	assert.Equal(t, "x.png", page.Results[0].PrimaryImage())
	assert.True(t, page.Results[0].InStock())
}

func TestSparePartDraft_Validate(t *testing.T) {
	valid := SparePartDraft{Name: "Disco", Price: decimal.NewFromInt(10), Stock: 1}
	assert.NoError(t, valid.Validate())

	cases := map[string]SparePartDraft{
		"missing name":   {Price: decimal.NewFromInt(1)},
		"negative price": {Name: "x", Price: decimal.NewFromInt(-1)},
		"negative stock": {Name: "x", Stock: -1},
		"bad year":       {Name: "x", ModelTypeYear: "1900"},
	}
	for name, draft := range cases {
		t.Run(name, func(t *testing.T) {
			err := draft.Validate()
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}
}

func TestSparePartPatch_Validate(t *testing.T) {
	empty := ""
	assert.Error(t, SparePartPatch{Name: &empty}.Validate())

	stock := 0
	assert.NoError(t, SparePartPatch{Stock: &stock}.Validate())

	body, err := json.Marshal(SparePartPatch{Stock: &stock})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stock":0}`, string(body))
}

func TestInputs_ValidateForCreate(t *testing.T) {
	assert.NoError(t, BrandInput{Name: "Toyota"}.ValidateForCreate())
	assert.Error(t, BrandInput{}.ValidateForCreate())
	assert.Error(t, BrandModelInput{Name: "Corolla"}.ValidateForCreate())
	assert.NoError(t, BrandModelInput{BrandID: "b1", Name: "Corolla"}.ValidateForCreate())
	assert.Error(t, ModelTypeInput{Name: "Sedan"}.ValidateForCreate())
	assert.Error(t, CategoryInput{Name: "frenos"}.ValidateForCreate())
	assert.NoError(t, CategoryInput{Name: "frenos", Title: "Frenos"}.ValidateForCreate())
}
