package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductJSON_PriceIsExact(t *testing.T) {
	want := decimal.RequireFromString("19.99")
	p := Product{ID: 1, Name: "Cable", Price: want, Stock: 3}

	for i := 0; i < 10; i++ {
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		p = Product{}
		require.NoError(t, json.Unmarshal(raw, &p))
	}

	assert.True(t, p.Price.Equal(want), "got %s", p.Price)
	assert.Equal(t, "19.99", p.Price.String())
}

func TestProductJSON_FieldNames(t *testing.T) {
	raw, err := json.Marshal(Product{ID: 4, Name: "Lamp", Price: decimal.RequireFromString("29.99")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"name":"Lamp","price":"29.99","stock":0}`, string(raw))
}

func TestNewProductJSON_AcceptsNumberOrString(t *testing.T) {
	var a, b NewProduct
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","price":0.1,"stock":1}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"name":"B","price":"0.1","stock":1}`), &b))

	assert.True(t, a.Price.Equal(decimal.New(1, -1)))
	assert.True(t, a.Price.Equal(b.Price))
}

func TestFilterJSON(t *testing.T) {
	raw, err := json.Marshal(Filter{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	var f Filter
	require.NoError(t, json.Unmarshal([]byte(`{"name_contains":"lap","min_price":"50.00","in_stock_only":true}`), &f))
	require.NotNil(t, f.NameContains)
	assert.Equal(t, "lap", *f.NameContains)
	require.NotNil(t, f.MinPrice)
	assert.True(t, f.MinPrice.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, f.MaxPrice)
	assert.True(t, f.InStockOnly)
	assert.False(t, f.IsEmpty())
}

func TestFilterMatch(t *testing.T) {
	p := Product{Name: "Desk Lamp", Price: decimal.RequireFromString("29.99"), Stock: 0}

	lamp := "LAMP"
	assert.True(t, Filter{NameContains: &lamp}.Match(p))
	assert.False(t, Filter{InStockOnly: true}.Match(p))

	exact := decimal.RequireFromString("29.990")
	assert.True(t, Filter{MinPrice: &exact, MaxPrice: &exact}.Match(p))

	empty := ""
	assert.True(t, Filter{NameContains: &empty}.Match(p))
	assert.True(t, Filter{}.Match(p))
}
