package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumea-beauty/storefront/internal/domain/product"
)

func TestCodecRoundTrip(t *testing.T) {
	c := Cart{
		{
			Product: product.Product{
				ID:            42,
				Name:          product.Name{Ko: "비타민 세럼", En: "Vitamin Serum"},
				Price:         decimal.RequireFromString("89000"),
				OriginalPrice: decimal.RequireFromString("120000"),
				OnSale:        true,
				Category:      "skincare",
				Reviews:       231,
				Likes:         1024,
			},
			Quantity: 3,
		},
		{
			Product: product.Product{
				ID:    7,
				Name:  product.Name{Ko: "립 틴트", En: "Lip Tint"},
				Price: decimal.RequireFromString("18000.50"),
			},
			Quantity: 1,
		},
	}

	decoded, err := DecodeCart(EncodeCart(c))
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, int64(42), decoded[0].Product.ID)
	assert.Equal(t, "비타민 세럼", decoded[0].Product.Name.Ko)
	assert.True(t, decoded[0].Product.Price.Equal(decimal.RequireFromString("89000")))
	assert.Equal(t, 3, decoded[0].Quantity)
	assert.True(t, decoded[1].Product.Price.Equal(decimal.RequireFromString("18000.50")))
}

func TestEncodeEmptyCart(t *testing.T) {
	assert.Equal(t, "[]", string(EncodeCart(nil)))
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated", `[{"product":`},
		{"not an array", `{"product":{}}`},
		{"unknown line field", `[{"product":{"id":1,"name":{"ko":"","en":""},"price":"1","originalPrice":"1","onSale":false,"category":"","reviews":0,"likes":0},"quantity":1,"extra":true}]`},
		{"unknown product field", `[{"product":{"id":1,"color":"red"},"quantity":1}]`},
		{"missing product", `[{"quantity":2}]`},
		{"missing product id", `[{"product":{"category":"skincare"},"quantity":2}]`},
		{"zero quantity", `[{"product":{"id":1},"quantity":0}]`},
		{"negative quantity", `[{"product":{"id":1},"quantity":-3}]`},
		{"price not a decimal", `[{"product":{"id":1,"price":"banana"},"quantity":1}]`},
		{"price as number", `[{"product":{"id":1,"price":150000},"quantity":1}]`},
		{"duplicate product line", `[{"product":{"id":1},"quantity":1},{"product":{"id":1},"quantity":2}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCart([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
