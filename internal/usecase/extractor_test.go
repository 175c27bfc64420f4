package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amazonPage = `<html><head><title>Samsung 65" QLED TV</title></head><body>
<div id="wayfinding-breadcrumbs_feature_div">
  <a href="/electronics">Electronics</a> › <a href="/tvs">Televisions</a> › <a href="/qled">QLED TVs</a>
</div>
<h1 id="productTitle">  Samsung 65-Inch Class QLED 4K Q60D  </h1>
<div id="corePrice_feature_div"><span class="a-offscreen">$897.99</span></div>
</body></html>`

const genericPage = `<html><head><title>Great Deals on a 6-Drawer Dresser</title></head><body>
<h1>Modern 6-Drawer Dresser</h1>
<div class="product-price">Sale price: $249.00 <s>$329.00</s></div>
</body></html>`

const pricelessPage = `<html><body><div class="content">Out of stock</div></body></html>`

func TestExtractProduct_RetailerSelectors(t *testing.T) {
	product, err := ExtractProduct("https://www.amazon.com/dp/B0ABC123", amazonPage)
	require.NoError(t, err)

	require.NotNil(t, product.Price)
	assert.Equal(t, "$897.99", *product.Price)
	assert.Equal(t, "Samsung 65-Inch Class QLED 4K Q60D", product.Description)
	assert.Equal(t, "www.amazon.com", product.Source)
	assert.Equal(t, "amazon", product.PricerTag)
	assert.Equal(t, "Electronics", product.Category)
	// Second-to-last breadcrumb segment
	assert.Equal(t, "Televisions", product.SubCategory)
}

func TestExtractProduct_GenericFallback(t *testing.T) {
	product, err := ExtractProduct("https://shop.example.com/item/42", genericPage)
	require.NoError(t, err)

	require.NotNil(t, product.Price)
	assert.Equal(t, "$249.00", *product.Price, "first price match wins")
	assert.Equal(t, "Modern 6-Drawer Dresser", product.Description)
	assert.Equal(t, "generic", product.PricerTag)
	assert.Equal(t, "Furniture", product.Category, "keyword table drives generic category")
	assert.Equal(t, unknownValue, product.SubCategory)
}

func TestExtractProduct_NoPriceNoTitle(t *testing.T) {
	product, err := ExtractProduct("https://shop.example.com/item/43", pricelessPage)
	require.NoError(t, err)

	assert.Nil(t, product.Price)
	assert.Equal(t, unknownValue, product.Description)
	assert.Equal(t, unknownValue, product.Category)
	assert.Equal(t, unknownValue, product.SubCategory)
}

func TestExtractProduct_FlatBreadcrumbTrail(t *testing.T) {
	page := `<html><body>
<nav aria-label="breadcrumb">Home > Appliances > Refrigerators > French Door</nav>
<h1>LG French Door Refrigerator</h1>
<span class="sale-price">$1,899.00</span>
</body></html>`

	product, err := ExtractProduct("https://shop.example.com/fridge", page)
	require.NoError(t, err)

	assert.Equal(t, "Appliances", product.Category, "leading Home segment is skipped")
	assert.Equal(t, "Refrigerators", product.SubCategory)
	require.NotNil(t, product.Price)
	assert.Equal(t, "$1,899.00", *product.Price)
}

func TestParserForHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"www.amazon.com", "amazon"},
		{"www.walmart.com", "walmart"},
		{"www.bestbuy.com", "bestbuy"},
		{"shop.unknownstore.com", "generic"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parserForHost(tt.host).name, "host %s", tt.host)
	}
}

func TestCategoryKeywordTableOrder(t *testing.T) {
	// "tv" (Electronics) appears before Furniture keywords in the table, so a
	// page mentioning both resolves to Electronics.
	page := `<html><head><title>TV stand and table</title></head><body>
<h1>TV console table</h1><span class="price">$99.00</span></body></html>`

	product, err := ExtractProduct("https://shop.example.com/x", page)
	require.NoError(t, err)
	assert.Equal(t, "Electronics", product.Category)
}
