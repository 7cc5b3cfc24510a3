// Package normalize maps raw catalog items onto the feed's fixed record shape.
// Normalization never fails: absent or malformed values fall back to defaults.
package normalize

import (
	"penta-xml-feed/internal/catalog"
)

// DefaultCurrency is used when an item carries no currency at all.
const DefaultCurrency = "USD"

// Normalizer turns raw catalog items into records.
type Normalizer struct {
	stock StockPolicy
}

// New creates a normalizer using the given stock policy. A nil policy falls
// back to the cap policy with the default threshold.
func New(stock StockPolicy) *Normalizer {
	if stock == nil {
		stock = CapPolicy{Threshold: DefaultStockCap}
	}
	return &Normalizer{stock: stock}
}

// StockPolicy returns the policy in use.
func (n *Normalizer) StockPolicy() StockPolicy {
	return n.stock
}

// Normalize maps one item.
func (n *Normalizer) Normalize(item catalog.RawItem) Record {
	product := item.Object("product")
	price := item.Object("price")

	rec := Record{
		TopGroupCode:  item.Text("categoryLevel1"),
		TopGroupName:  item.Text("categoryLevel1Name"),
		MainGroupCode: item.Text("categoryLevel2"),
		MainGroupName: item.Text("categoryLevel2Name"),
		SubGroupCode:  item.Text("categoryLevel4"),
		SubGroupName:  item.Text("categoryLevel4Name"),

		Code:             product.Text("productID"),
		Name:             product.Text("name"),
		ProductGroup:     product.Text("materialGroupValue"),
		ProductGroupCode: product.Text("materialGroupID"),

		Currency:     currency(price),
		EndUserPrice: FormatPrice(price.Text("endUserPrice")),
		DealerPrice:  FormatPrice(price.Text("customerPrice")),
		SpecialPrice: FormatPrice(price.Text("specialPrice")),
		Quantity:     n.stock.Quantity(item),

		Warranty:           product.Text("warranty"),
		BrandCode:          product.Text("exMaterialGroupID"),
		BrandName:          product.Text("exMaterialGroupValue"),
		TaxRate:            product.Text("vatRate"),
		Volume:             product.Text("volume"),
		ManufacturerPartNo: product.Text("producerPartNo"),
		Barcode:            product.Text("ean"),
		OldCode:            product.Text("oldProductID"),
		NetWeight:          product.Text("netWeight"),
		GrossWeight:        product.Text("grossWeight"),
		Origin:             product.Text("origin"),
		ShopCategories:     product.Text("shopCategories"),
		SpecialStock:       product.Text("specialStock"),
		DiscountPercent:    price.Text("discountPercentage"),
	}
	rec.Dimensions, rec.DimensionUnit = dimensions(product)
	return rec
}

// NormalizeAll maps items in order.
func (n *Normalizer) NormalizeAll(items []catalog.RawItem) []Record {
	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = n.Normalize(item)
	}
	return records
}

func currency(price catalog.Fields) string {
	for _, key := range []string{"endUserPriceCurrency", "customerPriceCurreny", "customerPriceCurrency"} {
		if c := price.Text(key); c != "" {
			return c
		}
	}
	return DefaultCurrency
}

// dimensions formats "{length}h x {width}w" in centimetres, substituting "0"
// for a missing side. Both values are empty when neither side is known.
func dimensions(product catalog.Fields) (string, string) {
	if !product.Has("length") && !product.Has("width") {
		return "", ""
	}
	return product.TextOr("length", "0") + "h x " + product.TextOr("width", "0") + "w", "cm"
}
