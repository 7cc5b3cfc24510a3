package normalize

import (
	"fmt"
	"strconv"

	"penta-xml-feed/internal/catalog"
)

// Stock policy names accepted by NewStockPolicy.
const (
	PolicyCap      = "cap"
	PolicyExternal = "external"
)

// DefaultStockCap is the quantity from which the cap policy prints "N+".
const DefaultStockCap = 200

// StockPolicy derives the displayed quantity of an item.
type StockPolicy interface {
	Name() string
	Quantity(item catalog.RawItem) string
}

// CapPolicy prints the reported base quantity as-is, or "{Threshold}+" once
// it reaches Threshold.
type CapPolicy struct {
	Threshold int
}

// Name implements StockPolicy.
func (p CapPolicy) Name() string { return PolicyCap }

// Quantity implements StockPolicy.
func (p CapPolicy) Quantity(item catalog.RawItem) string {
	raw := item.Object("product").TextOr("qty", "0")
	if n, ok := leadingInt(raw); ok && n >= p.Threshold {
		return strconv.Itoa(p.Threshold) + "+"
	}
	return raw
}

// ExternalWarehousePolicy adds the stock held at one secondary location to
// the base quantity. Both values are read with ParseQuantity.
type ExternalWarehousePolicy struct {
	LocationCode string
}

// Name implements StockPolicy.
func (p ExternalWarehousePolicy) Name() string { return PolicyExternal }

// Quantity implements StockPolicy.
func (p ExternalWarehousePolicy) Quantity(item catalog.RawItem) string {
	base := ParseQuantity(item.Object("product").Text("qty"))
	return strconv.Itoa(base + p.external(item))
}

func (p ExternalWarehousePolicy) external(item catalog.RawItem) int {
	for _, entry := range item.List("stocks") {
		if entry.Text("locationCode") != p.LocationCode {
			continue
		}
		return ParseQuantity(entry.Text("stock"))
	}
	return 0
}

// NewStockPolicy builds the named policy.
func NewStockPolicy(name string, threshold int, locationCode string) (StockPolicy, error) {
	switch name {
	case PolicyCap:
		if threshold <= 0 {
			threshold = DefaultStockCap
		}
		return CapPolicy{Threshold: threshold}, nil
	case PolicyExternal:
		return ExternalWarehousePolicy{LocationCode: locationCode}, nil
	default:
		return nil, fmt.Errorf("unknown stock policy %q", name)
	}
}
