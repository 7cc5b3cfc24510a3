package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// Query is the set of filters for one fetch cycle against the catalog endpoint.
// Page and PageSize are optional; zero means "not set".
type Query struct {
	ProductType int
	FieldsKey   string
	Stock       bool
	Category    string
	Brand       string
	ProductID   string
	UpdateDate  string
	Page        int
	PageSize    int
}

// Categories splits the Category filter on commas, trimming whitespace and
// dropping empty tokens. The result preserves the configured order.
func (q Query) Categories() []string {
	if q.Category == "" {
		return nil
	}

	parts := strings.Split(q.Category, ",")
	categories := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			categories = append(categories, p)
		}
	}
	return categories
}

// ForCategory returns a copy of q restricted to a single category.
func (q Query) ForCategory(category string) Query {
	q.Category = category
	return q
}

// Split derives one query per category token. A query without a category
// filter (or with only blank tokens) yields itself.
func (q Query) Split() []Query {
	categories := q.Categories()
	if len(categories) == 0 {
		q.Category = ""
		return []Query{q}
	}

	queries := make([]Query, len(categories))
	for i, c := range categories {
		queries[i] = q.ForCategory(c)
	}
	return queries
}

// Params encodes the query for the given page as upstream query parameters.
func (q Query) Params(page int) url.Values {
	v := url.Values{}
	v.Set("ProductType", strconv.Itoa(q.ProductType))
	v.Set("Stock", strconv.FormatBool(q.Stock))

	if q.FieldsKey != "" {
		v.Set("FieldsKey", q.FieldsKey)
	}
	if q.Category != "" {
		v.Set("Category", q.Category)
	}
	if q.Brand != "" {
		v.Set("Brand", q.Brand)
	}
	if q.ProductID != "" {
		v.Set("ProductId", q.ProductID)
	}
	if q.UpdateDate != "" {
		v.Set("UpdateDate", q.UpdateDate)
	}
	if q.PageSize > 0 {
		v.Set("PageSize", strconv.Itoa(q.PageSize))
	}
	if page > 0 {
		v.Set("Page", strconv.Itoa(page))
	}
	return v
}
