package domain

// FilterType selects how target products are resolved in the catalog.
type FilterType string

const (
	FilterAll         FilterType = "all"
	FilterCollection  FilterType = "collection"
	FilterVendor      FilterType = "vendor"
	FilterProductType FilterType = "productType"
	FilterTag         FilterType = "tag"
)

// TargetFilter is the resolved target specification handed to the catalog
// gateway. CollectionID carries the legacy collection fallback.
type TargetFilter struct {
	Type         FilterType
	Value        string
	CollectionID string
}

// Variant is one sellable line-item of a product.
type Variant struct {
	ID    string
	Title string
	Price string
}

// Product groups the variants sharing one parent catalog item.
type Product struct {
	ID       string
	Title    string
	Variants []Variant
}

// Collection is a named grouping of products in the upstream catalog.
type Collection struct {
	ID    string
	Title string
}
