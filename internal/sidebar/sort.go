package sidebar

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// SortKey selects a product ordering.
type SortKey string

const (
	SortPopular   SortKey = "popular"    // preserve backend order
	SortPriceAsc  SortKey = "price_asc"  // cheapest first
	SortPriceDesc SortKey = "price_desc" // most expensive first
	SortName      SortKey = "name"       // collated name order
)

// ValidSortKey reports whether key is one of the supported orderings.
func ValidSortKey(key SortKey) bool {
	switch key {
	case SortPopular, SortPriceAsc, SortPriceDesc, SortName:
		return true
	}
	return false
}

// nameCollator mirrors the browser's localeCompare for product names.
var nameCollator = collate.New(language.Korean)

// SortProducts returns a sorted copy. The sort is stable so equal keys keep
// the backend's order; SortPopular is defined as no reordering at all.
func SortProducts(products []types.Product, key SortKey) []types.Product {
	out := append([]types.Product(nil), products...)
	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return nameCollator.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
	return out
}

// Page extracts one page (0-based) of the product list. Out-of-range pages
// yield an empty slice.
func Page(products []types.Product, page, size int) []types.Product {
	if size <= 0 || page < 0 {
		return nil
	}
	start := page * size
	if start >= len(products) {
		return nil
	}
	end := start + size
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

// PageCount returns how many pages the list spans.
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
