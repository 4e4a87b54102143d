package catalog

import (
	"sort"
	"strings"

	"restore/internal/model"
)

// Metadata describes a page of results. It is sent alongside the items,
// never inside them.
type Metadata struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
}

// Page is one page of a listing plus its metadata.
type Page struct {
	Items    []model.Product
	Metadata Metadata
}

// Apply runs sort, search, filter and paginate over products. The input
// slice is not modified. Params are expected to be normalized.
func Apply(products []model.Product, params Params) Page {
	matched := Filter(Search(products, params.SearchTerm), params.Brands, params.Types)
	sorted := Sort(matched, params.OrderBy)
	return Paginate(sorted, params.PageNumber, params.PageSize)
}

// Sort returns a sorted copy. Ties are broken by ascending ID.
func Sort(products []model.Product, key SortKey) []model.Product {
	out := make([]model.Product, len(products))
	copy(out, products)

	var less func(a, b model.Product) bool
	switch key {
	case SortByPrice:
		less = func(a, b model.Product) bool {
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return a.ID < b.ID
		}
	case SortByPriceDesc:
		less = func(a, b model.Product) bool {
			if a.Price != b.Price {
				return a.Price > b.Price
			}
			return a.ID < b.ID
		}
	default:
		less = func(a, b model.Product) bool {
			if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
				return c < 0
			}
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Search keeps products whose name contains term, ignoring case.
// A blank term matches everything.
func Search(products []model.Product, term string) []model.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// Filter keeps products matching any of brands and any of types.
// An empty set places no constraint on its field.
func Filter(products []model.Product, brands, types []string) []model.Product {
	if len(brands) == 0 && len(types) == 0 {
		return products
	}

	brandSet := lowerSet(brands)
	typeSet := lowerSet(types)

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if len(brandSet) > 0 && !brandSet[strings.ToLower(p.Brand)] {
			continue
		}
		if len(typeSet) > 0 && !typeSet[strings.ToLower(p.Type)] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Paginate slices out page pageNumber of size pageSize. Pages past the end
// are empty but still report the true totals.
func Paginate(products []model.Product, pageNumber, pageSize int) Page {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(products)
	meta := Metadata{
		CurrentPage: pageNumber,
		TotalPages:  (total + pageSize - 1) / pageSize,
		PageSize:    pageSize,
		TotalCount:  total,
	}

	start := (pageNumber - 1) * pageSize
	if start >= total {
		return Page{Items: []model.Product{}, Metadata: meta}
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]model.Product, end-start)
	copy(items, products[start:end])
	return Page{Items: items, Metadata: meta}
}

// Distinct returns the sorted distinct brands and types of products.
func Distinct(products []model.Product) model.ProductFilters {
	brands := make(map[string]struct{})
	types := make(map[string]struct{})
	for _, p := range products {
		if p.Brand != "" {
			brands[p.Brand] = struct{}{}
		}
		if p.Type != "" {
			types[p.Type] = struct{}{}
		}
	}
	return model.ProductFilters{
		Brands: sortedKeys(brands),
		Types:  sortedKeys(types),
	}
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[strings.ToLower(v)] = true
		}
	}
	return set
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
