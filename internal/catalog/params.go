// Package catalog implements the product listing pipeline: sort, search,
// filter and paginate over an in-memory product snapshot.
package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SortKey selects the ordering of a listing.
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPrice     SortKey = "price"
	SortByPriceDesc SortKey = "priceDesc"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ParseSortKey maps a query value to a sort key. Unknown values fall back to name.
func ParseSortKey(value string) SortKey {
	switch strings.TrimSpace(value) {
	case "price", "price-ascending":
		return SortByPrice
	case "priceDesc", "price-descending":
		return SortByPriceDesc
	default:
		return SortByName
	}
}

// Params are the optional query parameters of a catalog listing.
type Params struct {
	OrderBy    SortKey
	SearchTerm string
	Brands     []string
	Types      []string
	PageNumber int
	PageSize   int
}

// Limits bound page sizes for Normalize.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits returns the package defaults.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: DefaultPageSize, MaxPageSize: MaxPageSize}
}

// Normalize clamps paging values: pageNumber < 1 becomes 1, pageSize < 1
// becomes the default and pageSize above the maximum becomes the maximum.
func (p Params) Normalize(limits Limits) Params {
	if limits.DefaultPageSize < 1 {
		limits.DefaultPageSize = DefaultPageSize
	}
	if limits.MaxPageSize < limits.DefaultPageSize {
		limits.MaxPageSize = limits.DefaultPageSize
	}

	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = limits.DefaultPageSize
	case p.PageSize > limits.MaxPageSize:
		p.PageSize = limits.MaxPageSize
	}
	if p.OrderBy == "" {
		p.OrderBy = SortByName
	}
	return p
}

// ParseParams reads listing parameters from a query string and normalizes them.
// Non-numeric page values are rejected.
func ParseParams(values url.Values, limits Limits) (Params, error) {
	params := Params{
		OrderBy:    ParseSortKey(values.Get("orderBy")),
		SearchTerm: values.Get("searchTerm"),
		Brands:     splitList(values["brands"]),
		Types:      splitList(values["types"]),
	}

	var err error
	if params.PageNumber, err = parseInt(values.Get("pageNumber")); err != nil {
		return Params{}, fmt.Errorf("invalid pageNumber: %w", err)
	}
	if params.PageSize, err = parseInt(values.Get("pageSize")); err != nil {
		return Params{}, fmt.Errorf("invalid pageSize: %w", err)
	}

	return params.Normalize(limits), nil
}

func parseInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// splitList accepts both repeated keys and comma separated values.
func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
