// Package filter turns untrusted query parameters into a domain.Criteria.
package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/listing/search"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
	// MaxSkip bounds the offset of far-out pages. Anything past it is an empty page
	// for any realistic collection, and skip+limit stays well inside int64.
	MaxSkip = math.MaxInt32
)

// Compile validates params and builds the criteria for a public browse. The
// isAvailable=true constraint is always set and cannot be overridden.
func Compile(params url.Values) (domain.Criteria, error) {
	c := domain.Criteria{AvailableOnly: true}

	if s := get(params, "species"); s != "" {
		sp := domain.Species(strings.ToLower(s))
		if !sp.IsValid() {
			return domain.Criteria{}, invalid("species", s, "unknown species")
		}
		c.Species = sp
	}

	var err error
	if c.MinPrice, err = optionalPrice(params, "minPrice"); err != nil {
		return domain.Criteria{}, err
	}
	if c.MaxPrice, err = optionalPrice(params, "maxPrice"); err != nil {
		return domain.Criteria{}, err
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return domain.Criteria{}, invalid("minPrice", get(params, "minPrice"), "must not exceed maxPrice")
	}

	c.Location = get(params, "location")
	// The term is reduced to plain tokens so that operator syntax such as -word or
	// "phrase" means the same thing in every store.
	c.Text = strings.Join(search.Tokenize(get(params, "search")), " ")

	page, err := positiveInt(params, "page", DefaultPage)
	if err != nil {
		return domain.Criteria{}, err
	}
	limit, err := positiveInt(params, "limit", DefaultLimit)
	if err != nil {
		return domain.Criteria{}, err
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	c.Page = page
	c.Limit = int64(limit)
	c.Skip = MaxSkip
	if int64(page-1) <= MaxSkip/c.Limit {
		c.Skip = int64(page-1) * c.Limit
	}
	return c, nil
}

func get(params url.Values, key string) string {
	return strings.TrimSpace(params.Get(key))
}

func optionalPrice(params url.Values, key string) (*float64, error) {
	raw := get(params, key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, invalid(key, raw, "must be a number")
	}
	if v < 0 {
		return nil, invalid(key, raw, "must not be negative")
	}
	return &v, nil
}

func positiveInt(params url.Values, key string, def int) (int, error) {
	raw := get(params, key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(key, raw, "must be an integer")
	}
	if v < 1 {
		return 0, invalid(key, raw, "must be at least 1")
	}
	return v, nil
}

func invalid(param, value, reason string) error {
	return &domain.InvalidParameterError{Param: param, Value: value, Reason: reason}
}
