package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/B3hnamR/viranumpro/internal/adapter/fivesim"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
)

// Provider is the read side of the provider catalog used by the wizard.
type Provider interface {
	Prices(ctx context.Context, product string) ([]model.PriceOption, error)
	Countries(ctx context.Context) ([]model.Country, error)
	ValidProduct(ctx context.Context, product string) (bool, error)
	ValidCountry(ctx context.Context, country string) (bool, error)
	ValidOperator(ctx context.Context, product, country, operator string) (bool, error)
}

// Catalog is a read-through TTL cache over the public provider catalog.
// Stale data within the TTL is acceptable; entries refresh on miss.
type Catalog struct {
	client       fivesim.Client
	pricesTTL    time.Duration
	countriesTTL time.Duration
	now          func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	expires time.Time
	value   any
}

// New creates a catalog cache over the provider client.
func New(client fivesim.Client, pricesTTL, countriesTTL time.Duration) *Catalog {
	return &Catalog{
		client:       client,
		pricesTTL:    pricesTTL,
		countriesTTL: countriesTTL,
		now:          time.Now,
		entries:      make(map[string]cacheEntry),
	}
}

func (c *Catalog) cached(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if entry.expires.Before(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Catalog) store(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{expires: c.now().Add(ttl), value: value}
}

// Prices returns flattened price options for a product, cheapest first.
func (c *Catalog) Prices(ctx context.Context, product string) ([]model.PriceOption, error) {
	key := "prices:product:" + product
	if value, ok := c.cached(key); ok {
		return value.([]model.PriceOption), nil
	}

	raw, err := c.client.GuestPrices(ctx, "", product)
	if err != nil {
		return nil, err
	}

	rows := flattenPrices(raw)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Cost != rows[j].Cost {
			return rows[i].Cost < rows[j].Cost
		}
		return rows[i].Count > rows[j].Count
	})

	c.store(key, rows, c.pricesTTL)
	return rows, nil
}

// Countries returns provider countries that have at least one operator.
func (c *Catalog) Countries(ctx context.Context) ([]model.Country, error) {
	const key = "countries:list"
	if value, ok := c.cached(key); ok {
		return value.([]model.Country), nil
	}

	raw, err := c.client.Countries(ctx)
	if err != nil {
		return nil, err
	}

	countries := make([]model.Country, 0, len(raw))
	for countryKey, value := range raw {
		obj, ok := value.(map[string]any)
		if !ok {
			continue
		}
		name := countryKey
		if display, ok := obj["text_en"].(string); ok && display != "" {
			name = display
		}
		operators := countOperators(obj)
		if operators > 0 {
			countries = append(countries, model.Country{Key: countryKey, Name: name, Operators: operators})
		}
	}

	sort.Slice(countries, func(i, j int) bool {
		return strings.ToLower(countries[i].Name) < strings.ToLower(countries[j].Name)
	})

	c.store(key, countries, c.countriesTTL)
	return countries, nil
}

// ValidProduct reports whether the provider sells any numbers for product.
func (c *Catalog) ValidProduct(ctx context.Context, product string) (bool, error) {
	rows, err := c.Prices(ctx, product)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// ValidCountry reports whether country is a known provider country key.
// The wildcard "any" is always valid.
func (c *Catalog) ValidCountry(ctx context.Context, country string) (bool, error) {
	if country == model.OperatorAny {
		return true, nil
	}
	countries, err := c.Countries(ctx)
	if err != nil {
		return false, err
	}
	for _, candidate := range countries {
		if candidate.Key == country {
			return true, nil
		}
	}
	return false, nil
}

// ValidOperator reports whether operator serves product in country.
// The wildcard "any" is always valid.
func (c *Catalog) ValidOperator(ctx context.Context, product, country, operator string) (bool, error) {
	if operator == model.OperatorAny {
		return true, nil
	}
	rows, err := c.Prices(ctx, product)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.Operator != operator {
			continue
		}
		if country == model.OperatorAny || row.Country == country {
			return true, nil
		}
	}
	return false, nil
}

// flattenPrices converts the nested provider price payload into rows. The
// payload is either country -> operator -> info, or country -> product ->
// operator -> info when unfiltered.
func flattenPrices(raw map[string]any) []model.PriceOption {
	var rows []model.PriceOption
	for country, level1 := range raw {
		nested, ok := level1.(map[string]any)
		if !ok {
			continue
		}

		if hasPriceInfo(nested) {
			rows = append(rows, priceRows(country, nested)...)
			continue
		}

		for _, operators := range nested {
			inner, ok := operators.(map[string]any)
			if !ok {
				continue
			}
			rows = append(rows, priceRows(country, inner)...)
		}
	}
	return rows
}

func hasPriceInfo(level map[string]any) bool {
	for _, value := range level {
		if info, ok := value.(map[string]any); ok {
			if _, ok := info["cost"]; ok {
				return true
			}
			if _, ok := info["count"]; ok {
				return true
			}
		}
	}
	return false
}

func priceRows(country string, operators map[string]any) []model.PriceOption {
	var rows []model.PriceOption
	for operator, value := range operators {
		info, ok := value.(map[string]any)
		if !ok {
			continue
		}
		cost, hasCost := asFloat(info["cost"])
		count, hasCount := asFloat(info["count"])
		if !hasCost && !hasCount {
			continue
		}
		rows = append(rows, model.PriceOption{
			Country:  country,
			Operator: operator,
			Cost:     cost,
			Count:    int(count),
		})
	}
	return rows
}

func asFloat(value any) (float64, bool) {
	f, ok := value.(float64)
	return f, ok
}

func countOperators(country map[string]any) int {
	count := 0
	for key, value := range country {
		if key == "iso" || key == "prefix" || strings.HasPrefix(key, "text_") {
			continue
		}
		if _, ok := value.(map[string]any); ok {
			count++
		}
	}
	return count
}
