// Package cached provides a CalendarInterface caching groups of another one.
//
// Calendars are read for every range check of availability, but rarely written.
package cached

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/opst/dmcatalog/pkg/domain"
	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
)

const (
	DefaultExpiration      = 1 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
)

type calendarCache struct {
	base  kcalendar.CalendarInterface
	cache *gocache.Cache
}

var _ kcalendar.CalendarInterface = &calendarCache{}

// New wraps base with a cache.
//
// ttl <= 0 means DefaultExpiration.
// Writes through this are reflected to the cache immediately,
// but writes bypassing this are reflected after ttl.
func New(base kcalendar.CalendarInterface, ttl time.Duration) *calendarCache {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	return &calendarCache{
		base:  base,
		cache: gocache.New(ttl, DefaultCleanupInterval),
	}
}

func (c *calendarCache) get(name string) (domain.PartitionKeyGroup, bool) {
	v, found := c.cache.Get(name)
	if !found {
		return domain.PartitionKeyGroup{}, false
	}
	g, ok := v.(domain.PartitionKeyGroup)
	return g, ok
}

func (c *calendarCache) put(g domain.PartitionKeyGroup) {
	g.ExpectedValues = append([]string{}, g.ExpectedValues...)
	c.cache.SetDefault(g.Name, g)
}

func (c *calendarCache) CreateGroup(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	g, err := c.base.CreateGroup(ctx, name, values)
	if err != nil {
		return g, err
	}
	c.put(g)
	return g, nil
}

func (c *calendarCache) GetGroup(ctx context.Context, name string) (domain.PartitionKeyGroup, error) {
	if g, ok := c.get(name); ok {
		g.ExpectedValues = append([]string{}, g.ExpectedValues...)
		return g, nil
	}
	g, err := c.base.GetGroup(ctx, name)
	if err != nil {
		return g, err
	}
	c.put(g)
	return g, nil
}

func (c *calendarCache) DeleteGroup(ctx context.Context, name string) error {
	c.cache.Delete(name)
	return c.base.DeleteGroup(ctx, name)
}

func (c *calendarCache) AddExpectedValues(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	c.cache.Delete(name)
	g, err := c.base.AddExpectedValues(ctx, name, values)
	if err != nil {
		return g, err
	}
	c.put(g)
	return g, nil
}

func (c *calendarCache) RemoveExpectedValues(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	c.cache.Delete(name)
	g, err := c.base.RemoveExpectedValues(ctx, name, values)
	if err != nil {
		return g, err
	}
	c.put(g)
	return g, nil
}

func (c *calendarCache) ExpectedValuesInRange(ctx context.Context, name string, r domain.PartitionRange) ([]string, error) {
	g, err := c.GetGroup(ctx, name)
	if err != nil {
		return nil, err
	}
	return domain.ExpectedValuesInRange(g.ExpectedValues, r), nil
}
