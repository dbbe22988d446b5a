package inmemory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/opst/dmcatalog/pkg/domain"
	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// ReferenceCheck tells whether a partition key group is in use.
type ReferenceCheck func(ctx context.Context, group string) (bool, error)

type calendarMem struct {
	mu     sync.RWMutex
	groups map[string][]string // sorted
	refers ReferenceCheck
}

var _ kcalendar.CalendarInterface = &calendarMem{}

type Option func(*calendarMem) *calendarMem

// WithReferenceCheck sets the check preventing deletion of groups in use.
func WithReferenceCheck(check ReferenceCheck) Option {
	return func(c *calendarMem) *calendarMem {
		c.refers = check
		return c
	}
}

func New(options ...Option) *calendarMem {
	c := &calendarMem{
		groups: map[string][]string{},
		refers: func(context.Context, string) (bool, error) { return false, nil },
	}
	for _, o := range options {
		c = o(c)
	}
	return c
}

func (c *calendarMem) group(name string) domain.PartitionKeyGroup {
	return domain.PartitionKeyGroup{
		Name:           name,
		ExpectedValues: append([]string{}, c.groups[name]...),
	}
}

func (c *calendarMem) CreateGroup(_ context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.groups[name]; ok {
		return domain.PartitionKeyGroup{}, domerr.Conflict{Table: "partition_key_group", Identity: name}
	}
	sorted := slices.Clone(values)
	sort.Strings(sorted)
	c.groups[name] = slices.Compact(sorted)
	return c.group(name), nil
}

func (c *calendarMem) GetGroup(_ context.Context, name string) (domain.PartitionKeyGroup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.groups[name]; !ok {
		return domain.PartitionKeyGroup{}, domerr.UnknownGroup{Name: name}
	}
	return c.group(name), nil
}

// WithGroup calls fn with the group. The group is not deleted until fn returns.
//
// fn must not call methods of c.
func (c *calendarMem) WithGroup(_ context.Context, name string, fn func(domain.PartitionKeyGroup) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.groups[name]; !ok {
		return domerr.UnknownGroup{Name: name}
	}
	return fn(c.group(name))
}

func (c *calendarMem) DeleteGroup(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.groups[name]; !ok {
		return domerr.UnknownGroup{Name: name}
	}
	inUse, err := c.refers(ctx, name)
	if err != nil {
		return err
	}
	if inUse {
		return domerr.Conflict{Table: "format", Identity: "partition key group " + name}
	}
	delete(c.groups, name)
	return nil
}

func (c *calendarMem) AddExpectedValues(_ context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.groups[name]
	if !ok {
		return domain.PartitionKeyGroup{}, domerr.UnknownGroup{Name: name}
	}
	for _, v := range values {
		if _, found := slices.BinarySearch(current, v); found {
			return domain.PartitionKeyGroup{}, domerr.Conflict{
				Table: "expected_partition_value", Identity: name + ":" + v,
			}
		}
	}
	next := append(slices.Clone(current), values...)
	sort.Strings(next)
	c.groups[name] = slices.Compact(next)
	return c.group(name), nil
}

func (c *calendarMem) RemoveExpectedValues(_ context.Context, name string, values []string) (domain.PartitionKeyGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.groups[name]
	if !ok {
		return domain.PartitionKeyGroup{}, domerr.UnknownGroup{Name: name}
	}
	remove := map[string]struct{}{}
	for _, v := range values {
		if _, found := slices.BinarySearch(current, v); !found {
			return domain.PartitionKeyGroup{}, domerr.Missing{
				Table: "expected_partition_value", Identity: name + ":" + v,
			}
		}
		remove[v] = struct{}{}
	}
	next := make([]string, 0, len(current))
	for _, v := range current {
		if _, ok := remove[v]; !ok {
			next = append(next, v)
		}
	}
	c.groups[name] = next
	return c.group(name), nil
}

func (c *calendarMem) ExpectedValuesInRange(_ context.Context, name string, r domain.PartitionRange) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	values, ok := c.groups[name]
	if !ok {
		return nil, domerr.UnknownGroup{Name: name}
	}
	return domain.ExpectedValuesInRange(values, r), nil
}
