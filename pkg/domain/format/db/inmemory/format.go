package inmemory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/opst/dmcatalog/pkg/domain"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
)

// GroupLookup resolves partition key groups.
type GroupLookup interface {
	// WithGroup calls fn while the group is kept from deletion.
	//
	// It returns UnknownGroup error when the group is not registered.
	WithGroup(ctx context.Context, name string, fn func(domain.PartitionKeyGroup) error) error
}

type formatMem struct {
	mu      sync.RWMutex
	formats map[domain.FormatKey]domain.Format
	groups  GroupLookup
}

var _ kformat.FormatInterface = &formatMem{}

// New returns a FormatInterface keeping formats in memory.
//
// groups is used to verify partition key groups of formats.
func New(groups GroupLookup) *formatMem {
	return &formatMem{
		formats: map[domain.FormatKey]domain.Format{},
		groups:  groups,
	}
}

func clone(f domain.Format) domain.Format {
	f.SubPartitionKeys = append([]string{}, f.SubPartitionKeys...)
	return f
}

func (m *formatMem) Register(ctx context.Context, f domain.Format) (domain.Format, error) {
	if f.PartitionKeyGroup == "" {
		return m.register(f)
	}
	var ret domain.Format
	err := m.groups.WithGroup(ctx, f.PartitionKeyGroup, func(domain.PartitionKeyGroup) error {
		var err error
		ret, err = m.register(f)
		return err
	})
	if err != nil {
		return domain.Format{}, err
	}
	return ret, nil
}

// register stores f.
//
// Lock order is the calendar's first, and then m.mu.
func (m *formatMem) register(f domain.Format) (domain.Format, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.formats[f.FormatKey]; ok {
		return domain.Format{}, domerr.Conflict{Table: "format", Identity: f.FormatKey.String()}
	}
	f = clone(f)
	m.formats[f.FormatKey] = f
	return clone(f), nil
}

func (m *formatMem) Get(_ context.Context, key domain.FormatKey) (domain.Format, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.formats[key]
	if !ok {
		return domain.Format{}, domerr.Missing{Table: "format", Identity: key.String()}
	}
	return clone(f), nil
}

func (m *formatMem) Find(_ context.Context, q kformat.FindQuery) ([]domain.Format, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	match := func(want, got string) bool { return want == "" || want == got }

	ret := []domain.Format{}
	for k, f := range m.formats {
		if match(q.Namespace, k.Namespace) &&
			match(q.Definition, k.Definition) &&
			match(q.Usage, k.Usage) &&
			match(q.FileType, k.FileType) {
			ret = append(ret, clone(f))
		}
	}
	slices.SortFunc(ret, func(a, b domain.Format) int {
		return cmp.Or(
			cmp.Compare(a.Namespace, b.Namespace),
			cmp.Compare(a.Definition, b.Definition),
			cmp.Compare(a.Usage, b.Usage),
			cmp.Compare(a.FileType, b.FileType),
			cmp.Compare(a.Version, b.Version),
		)
	})
	return ret, nil
}

// RefersGroup tells whether any format refers the partition key group.
func (m *formatMem) RefersGroup(_ context.Context, group string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.formats {
		if f.PartitionKeyGroup == group {
			return true, nil
		}
	}
	return false, nil
}
