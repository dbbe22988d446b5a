package inmemory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opst/dmcatalog/pkg/domain"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// FormatLookup resolves formats.
type FormatLookup interface {
	Get(ctx context.Context, key domain.FormatKey) (domain.Format, error)
}

type partitionKey struct {
	format         domain.FormatKey
	partitionValue string
}

// dataMem keeps Data in memory.
//
// Lock order is: family lock, lineage lock, then mu.
// Mutations of a family hold its family lock.
// Mutations of lineage edges hold the lineage lock.
type dataMem struct {
	formats FormatLookup
	clock   func() time.Time

	families *keyedMutex[domain.Family]
	lineage  sync.Mutex

	mu        sync.RWMutex
	data      map[domain.Family]map[int]*domain.Data
	partition map[partitionKey]map[domain.Family]struct{}
	parents   map[domain.DataKey]map[domain.DataKey]struct{}
	children  map[domain.DataKey]map[domain.DataKey]struct{}
}

var _ kdata.DataInterface = &dataMem{}

type Option func(*dataMem)

// WithClock replaces the clock used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(dm *dataMem) {
		dm.clock = clock
	}
}

// New returns a DataInterface keeping Data in memory.
//
// formats is used to verify formats of registering Data.
func New(formats FormatLookup, options ...Option) *dataMem {
	dm := &dataMem{
		formats:   formats,
		clock:     time.Now,
		families:  newKeyedMutex[domain.Family](),
		data:      map[domain.Family]map[int]*domain.Data{},
		partition: map[partitionKey]map[domain.Family]struct{}{},
		parents:   map[domain.DataKey]map[domain.DataKey]struct{}{},
		children:  map[domain.DataKey]map[domain.DataKey]struct{}{},
	}
	for _, o := range options {
		o(dm)
	}
	return dm
}

func missing(key domain.DataKey) error {
	return domerr.Missing{Table: "data", Identity: key.String()}
}

// get returns stored Data. It should be called with mu locked.
func (dm *dataMem) get(key domain.DataKey) (*domain.Data, bool) {
	fam, ok := dm.data[key.Family]
	if !ok {
		return nil, false
	}
	d, ok := fam[key.Version]
	return d, ok
}

func (dm *dataMem) members(family domain.Family) []domain.FamilyMember {
	ret := []domain.FamilyMember{}
	for _, d := range dm.data[family] {
		ret = append(ret, domain.FamilyMember{Version: d.Version, Latest: d.Latest, Status: d.Status})
	}
	return ret
}

func keys(m map[domain.DataKey]struct{}) []domain.DataKey {
	ret := make([]domain.DataKey, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	slices.SortFunc(ret, compareKey)
	return ret
}

func compareKey(a, b domain.DataKey) int {
	return cmp.Or(
		strings.Compare(a.Family.LockKey(), b.Family.LockKey()),
		cmp.Compare(a.Version, b.Version),
	)
}

// snapshot copies Data with its lineage. It should be called with mu locked.
func (dm *dataMem) snapshot(d *domain.Data) domain.Data {
	ret := *d
	ret.History = append([]domain.StatusHistory{}, d.History...)
	ret.Attributes = append([]domain.Attribute{}, d.Attributes...)
	ret.StorageUnits = append([]domain.StorageUnit{}, d.StorageUnits...)
	ret.Parents = keys(dm.parents[d.DataKey])
	ret.Children = keys(dm.children[d.DataKey])
	return ret
}

func (dm *dataMem) addEdge(child, parent domain.DataKey) {
	if _, ok := dm.parents[child]; !ok {
		dm.parents[child] = map[domain.DataKey]struct{}{}
	}
	dm.parents[child][parent] = struct{}{}
	if _, ok := dm.children[parent]; !ok {
		dm.children[parent] = map[domain.DataKey]struct{}{}
	}
	dm.children[parent][child] = struct{}{}
}

func (dm *dataMem) removeNode(key domain.DataKey) {
	for p := range dm.parents[key] {
		delete(dm.children[p], key)
		if len(dm.children[p]) == 0 {
			delete(dm.children, p)
		}
	}
	for c := range dm.children[key] {
		delete(dm.parents[c], key)
		if len(dm.parents[c]) == 0 {
			delete(dm.parents, c)
		}
	}
	delete(dm.parents, key)
	delete(dm.children, key)
}

// elect sets the latest flag in the family. It should be called with mu locked.
func (dm *dataMem) elect(family domain.Family) {
	latest, ok := domain.ElectLatest(dm.members(family))
	for _, d := range dm.data[family] {
		d.Latest = ok && d.Version == latest
	}
}

func (dm *dataMem) Register(ctx context.Context, reg domain.DataRegistration) (domain.Data, error) {
	if _, err := dm.formats.Get(ctx, reg.Family.Format); err != nil {
		return domain.Data{}, err
	}

	unlock := dm.families.Lock(reg.Family)
	defer unlock()

	if len(reg.Parents) != 0 {
		dm.lineage.Lock()
		defer dm.lineage.Unlock()
	}

	if err := ctx.Err(); err != nil {
		return domain.Data{}, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	for _, p := range reg.Parents {
		if _, ok := dm.get(p); !ok {
			return domain.Data{}, missing(p)
		}
	}

	res := domain.ResolveVersion(dm.members(reg.Family))
	key := domain.DataKey{Family: reg.Family, Version: res.Version}
	if _, ok := dm.get(key); ok {
		return domain.Data{}, domerr.DuplicateVersion{Family: reg.Family.String(), Version: res.Version}
	}

	now := dm.clock()
	status := reg.InitialStatus()
	d := &domain.Data{
		Id:           uuid.NewString(),
		DataKey:      key,
		Latest:       true,
		Status:       status,
		History:      []domain.StatusHistory{{Status: status, CreatedAt: now}},
		Attributes:   append([]domain.Attribute{}, reg.Attributes...),
		StorageUnits: append([]domain.StorageUnit{}, reg.StorageUnits...),
		CreatedAt:    now,
	}

	fam, ok := dm.data[reg.Family]
	if !ok {
		fam = map[int]*domain.Data{}
		dm.data[reg.Family] = fam
		pk := partitionKey{format: reg.Family.Format, partitionValue: reg.Family.PartitionValue}
		if _, ok := dm.partition[pk]; !ok {
			dm.partition[pk] = map[domain.Family]struct{}{}
		}
		dm.partition[pk][reg.Family] = struct{}{}
	}
	if res.Demote != nil {
		if prev, ok := fam[*res.Demote]; ok {
			prev.Latest = false
		}
	}
	fam[key.Version] = d

	for _, p := range reg.Parents {
		dm.addEdge(key, p)
	}

	return dm.snapshot(d), nil
}

func (dm *dataMem) Get(_ context.Context, q domain.DataQuery) (domain.Data, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	if q.Version != nil {
		d, ok := dm.get(domain.DataKey{Family: q.Family, Version: *q.Version})
		if !ok {
			return domain.Data{}, domerr.Missing{Table: "data", Identity: q.String()}
		}
		return dm.snapshot(d), nil
	}

	for _, d := range dm.data[q.Family] {
		if d.Latest {
			return dm.snapshot(d), nil
		}
	}
	return domain.Data{}, domerr.Missing{Table: "data", Identity: q.String()}
}

// familiesOf returns families matching the query. It should be called with mu locked.
func (dm *dataMem) familiesOf(format domain.FormatKey, pv string, prefix domain.SubPartitionValues) []domain.Family {
	ret := []domain.Family{}
	for f := range dm.partition[partitionKey{format: format, partitionValue: pv}] {
		if f.SubPartitionValues.HasPrefix(prefix) {
			ret = append(ret, f)
		}
	}
	return ret
}

func compareData(a, b domain.Data) int {
	for i := range domain.MaxSubPartitions {
		if c := strings.Compare(a.SubPartitionValues[i], b.SubPartitionValues[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Version, b.Version)
}

func (dm *dataMem) Versions(_ context.Context, q kdata.VersionsQuery) ([]domain.Data, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	ret := []domain.Data{}
	for _, f := range dm.familiesOf(q.Format, q.PartitionValue, q.SubPartitionValues) {
		for _, d := range dm.data[f] {
			if q.Version != nil && *q.Version != d.Version {
				continue
			}
			ret = append(ret, dm.snapshot(d))
		}
	}
	slices.SortFunc(ret, compareData)
	return ret, nil
}

func (dm *dataMem) NextVersion(_ context.Context, family domain.Family) (int, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	versions := []int{}
	for v := range dm.data[family] {
		versions = append(versions, v)
	}
	return domain.NextVersion(versions), nil
}

func (dm *dataMem) SetStatus(ctx context.Context, key domain.DataKey, to domain.Status) (domain.Data, error) {
	unlock := dm.families.Lock(key.Family)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return domain.Data{}, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	d, ok := dm.get(key)
	if !ok {
		return domain.Data{}, missing(key)
	}
	status, err := domain.Transit(key.String(), d.Status, to)
	if err != nil {
		return domain.Data{}, err
	}

	d.Status = status
	d.History = append(d.History, domain.StatusHistory{Status: status, CreatedAt: dm.clock()})
	if status == domain.Deleted && d.Latest {
		dm.elect(key.Family)
	}
	return dm.snapshot(d), nil
}

func (dm *dataMem) AddParents(ctx context.Context, child domain.DataKey, parents []domain.DataKey) (domain.Data, error) {
	dm.lineage.Lock()
	defer dm.lineage.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Data{}, err
	}

	dm.mu.RLock()
	d, ok := dm.get(child)
	if !ok {
		dm.mu.RUnlock()
		return domain.Data{}, missing(child)
	}
	for _, p := range parents {
		if _, ok := dm.get(p); !ok {
			dm.mu.RUnlock()
			return domain.Data{}, missing(p)
		}
	}
	err := domain.CheckLineage(child, parents, func(k domain.DataKey) ([]domain.DataKey, error) {
		return keys(dm.parents[k]), nil
	})
	dm.mu.RUnlock()
	if err != nil {
		return domain.Data{}, err
	}

	// edges are not changed by others while the lineage lock is held.
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, p := range parents {
		dm.addEdge(child, p)
	}
	return dm.snapshot(d), nil
}

func (dm *dataMem) PutAttributes(ctx context.Context, key domain.DataKey, attrs []domain.Attribute) (domain.Data, error) {
	unlock := dm.families.Lock(key.Family)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return domain.Data{}, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	d, ok := dm.get(key)
	if !ok {
		return domain.Data{}, missing(key)
	}

	for _, a := range attrs {
		idx := slices.IndexFunc(d.Attributes, func(b domain.Attribute) bool {
			return strings.EqualFold(a.Name, b.Name)
		})
		if idx < 0 {
			d.Attributes = append(d.Attributes, a)
		} else {
			d.Attributes[idx] = a
		}
	}
	return dm.snapshot(d), nil
}

func (dm *dataMem) RemoveAttributes(ctx context.Context, key domain.DataKey, names []string) (domain.Data, error) {
	unlock := dm.families.Lock(key.Family)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return domain.Data{}, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	d, ok := dm.get(key)
	if !ok {
		return domain.Data{}, missing(key)
	}

	d.Attributes = slices.DeleteFunc(d.Attributes, func(a domain.Attribute) bool {
		return slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(a.Name, n) })
	})
	return dm.snapshot(d), nil
}

func (dm *dataMem) AddStorageUnit(ctx context.Context, key domain.DataKey, su domain.StorageUnit) (domain.Data, error) {
	unlock := dm.families.Lock(key.Family)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return domain.Data{}, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	d, ok := dm.get(key)
	if !ok {
		return domain.Data{}, missing(key)
	}
	if slices.ContainsFunc(d.StorageUnits, func(o domain.StorageUnit) bool {
		return strings.EqualFold(o.StorageName, su.StorageName)
	}) {
		return domain.Data{}, domerr.Conflict{
			Table: "storage_unit", Identity: key.String() + " in " + su.StorageName,
		}
	}
	d.StorageUnits = append(d.StorageUnits, su)
	return dm.snapshot(d), nil
}

func (dm *dataMem) Delete(ctx context.Context, key domain.DataKey) (domain.Data, error) {
	unlock := dm.families.Lock(key.Family)
	defer unlock()

	dm.lineage.Lock()
	defer dm.lineage.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Data{}, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	d, ok := dm.get(key)
	if !ok {
		return domain.Data{}, missing(key)
	}
	ret := dm.snapshot(d)

	dm.removeNode(key)
	fam := dm.data[key.Family]
	delete(fam, key.Version)
	if len(fam) == 0 {
		delete(dm.data, key.Family)
		pk := partitionKey{format: key.Format, partitionValue: key.PartitionValue}
		delete(dm.partition[pk], key.Family)
		if len(dm.partition[pk]) == 0 {
			delete(dm.partition, pk)
		}
	} else if d.Latest {
		dm.elect(key.Family)
	}
	return ret, nil
}

func (dm *dataMem) Lookup(ctx context.Context, q domain.LookupQuery) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dm.mu.RLock()
	defer dm.mu.RUnlock()

	ret := []domain.Candidate{}
	for _, pv := range q.PartitionValues {
		fams := dm.familiesOf(q.Format, pv, q.SubPartitionValues)
		slices.SortFunc(fams, func(a, b domain.Family) int { return strings.Compare(a.LockKey(), b.LockKey()) })
		for _, f := range fams {
			for _, d := range dm.data[f] {
				if q.Version == nil && !d.Latest {
					continue
				}
				if q.Version != nil && *q.Version != d.Version {
					continue
				}
				ret = append(ret, domain.Candidate{DataKey: d.DataKey, Latest: d.Latest, Status: d.Status})
			}
		}
	}
	return ret, nil
}
