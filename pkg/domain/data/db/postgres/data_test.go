package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opst/dmcatalog/pkg/cmp"
	"github.com/opst/dmcatalog/pkg/conn/db/postgres/pool/testenv"
	"github.com/opst/dmcatalog/pkg/domain"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	kpgdata "github.com/opst/dmcatalog/pkg/domain/data/db/postgres"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	kpgformat "github.com/opst/dmcatalog/pkg/domain/format/db/postgres"
	"github.com/opst/dmcatalog/pkg/utils/try"
)

var formatKey = domain.FormatKey{
	Namespace: "ns", Definition: "def", Usage: "PRC", FileType: "TXT", Version: 0,
}

func setup(ctx context.Context, t *testing.T) kdata.DataInterface {
	t.Helper()
	pool := testenv.NewPoolBroaker(ctx, t).GetPool(ctx, t)

	try.To(kpgformat.New(pool).Register(ctx, domain.Format{
		FormatKey:        formatKey,
		PartitionKey:     "date",
		SubPartitionKeys: []string{"region"},
	})).OrFatal(t)

	return kpgdata.New(pool)
}

func family(t *testing.T, pv string, subs ...string) domain.Family {
	t.Helper()
	return try.To(domain.NewFamily(formatKey, pv, subs...)).OrFatal(t)
}

func ptr[T any](v T) *T {
	return &v
}

func TestData(t *testing.T) {
	ctx := context.Background()
	store := setup(ctx, t)
	fam := family(t, "2014-04-02", "east")

	v0 := try.To(store.Register(ctx, domain.DataRegistration{
		Family:       fam,
		Status:       domain.Uploading,
		Attributes:   []domain.Attribute{{Name: "owner", Value: "alice"}},
		StorageUnits: []domain.StorageUnit{{StorageName: "S3_MANAGED", DirectoryPath: "a/b"}},
	})).OrFatal(t)
	if v0.Version != 0 || !v0.Latest || v0.Status != domain.Uploading {
		t.Fatalf("v0: %+v", v0)
	}

	v1 := try.To(store.Register(ctx, domain.DataRegistration{
		Family: fam, Parents: []domain.DataKey{v0.DataKey},
	})).OrFatal(t)
	if v1.Version != 1 || !v1.Latest {
		t.Fatalf("v1: %+v", v1)
	}
	if !cmp.SliceEq(v1.Parents, []domain.DataKey{v0.DataKey}) {
		t.Errorf("parents: %+v", v1.Parents)
	}

	t.Run("previous latest is demoted and knows its child", func(t *testing.T) {
		got := try.To(store.Get(ctx, domain.DataQuery{Family: fam, Version: ptr(0)})).OrFatal(t)
		if got.Latest {
			t.Errorf("v0 is still the latest")
		}
		if !cmp.SliceEq(got.Children, []domain.DataKey{v1.DataKey}) {
			t.Errorf("children: %+v", got.Children)
		}
		if v, ok := got.Attribute("OWNER"); !ok || v != "alice" {
			t.Errorf("attribute: %q", v)
		}
		if !cmp.SliceEq(got.StorageUnits, []domain.StorageUnit{{StorageName: "S3_MANAGED", DirectoryPath: "a/b"}}) {
			t.Errorf("storage units: %+v", got.StorageUnits)
		}
	})

	t.Run("next version", func(t *testing.T) {
		if next := try.To(store.NextVersion(ctx, fam)).OrFatal(t); next != 2 {
			t.Errorf("next version: %d", next)
		}
		if next := try.To(store.NextVersion(ctx, family(t, "2014-04-03"))).OrFatal(t); next != 0 {
			t.Errorf("next version of an empty family: %d", next)
		}
	})

	t.Run("lineage cycle is rejected", func(t *testing.T) {
		_, err := store.AddParents(ctx, v0.DataKey, []domain.DataKey{v1.DataKey})
		if !errors.Is(err, domerr.ErrCyclicLineage) {
			t.Errorf("expected ErrCyclicLineage, but got %v", err)
		}
	})

	t.Run("status transition", func(t *testing.T) {
		got := try.To(store.SetStatus(ctx, v0.DataKey, domain.Valid)).OrFatal(t)
		if len(got.History) != 2 || got.History[1].Status != domain.Valid {
			t.Errorf("history: %+v", got.History)
		}
		if _, err := store.SetStatus(ctx, v0.DataKey, domain.Uploading); !errors.Is(err, domerr.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, but got %v", err)
		}
	})

	t.Run("attributes and storage units", func(t *testing.T) {
		got := try.To(store.PutAttributes(ctx, v1.DataKey, []domain.Attribute{{Name: "rows", Value: "10"}})).OrFatal(t)
		got = try.To(store.RemoveAttributes(ctx, got.DataKey, []string{"ROWS"})).OrFatal(t)
		if len(got.Attributes) != 0 {
			t.Errorf("attributes: %+v", got.Attributes)
		}

		try.To(store.AddStorageUnit(ctx, v1.DataKey, domain.StorageUnit{StorageName: "ARCHIVE"})).OrFatal(t)
		_, err := store.AddStorageUnit(ctx, v1.DataKey, domain.StorageUnit{StorageName: "archive"})
		if !errors.Is(err, domerr.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, but got %v", err)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		got := try.To(store.Lookup(ctx, domain.LookupQuery{
			Format: formatKey, PartitionValues: []string{"2014-04-02", "2014-04-03"},
		})).OrFatal(t)
		if len(got) != 1 || got[0].DataKey != v1.DataKey || got[0].Status != domain.Valid {
			t.Errorf("candidates: %+v", got)
		}
	})

	t.Run("deleting the latest elects the previous", func(t *testing.T) {
		deleted := try.To(store.SetStatus(ctx, v1.DataKey, domain.Deleted)).OrFatal(t)
		if deleted.Latest {
			t.Errorf("deleted data is the latest")
		}
		latest := try.To(store.Get(ctx, domain.DataQuery{Family: fam})).OrFatal(t)
		if latest.DataKey != v0.DataKey {
			t.Errorf("latest: %s", latest.DataKey)
		}

		v2 := try.To(store.Register(ctx, domain.DataRegistration{Family: fam})).OrFatal(t)
		if v2.Version != 2 {
			t.Errorf("version: %d", v2.Version)
		}

		try.To(store.Delete(ctx, v2.DataKey)).OrFatal(t)
		latest = try.To(store.Get(ctx, domain.DataQuery{Family: fam})).OrFatal(t)
		if latest.DataKey != v0.DataKey {
			t.Errorf("latest after physical deletion: %s", latest.DataKey)
		}
	})

	t.Run("versions", func(t *testing.T) {
		got := try.To(store.Versions(ctx, kdata.VersionsQuery{
			Format: formatKey, PartitionValue: "2014-04-02",
			SubPartitionValues: domain.SubPartitionValues{"east"},
		})).OrFatal(t)
		versions := []int{}
		for _, d := range got {
			versions = append(versions, d.Version)
		}
		if !cmp.SliceEq(versions, []int{0, 1}) {
			t.Errorf("versions: %v", versions)
		}
	})
}

func TestRegister_Concurrently(t *testing.T) {
	ctx := context.Background()
	store := setup(ctx, t)
	fam := family(t, "2014-04-02")

	const n = 8
	wg := sync.WaitGroup{}
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Register(ctx, domain.DataRegistration{Family: fam})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	got := try.To(store.Versions(ctx, kdata.VersionsQuery{Format: formatKey, PartitionValue: "2014-04-02"})).OrFatal(t)
	latest := 0
	for i, d := range got {
		if d.Version != i {
			t.Errorf("version %d at %d", d.Version, i)
		}
		if d.Latest {
			latest += 1
		}
	}
	if len(got) != n || latest != 1 {
		t.Errorf("got %d versions and %d latest", len(got), latest)
	}
}

func TestRegister_UnknownFormat(t *testing.T) {
	ctx := context.Background()
	store := setup(ctx, t)

	other := formatKey
	other.Usage = "OTHER"
	_, err := store.Register(ctx, domain.DataRegistration{
		Family: try.To(domain.NewFamily(other, "2014-04-02")).OrFatal(t),
	})
	if !errors.Is(err, domerr.ErrMissing) {
		t.Errorf("expected ErrMissing, but got %v", err)
	}
}

func TestDelete_NonLatest(t *testing.T) {
	ctx := context.Background()
	store := setup(ctx, t)
	fam := family(t, "2014-04-05", "west")

	v0 := try.To(store.Register(ctx, domain.DataRegistration{Family: fam})).OrFatal(t)
	v1 := try.To(store.Register(ctx, domain.DataRegistration{Family: fam})).OrFatal(t)

	deleted := try.To(store.Delete(ctx, v0.DataKey)).OrFatal(t)
	if deleted.Latest {
		t.Errorf("deleted data was the latest: %+v", deleted)
	}

	got := try.To(store.Versions(ctx, kdata.VersionsQuery{
		Format: formatKey, PartitionValue: fam.PartitionValue,
		SubPartitionValues: fam.SubPartitionValues,
	})).OrFatal(t)
	if len(got) != 1 || got[0].DataKey != v1.DataKey || !got[0].Latest {
		t.Errorf("versions after deleting v0: %+v", got)
	}
}

func TestStatus_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := setup(ctx, t)
	fam := family(t, "2014-04-06")

	d := try.To(store.Register(ctx, domain.DataRegistration{Family: fam, Status: "uploading"})).OrFatal(t)
	if d.Status != domain.Uploading || d.History[0].Status != domain.Uploading {
		t.Fatalf("status: %q, history: %+v", d.Status, d.History)
	}

	got := try.To(store.SetStatus(ctx, d.DataKey, "valid")).OrFatal(t)
	if got.Status != domain.Valid || got.History[len(got.History)-1].Status != domain.Valid {
		t.Errorf("status: %q, history: %+v", got.Status, got.History)
	}
}
