package inmemory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/opst/dmcatalog/pkg/domain"
	calendar "github.com/opst/dmcatalog/pkg/domain/calendar/db/inmemory"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
	"github.com/opst/dmcatalog/pkg/domain/format/db/inmemory"
	"github.com/opst/dmcatalog/pkg/utils/try"
)

func TestFormat(t *testing.T) {
	ctx := context.Background()
	groups := calendar.New()
	try.To(groups.CreateGroup(ctx, "2014-04", []string{"2014-04-01"})).OrFatal(t)
	formats := inmemory.New(groups)

	key := domain.FormatKey{Namespace: "ns", Definition: "def", Usage: "PRC", FileType: "TXT", Version: 1}
	f := domain.Format{
		FormatKey:         key,
		PartitionKey:      "date",
		SubPartitionKeys:  []string{"region"},
		PartitionKeyGroup: "2014-04",
	}
	try.To(formats.Register(ctx, f)).OrFatal(t)

	t.Run("get", func(t *testing.T) {
		got := try.To(formats.Get(ctx, key)).OrFatal(t)
		if !got.Equal(&f) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("duplicated", func(t *testing.T) {
		if _, err := formats.Register(ctx, f); !errors.Is(err, domerr.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, but got %v", err)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		other := f
		other.Version = 2
		other.PartitionKeyGroup = "unknown"
		if _, err := formats.Register(ctx, other); !errors.Is(err, domerr.ErrUnknownGroup) {
			t.Errorf("expected ErrUnknownGroup, but got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		other := key
		other.Version = 9
		if _, err := formats.Get(ctx, other); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("expected ErrMissing, but got %v", err)
		}
	})

	t.Run("find", func(t *testing.T) {
		v0 := f
		v0.Version = 0
		v0.PartitionKeyGroup = ""
		try.To(formats.Register(ctx, v0)).OrFatal(t)

		got := try.To(formats.Find(ctx, kformat.FindQuery{Namespace: "ns", Usage: "PRC"})).OrFatal(t)
		if len(got) != 2 || got[0].Version != 0 || got[1].Version != 1 {
			t.Errorf("got %+v", got)
		}
		if got := try.To(formats.Find(ctx, kformat.FindQuery{FileType: "CSV"})).OrFatal(t); len(got) != 0 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("group referred", func(t *testing.T) {
		if !try.To(formats.RefersGroup(ctx, "2014-04")).OrFatal(t) {
			t.Errorf("group is not referred")
		}
	})
}

func TestFormat_RegisterWhileGroupIsDeleted(t *testing.T) {
	ctx := context.Background()

	var formats interface {
		kformat.FormatInterface
		RefersGroup(ctx context.Context, group string) (bool, error)
	}
	groups := calendar.New(calendar.WithReferenceCheck(
		func(ctx context.Context, group string) (bool, error) {
			return formats.RefersGroup(ctx, group)
		},
	))
	formats = inmemory.New(groups)

	for i := 0; i < 200; i++ {
		name := fmt.Sprintf("group-%d", i)
		try.To(groups.CreateGroup(ctx, name, []string{"a"})).OrFatal(t)
		f := domain.Format{
			FormatKey: domain.FormatKey{
				Namespace: "ns", Definition: "def", Usage: "PRC", FileType: "TXT", Version: i,
			},
			PartitionKey:      "date",
			PartitionKeyGroup: name,
		}

		var registerErr, deleteErr error
		wg := sync.WaitGroup{}
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, registerErr = formats.Register(ctx, f)
		}()
		go func() {
			defer wg.Done()
			deleteErr = groups.DeleteGroup(ctx, name)
		}()
		wg.Wait()

		switch {
		case registerErr == nil:
			if !errors.Is(deleteErr, domerr.ErrAlreadyExists) {
				t.Fatalf("%s: format is registered, but deleting its group: %v", name, deleteErr)
			}
			if _, err := groups.GetGroup(ctx, name); err != nil {
				t.Fatalf("%s: group referred by a format is lost: %v", name, err)
			}
		case errors.Is(registerErr, domerr.ErrUnknownGroup):
			if deleteErr != nil {
				t.Fatalf("%s: unexpected error on deletion: %v", name, deleteErr)
			}
			if _, err := formats.Get(ctx, f.FormatKey); !errors.Is(err, domerr.ErrMissing) {
				t.Fatalf("%s: format of deleted group is stored: %v", name, err)
			}
		default:
			t.Fatalf("%s: unexpected error on registration: %v", name, registerErr)
		}
	}
}
