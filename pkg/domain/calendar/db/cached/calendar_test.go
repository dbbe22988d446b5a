package cached_test

import (
	"context"
	"testing"
	"time"

	"github.com/opst/dmcatalog/pkg/cmp"
	"github.com/opst/dmcatalog/pkg/domain"
	"github.com/opst/dmcatalog/pkg/domain/calendar/db/cached"
	"github.com/opst/dmcatalog/pkg/domain/calendar/db/inmemory"
	"github.com/opst/dmcatalog/pkg/utils/try"
)

func TestCalendarCache(t *testing.T) {
	ctx := context.Background()
	base := inmemory.New()
	calendar := cached.New(base, time.Hour)

	try.To(calendar.CreateGroup(ctx, "g", []string{"a", "b"})).OrFatal(t)

	t.Run("writes through the cache are visible", func(t *testing.T) {
		try.To(calendar.AddExpectedValues(ctx, "g", []string{"c"})).OrFatal(t)
		got := try.To(calendar.ExpectedValuesInRange(ctx, "g", domain.PartitionRange{Start: "a", End: "z"})).OrFatal(t)
		if !cmp.SliceEq(got, []string{"a", "b", "c"}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("writes bypassing the cache are hidden until expiration", func(t *testing.T) {
		try.To(base.AddExpectedValues(ctx, "g", []string{"d"})).OrFatal(t)
		got := try.To(calendar.GetGroup(ctx, "g")).OrFatal(t)
		if !cmp.SliceEq(got.ExpectedValues, []string{"a", "b", "c"}) {
			t.Errorf("got %v", got.ExpectedValues)
		}
	})

	t.Run("cached values are not shared with callers", func(t *testing.T) {
		got := try.To(calendar.GetGroup(ctx, "g")).OrFatal(t)
		got.ExpectedValues[0] = "broken"

		again := try.To(calendar.GetGroup(ctx, "g")).OrFatal(t)
		if again.ExpectedValues[0] != "a" {
			t.Errorf("cache is modified: %v", again.ExpectedValues)
		}
	})

	t.Run("deleted group is evicted", func(t *testing.T) {
		if err := calendar.DeleteGroup(ctx, "g"); err != nil {
			t.Fatal(err)
		}
		if _, err := calendar.GetGroup(ctx, "g"); err == nil {
			t.Errorf("deleted group is returned")
		}
	})
}
