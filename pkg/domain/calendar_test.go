package domain_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/opst/dmcatalog/pkg/cmp"
	"github.com/opst/dmcatalog/pkg/domain"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	"pgregory.net/rapid"
)

func TestNormalizeExpectedValues(t *testing.T) {
	t.Run("values are trimmed and sorted", func(t *testing.T) {
		got, err := domain.NormalizeExpectedValues([]string{"2014-04-03", " 2014-04-01", "2014-04-02 "})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"2014-04-01", "2014-04-02", "2014-04-03"}
		if !cmp.SliceEq(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	for name, input := range map[string][]string{
		"blank":      {"2014-04-01", " "},
		"duplicated": {"2014-04-01", "2014-04-01 "},
	} {
		t.Run("rejected: "+name, func(t *testing.T) {
			_, err := domain.NormalizeExpectedValues(input)
			if !errors.Is(err, domerr.ErrValidation) {
				t.Errorf("expected ErrValidation, but got %v", err)
			}
		})
	}
}

func TestExpectedValuesInRange(t *testing.T) {
	calendar := []string{"2014-04-01", "2014-04-02", "2014-04-03", "2014-04-05"}

	for name, testcase := range map[string]struct {
		r    domain.PartitionRange
		want []string
	}{
		"whole": {
			r:    domain.PartitionRange{Start: "2014-04-01", End: "2014-04-05"},
			want: calendar,
		},
		"bounds are inclusive": {
			r:    domain.PartitionRange{Start: "2014-04-02", End: "2014-04-03"},
			want: []string{"2014-04-02", "2014-04-03"},
		},
		"bounds not in calendar": {
			r:    domain.PartitionRange{Start: "2014-03-15", End: "2014-04-04"},
			want: []string{"2014-04-01", "2014-04-02", "2014-04-03"},
		},
		"single point": {
			r:    domain.PartitionRange{Start: "2014-04-05", End: "2014-04-05"},
			want: []string{"2014-04-05"},
		},
		"gap": {
			r:    domain.PartitionRange{Start: "2014-04-04", End: "2014-04-04"},
			want: []string{},
		},
		"inverted": {
			r:    domain.PartitionRange{Start: "2014-04-03", End: "2014-04-01"},
			want: []string{},
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := domain.ExpectedValuesInRange(calendar, testcase.r)
			if !cmp.SliceEq(got, testcase.want) {
				t.Errorf("got %v, want %v", got, testcase.want)
			}
		})
	}
}

func TestExpectedValuesInRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOfDistinct(
			rapid.StringMatching(`[0-9a-z]{1,4}`), func(s string) string { return s },
		).Draw(rt, "values")
		sort.Strings(values)
		start := rapid.StringMatching(`[0-9a-z]{1,4}`).Draw(rt, "start")
		end := rapid.StringMatching(`[0-9a-z]{1,4}`).Draw(rt, "end")
		r := domain.PartitionRange{Start: start, End: end}

		got := domain.ExpectedValuesInRange(values, r)

		want := []string{}
		for _, v := range values {
			if r.Contains(v) {
				want = append(want, v)
			}
		}
		if !cmp.SliceEq(got, want) {
			rt.Fatalf("got %v, want %v", got, want)
		}

		// restartable: same query yields the same answer.
		if again := domain.ExpectedValuesInRange(values, r); !cmp.SliceEq(got, again) {
			rt.Fatalf("not restartable: %v, then %v", got, again)
		}
	})
}
