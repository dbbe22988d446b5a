package domain

import (
	"slices"
	"sort"
	"strings"

	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// PartitionKeyGroup is a named calendar of expected partition values.
type PartitionKeyGroup struct {
	Name string

	// expected partition values, in byte-wise ascending order, without duplication.
	ExpectedValues []string
}

func (g *PartitionKeyGroup) Equal(o *PartitionKeyGroup) bool {
	if g == nil || o == nil {
		return g == nil && o == nil
	}
	return g.Name == o.Name && slices.Equal(g.ExpectedValues, o.ExpectedValues)
}

// ValidateGroupName checks name of partition key group.
func ValidateGroupName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domerr.NewValidation("partitionKeyGroupName", "must be specified")
	}
	return nil
}

// NormalizeExpectedValues trims and sorts values.
//
// Blank values and duplicated values are rejected.
func NormalizeExpectedValues(values []string) ([]string, error) {
	norm := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, domerr.NewValidation("expectedPartitionValues", "blank value is not allowed")
		}
		if _, ok := seen[v]; ok {
			return nil, domerr.NewValidation("expectedPartitionValues", "value %q is duplicated", v)
		}
		seen[v] = struct{}{}
		norm = append(norm, v)
	}
	sort.Strings(norm)
	return norm, nil
}

// PartitionRange is a closed range of partition values [Start, End].
type PartitionRange struct {
	Start string
	End   string
}

// Empty reports whether no value can be in the range.
func (r PartitionRange) Empty() bool {
	return r.End < r.Start
}

func (r PartitionRange) Contains(v string) bool {
	return r.Start <= v && v <= r.End
}

// ExpectedValuesInRange picks values in the range from sorted expected values.
//
// The result is in ascending order. sorted should be sorted in byte-wise order.
func ExpectedValuesInRange(sorted []string, r PartitionRange) []string {
	if r.Empty() {
		return []string{}
	}
	lo := sort.SearchStrings(sorted, r.Start)
	hi := sort.Search(len(sorted), func(i int) bool { return r.End < sorted[i] })
	if hi <= lo {
		return []string{}
	}
	return append([]string{}, sorted[lo:hi]...)
}
