package domain

import (
	"context"
	"fmt"
	"strings"

	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// EmptyRangePolicy decides how a range check without expected values is answered.
type EmptyRangePolicy string

const (
	// empty or inverted ranges are rejected as ValidationError.
	RejectEmptyRange EmptyRangePolicy = "reject"

	// empty or inverted ranges are answered with empty results (vacuously complete).
	AllowEmptyRange EmptyRangePolicy = "allow"
)

func AsEmptyRangePolicy(s string) (EmptyRangePolicy, error) {
	switch EmptyRangePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case RejectEmptyRange, "":
		return RejectEmptyRange, nil
	case AllowEmptyRange:
		return AllowEmptyRange, nil
	default:
		return EmptyRangePolicy(s), fmt.Errorf("unknown empty range policy: %s", s)
	}
}

// DefaultLookupChunkSize is the number of partition values looked up at once.
const DefaultLookupChunkSize = 100

// AvailabilityPolicy is a set of rules to decide availability.
type AvailabilityPolicy struct {
	// statuses which are considered as available. Empty means only Valid.
	AvailableStatuses []Status

	EmptyRange EmptyRangePolicy

	// Zero or negative means DefaultLookupChunkSize.
	ChunkSize int
}

func (p AvailabilityPolicy) isAvailable(s Status) bool {
	if len(p.AvailableStatuses) == 0 {
		return s == Valid
	}
	for _, a := range p.AvailableStatuses {
		if a == s {
			return true
		}
	}
	return false
}

func (p AvailabilityPolicy) chunkSize() int {
	if p.ChunkSize <= 0 {
		return DefaultLookupChunkSize
	}
	return p.ChunkSize
}

// AvailabilityRequest asks which partitions of a format are available.
//
// Either of Values or Range should be given.
type AvailabilityRequest struct {
	Format FormatKey

	// Empty means the format's one.
	PartitionKey string

	// explicit partition values.
	Values []string

	// range of partition values. Expected values in the range are checked.
	Range *PartitionRange

	// partition key group to resolve the range. Empty means the format's one.
	Group string

	// Sub-partition values to be matched.
	// Omitted sub-partition values match any.
	SubPartitionValues SubPartitionValues

	// Version to be checked. nil means the latest.
	Version *int
}

// Normalize returns a copy of r with partition values and range bounds trimmed.
func (r AvailabilityRequest) Normalize() AvailabilityRequest {
	if r.Values != nil {
		values := make([]string, len(r.Values))
		for i, v := range r.Values {
			values[i] = strings.TrimSpace(v)
		}
		r.Values = values
	}
	if r.Range != nil {
		r.Range = &PartitionRange{
			Start: strings.TrimSpace(r.Range.Start),
			End:   strings.TrimSpace(r.Range.End),
		}
	}
	return r
}

// Validate checks r in its normalized form.
func (r AvailabilityRequest) Validate() error {
	r = r.Normalize()
	if err := r.Format.Validate(); err != nil {
		return err
	}
	if err := r.SubPartitionValues.validate(); err != nil {
		return err
	}
	if r.Version != nil && *r.Version < InitialVersion {
		return domerr.NewValidation("businessObjectDataVersion", "must not be negative: %d", *r.Version)
	}

	switch {
	case r.Values != nil && r.Range != nil:
		return domerr.NewValidation("partitionValueFilter", "only one of partition values or a range can be specified")
	case r.Values == nil && r.Range == nil:
		return domerr.NewValidation("partitionValueFilter", "partition values or a range should be specified")
	case r.Range != nil:
		if r.Range.Start == "" || r.Range.End == "" {
			return domerr.NewValidation("partitionValueRange", "start and end should be specified")
		}
	}

	seen := map[string]struct{}{}
	for _, v := range r.Values {
		if v == "" {
			return domerr.NewValidation("partitionValues", "blank value is not allowed")
		}
		if _, ok := seen[v]; ok {
			return domerr.NewValidation("partitionValues", "value %q is duplicated", v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// Candidate is a registered Data which may be counted for availability.
type Candidate struct {
	DataKey
	Latest bool
	Status Status
}

// LookupQuery selects candidates of availability.
type LookupQuery struct {
	Format             FormatKey
	PartitionValues    []string
	SubPartitionValues SubPartitionValues

	// nil means only the latest are needed.
	Version *int
}

// AvailabilitySource is the storage side of availability checks.
type AvailabilitySource interface {
	// ExpectedValuesInRange returns expected values of the group in the range, in ascending order.
	//
	// It returns UnknownGroup error when the group is not registered.
	ExpectedValuesInRange(ctx context.Context, group string, r PartitionRange) ([]string, error)

	// Lookup returns candidates matching the query.
	//
	// Implementations may return candidates which are not selected by the version policy,
	// they are ignored.
	Lookup(ctx context.Context, q LookupQuery) ([]Candidate, error)
}

// UnavailableReason tells why a partition value is not available.
type UnavailableReason string

const (
	// no Data is found for the partition value.
	NotRegistered UnavailableReason = "NOT_REGISTERED"
)

// AvailabilityEntry is a verdict for a partition value.
type AvailabilityEntry struct {
	PartitionValue string

	// Data counted for the verdict.
	Data []DataKey

	// empty when available.
	//
	// If Data are found but some of them are not in available status,
	// this is the status of the first such Data.
	Reason UnavailableReason
}

func (e AvailabilityEntry) Available() bool {
	return e.Reason == ""
}

// Availability is the result of an availability check.
type Availability struct {
	Format       FormatKey
	PartitionKey string

	Available    []AvailabilityEntry
	NotAvailable []AvailabilityEntry
}

// Complete reports whether all requested partitions are available.
func (a Availability) Complete() bool {
	return len(a.NotAvailable) == 0
}

// Classify decides availability of a partition value from candidates of it.
//
// Candidates are selected by version: the pinned one if version is given, or the latest.
// The value is available when at least one candidate is selected
// and all selected candidates are in available statuses.
func (p AvailabilityPolicy) Classify(value string, candidates []Candidate, version *int) AvailabilityEntry {
	entry := AvailabilityEntry{PartitionValue: value, Data: []DataKey{}}
	for _, c := range candidates {
		if c.PartitionValue != value {
			continue
		}
		if version == nil {
			if !c.Latest {
				continue
			}
		} else if c.Version != *version {
			continue
		}
		entry.Data = append(entry.Data, c.DataKey)
		if entry.Reason == "" && !p.isAvailable(c.Status) {
			entry.Reason = UnavailableReason(c.Status)
		}
	}
	if len(entry.Data) == 0 {
		entry.Reason = NotRegistered
	}
	return entry
}

// CheckAvailability resolves partition values to be checked and classifies them.
//
// Explicit values are answered in the given order, and ranges are answered in calendar order.
// The context is checked between lookups.
func (p AvailabilityPolicy) CheckAvailability(
	ctx context.Context, format *Format, req AvailabilityRequest, src AvailabilitySource,
) (Availability, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return Availability{}, err
	}
	pkey, err := format.ResolvePartitionKey(req.PartitionKey)
	if err != nil {
		return Availability{}, err
	}
	if err := format.CheckSubPartitions(req.SubPartitionValues); err != nil {
		return Availability{}, err
	}

	result := Availability{
		Format:       format.FormatKey,
		PartitionKey: pkey,
		Available:    []AvailabilityEntry{},
		NotAvailable: []AvailabilityEntry{},
	}

	var targets []string
	if req.Range == nil {
		targets = req.Values
	} else {
		group := req.Group
		if group == "" {
			group = format.PartitionKeyGroup
		}
		if group == "" {
			return Availability{}, domerr.NewValidation(
				"partitionKeyGroupName",
				"range check needs a partition key group, but format %s declares none", format.FormatKey,
			)
		}
		if req.Range.Empty() {
			if p.EmptyRange == AllowEmptyRange {
				return result, nil
			}
			return Availability{}, domerr.NewValidation(
				"partitionValueRange", "start %q is after end %q", req.Range.Start, req.Range.End,
			)
		}
		expected, err := src.ExpectedValuesInRange(ctx, group, *req.Range)
		if err != nil {
			return Availability{}, err
		}
		if len(expected) == 0 && p.EmptyRange != AllowEmptyRange {
			return Availability{}, domerr.NewValidation(
				"partitionValueRange", "no expected partition values of group %q in [%s, %s]",
				group, req.Range.Start, req.Range.End,
			)
		}
		targets = expected
	}

	size := p.chunkSize()
	for head := 0; head < len(targets); head += size {
		if err := ctx.Err(); err != nil {
			return Availability{}, err
		}
		tail := min(head+size, len(targets))
		chunk := targets[head:tail]

		candidates, err := src.Lookup(ctx, LookupQuery{
			Format:             format.FormatKey,
			PartitionValues:    chunk,
			SubPartitionValues: req.SubPartitionValues,
			Version:            req.Version,
		})
		if err != nil {
			return Availability{}, err
		}
		for _, v := range chunk {
			e := p.Classify(v, candidates, req.Version)
			if e.Available() {
				result.Available = append(result.Available, e)
			} else {
				result.NotAvailable = append(result.NotAvailable, e)
			}
		}
	}
	return result, nil
}
