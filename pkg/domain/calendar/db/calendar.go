package db

import (
	"context"

	"github.com/opst/dmcatalog/pkg/domain"
)

// CalendarInterface keeps partition key groups and their expected partition values.
//
// Values passed to methods should be normalized by domain.NormalizeExpectedValues.
type CalendarInterface interface {
	// CreateGroup registers a new group with expected values.
	//
	// Returns
	//
	// - error: errors.Conflict when the group exists already.
	CreateGroup(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error)

	// GetGroup returns the group with all of its expected values.
	//
	// Returns
	//
	// - error: errors.UnknownGroup
	GetGroup(ctx context.Context, name string) (domain.PartitionKeyGroup, error)

	// DeleteGroup removes the group and its expected values.
	//
	// Returns
	//
	// - error: errors.UnknownGroup, or errors.Conflict when a format refers the group.
	DeleteGroup(ctx context.Context, name string) error

	// AddExpectedValues adds values to the group.
	//
	// Returns
	//
	// - error: errors.UnknownGroup, or errors.Conflict when some of values are expected already.
	AddExpectedValues(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error)

	// RemoveExpectedValues removes values from the group.
	//
	// Returns
	//
	// - error: errors.UnknownGroup, or errors.Missing when some of values are not expected.
	RemoveExpectedValues(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error)

	// ExpectedValuesInRange returns expected values of the group in the range, in ascending order.
	//
	// Returns
	//
	// - error: errors.UnknownGroup
	ExpectedValuesInRange(ctx context.Context, name string, r domain.PartitionRange) ([]string, error)
}
