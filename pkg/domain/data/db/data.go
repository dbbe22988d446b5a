package db

import (
	"context"

	"github.com/opst/dmcatalog/pkg/domain"
)

// VersionsQuery selects versions of Data of a format and a partition value.
type VersionsQuery struct {
	Format         domain.FormatKey
	PartitionValue string

	// Only Data whose sub-partition values start with these are selected.
	SubPartitionValues domain.SubPartitionValues

	// nil means all versions.
	Version *int
}

type DataInterface interface {
	// Register a new version of Data in the family.
	//
	// The new Data gets the next version of the family, and becomes the latest.
	// The previous latest is demoted.
	//
	// Args
	//
	// - context.Context
	//
	// - domain.DataRegistration: request. It should be validated.
	//
	// Returns
	//
	// - domain.Data: registered Data
	//
	// - error: errors.Missing when the format or a parent is not found,
	// errors.DuplicateVersion when a concurrent registration has taken the version,
	// errors.CyclicLineage never occurs for a new Data.
	Register(context.Context, domain.DataRegistration) (domain.Data, error)

	// Get Data of the family.
	//
	// Returns
	//
	// - domain.Data
	//
	// - error: errors.Missing when no Data are matched.
	Get(context.Context, domain.DataQuery) (domain.Data, error)

	// Versions returns Data matching the query, ordered by sub-partition values and version.
	Versions(context.Context, VersionsQuery) ([]domain.Data, error)

	// NextVersion returns the version which a new Data of the family would get.
	//
	// This does not reserve the version.
	NextVersion(context.Context, domain.Family) (int, error)

	// SetStatus changes status of Data and appends the history.
	//
	// When the Data is the latest and becomes Deleted, the next-highest not-deleted version becomes the latest.
	//
	// Returns
	//
	// - domain.Data: updated Data
	//
	// - error: errors.Missing, or errors.InvalidTransition when the change is not allowed.
	SetStatus(context.Context, domain.DataKey, domain.Status) (domain.Data, error)

	// AddParents declares parents of the Data.
	//
	// Parents declared already are ignored.
	//
	// Returns
	//
	// - domain.Data: updated Data
	//
	// - error: errors.Missing when the child or a parent is not found,
	// or errors.CyclicLineage when an edge would make a cycle.
	AddParents(context.Context, domain.DataKey, []domain.DataKey) (domain.Data, error)

	// PutAttributes upserts attributes of Data. Names are case insensitive.
	PutAttributes(context.Context, domain.DataKey, []domain.Attribute) (domain.Data, error)

	// RemoveAttributes removes attributes of Data by names.
	//
	// Missing names are ignored.
	RemoveAttributes(context.Context, domain.DataKey, []string) (domain.Data, error)

	// AddStorageUnit attaches a storage unit to Data.
	//
	// Returns
	//
	// - error: errors.Conflict when the Data has a unit in the storage already.
	AddStorageUnit(context.Context, domain.DataKey, domain.StorageUnit) (domain.Data, error)

	// Delete Data physically, with its history, attributes, storage units and lineage edges.
	//
	// When the Data is the latest, the next-highest not-deleted version becomes the latest.
	//
	// Returns
	//
	// - domain.Data: deleted Data, as it was just before the deletion
	//
	// - error: errors.Missing
	Delete(context.Context, domain.DataKey) (domain.Data, error)

	// Lookup returns availability candidates.
	//
	// When q.Version is nil, only the latest are returned.
	// Otherwise, Data of the version are returned.
	Lookup(context.Context, domain.LookupQuery) ([]domain.Candidate, error)
}
