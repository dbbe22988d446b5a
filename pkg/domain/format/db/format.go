package db

import (
	"context"

	"github.com/opst/dmcatalog/pkg/domain"
)

// FindQuery selects formats. Empty fields match any.
type FindQuery struct {
	Namespace  string
	Definition string
	Usage      string
	FileType   string
}

type FormatInterface interface {
	// Register a new format.
	//
	// Returns
	//
	// - domain.Format: registered format
	//
	// - error: errors.Conflict when the format exists already,
	// or errors.UnknownGroup when the partition key group is not registered.
	Register(context.Context, domain.Format) (domain.Format, error)

	// Get a format.
	//
	// Returns
	//
	// - error: errors.Missing when the format is not registered.
	Get(context.Context, domain.FormatKey) (domain.Format, error)

	// Find formats matching the query, ordered by their keys.
	Find(context.Context, FindQuery) ([]domain.Format, error)
}
