package db

import "context"

// SchemaInterface represents the schema of the catalog database.
type SchemaInterface interface {
	// Upgrade applies schema versions newer than the current one.
	Upgrade(ctx context.Context) error

	// Version returns the current version of the schema in database.
	//
	// 0 means no schema is applied yet.
	Version(ctx context.Context) (int, error)

	// Latest returns the newest version in the schema repository.
	Latest(ctx context.Context) (int, error)

	// Context returns a context which is cancelled when the schema in database is older than the repository.
	//
	// The cause of cancellation can be got with context.Cause.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}
