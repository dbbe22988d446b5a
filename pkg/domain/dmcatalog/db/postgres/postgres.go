package postgres

import (
	"context"

	kpool "github.com/opst/dmcatalog/pkg/conn/db/postgres/pool"
	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
	kpgcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db/postgres"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	kpgdata "github.com/opst/dmcatalog/pkg/domain/data/db/postgres"
	dbInterface "github.com/opst/dmcatalog/pkg/domain/dmcatalog/db"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
	kpgformat "github.com/opst/dmcatalog/pkg/domain/format/db/postgres"
	kschema "github.com/opst/dmcatalog/pkg/domain/schema/db"
	kpgschema "github.com/opst/dmcatalog/pkg/domain/schema/db/postgres"
	repository "github.com/opst/dmcatalog/schema/postgres"
)

type catalogDBPostgres struct {
	pool     kpool.Pool
	data     kdata.DataInterface
	formats  kformat.FormatInterface
	calendar kcalendar.CalendarInterface
	schema   kschema.SchemaInterface
}

type Config struct {
	// directory of schema repository. Empty means the embedded one.
	SchemaRepository string

	// max connections of the pool. 0 means the default.
	MaxConns int32
}

type Option func(*Config) *Config

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

func WithMaxConns(n int32) Option {
	return func(c *Config) *Config {
		c.MaxConns = n
		return c
	}
}

func New(
	ctx context.Context,
	url string,
	options ...Option,
) (dbInterface.CatalogDatabase, error) {
	c := Config{}
	for _, option := range options {
		c = *option(&c)
	}

	p, err := kpool.Connect(ctx, url, c.MaxConns)
	if err != nil {
		return nil, err
	}

	return Wrap(p, c.SchemaRepository), nil
}

// Wrap builds a CatalogDatabase on an opened pool.
//
// When schemaRepository is empty, the embedded repository is used.
func Wrap(p kpool.Pool, schemaRepository string) dbInterface.CatalogDatabase {
	var schema kschema.SchemaInterface
	if schemaRepository != "" {
		schema = kpgschema.New(p, schemaRepository)
	} else {
		schema = kpgschema.NewFS(p, repository.Repository)
	}

	return &catalogDBPostgres{
		pool:     p,
		data:     kpgdata.New(p),
		formats:  kpgformat.New(p),
		calendar: kpgcalendar.New(p),
		schema:   schema,
	}
}

func (k *catalogDBPostgres) Data() kdata.DataInterface {
	return k.data
}

func (k *catalogDBPostgres) Formats() kformat.FormatInterface {
	return k.formats
}

func (k *catalogDBPostgres) Calendar() kcalendar.CalendarInterface {
	return k.calendar
}

func (k *catalogDBPostgres) Schema() kschema.SchemaInterface {
	return k.schema
}

func (k *catalogDBPostgres) Close() error {
	k.pool.Close()
	return nil
}
