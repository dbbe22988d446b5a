package dmcatalog

import (
	"context"
	"fmt"

	bconf "github.com/opst/dmcatalog/pkg/configs/backend"
	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
	"github.com/opst/dmcatalog/pkg/domain/calendar/db/cached"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	dbInterface "github.com/opst/dmcatalog/pkg/domain/dmcatalog/db"
	"github.com/opst/dmcatalog/pkg/domain/dmcatalog/db/inmemory"
	"github.com/opst/dmcatalog/pkg/domain/dmcatalog/db/postgres"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
	kschema "github.com/opst/dmcatalog/pkg/domain/schema/db"
)

type Catalog interface {
	Config() *bconf.BackendConfig

	Data() kdata.DataInterface
	Formats() kformat.FormatInterface
	Calendar() kcalendar.CalendarInterface
	Schema() kschema.SchemaInterface

	Close() error
}

type catalog struct {
	config *bconf.BackendConfig
	db     dbInterface.CatalogDatabase

	calendar kcalendar.CalendarInterface
}

// New opens stores in the way config says.
func New(
	ctx context.Context,
	config *bconf.BackendConfig,
	options ...Option,
) (Catalog, error) {
	opt := &_options{}
	for _, o := range options {
		o(opt)
	}

	storage := config.Storage()
	var db dbInterface.CatalogDatabase
	switch storage.Backend() {
	case bconf.StorageMemory:
		db = inmemory.New()
	case bconf.StoragePostgres:
		pgopts := []postgres.Option{
			postgres.WithSchemaRepository(storage.SchemaRepository()),
			postgres.WithMaxConns(storage.MaxConns()),
		}
		pgopts = append(pgopts, opt.pg...)
		pg, err := postgres.New(ctx, storage.Database(), pgopts...)
		if err != nil {
			return nil, err
		}
		db = pg
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", storage.Backend())
	}

	return Wrap(config, db), nil
}

// Wrap builds Catalog on opened stores.
//
// When the calendar cache is configured, the calendar of db is wrapped with it.
func Wrap(config *bconf.BackendConfig, db dbInterface.CatalogDatabase) Catalog {
	calendar := db.Calendar()
	if ttl := config.Calendar().CacheTTL(); 0 < ttl {
		calendar = cached.New(calendar, ttl)
	}
	return &catalog{config: config, db: db, calendar: calendar}
}

type Option func(*_options)

type _options struct {
	pg []postgres.Option
}

// WithSchemaRepository overrides the schema repository in the config.
func WithSchemaRepository(repository string) Option {
	return func(o *_options) {
		o.pg = append(o.pg, postgres.WithSchemaRepository(repository))
	}
}

func (c *catalog) Config() *bconf.BackendConfig {
	return c.config
}

func (c *catalog) Data() kdata.DataInterface {
	return c.db.Data()
}

func (c *catalog) Formats() kformat.FormatInterface {
	return c.db.Formats()
}

func (c *catalog) Calendar() kcalendar.CalendarInterface {
	return c.calendar
}

func (c *catalog) Schema() kschema.SchemaInterface {
	return c.db.Schema()
}

func (c *catalog) Close() error {
	return c.db.Close()
}
