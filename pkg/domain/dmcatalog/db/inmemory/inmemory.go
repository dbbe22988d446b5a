// Package inmemory provides a CatalogDatabase which forgets everything on exit.
//
// It is for tests and trials.
package inmemory

import (
	"context"

	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
	kmemcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db/inmemory"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	kmemdata "github.com/opst/dmcatalog/pkg/domain/data/db/inmemory"
	dbInterface "github.com/opst/dmcatalog/pkg/domain/dmcatalog/db"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
	kmemformat "github.com/opst/dmcatalog/pkg/domain/format/db/inmemory"
	kschema "github.com/opst/dmcatalog/pkg/domain/schema/db"
	kpgschema "github.com/opst/dmcatalog/pkg/domain/schema/db/postgres"
)

type catalogDBMem struct {
	data     kdata.DataInterface
	formats  kformat.FormatInterface
	calendar kcalendar.CalendarInterface
}

func New(options ...kmemdata.Option) dbInterface.CatalogDatabase {
	var formats interface {
		kformat.FormatInterface
		RefersGroup(ctx context.Context, group string) (bool, error)
	}
	calendar := kmemcalendar.New(kmemcalendar.WithReferenceCheck(
		func(ctx context.Context, group string) (bool, error) {
			return formats.RefersGroup(ctx, group)
		},
	))
	formats = kmemformat.New(calendar)

	return &catalogDBMem{
		data:     kmemdata.New(formats, options...),
		formats:  formats,
		calendar: calendar,
	}
}

func (m *catalogDBMem) Data() kdata.DataInterface {
	return m.data
}

func (m *catalogDBMem) Formats() kformat.FormatInterface {
	return m.formats
}

func (m *catalogDBMem) Calendar() kcalendar.CalendarInterface {
	return m.calendar
}

// Schema of in-memory database never needs upgrades.
func (m *catalogDBMem) Schema() kschema.SchemaInterface {
	return kpgschema.Null()
}

func (m *catalogDBMem) Close() error {
	return nil
}
