package db

import (
	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
	kschema "github.com/opst/dmcatalog/pkg/domain/schema/db"
)

type CatalogDatabase interface {
	Data() kdata.DataInterface
	Formats() kformat.FormatInterface
	Calendar() kcalendar.CalendarInterface
	Schema() kschema.SchemaInterface
	Close() error
}
