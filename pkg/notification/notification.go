// Package notification tells the outside of the catalog what has happened to Data.
//
// Notifications are sent after changes are committed.
// A failure of notification does not roll the change back.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/opst/dmcatalog/pkg/domain"
)

type EventType string

const (
	DataRegistered    EventType = "DATA_REGISTERED"
	DataStatusChanged EventType = "DATA_STATUS_CHANGED"
	DataDeleted       EventType = "DATA_DELETED"
)

type Event struct {
	Type EventType
	Data domain.DataKey

	// status after the event. Empty for DataDeleted.
	Status domain.Status

	// status before the event. Empty for DataRegistered.
	OldStatus domain.Status

	OccurredAt time.Time
}

type Notifier interface {
	Notify(context.Context, Event) error
}

// NotifierFunc adapts a function as a Notifier.
type NotifierFunc func(context.Context, Event) error

func (f NotifierFunc) Notify(ctx context.Context, e Event) error {
	return f(ctx, e)
}

type logNotifier struct {
	logger *log.Logger
}

// Log returns a Notifier writing events to the logger.
func Log(logger *log.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (l *logNotifier) Notify(_ context.Context, e Event) error {
	l.logger.Infoj(log.JSON{
		"event":      string(e.Type),
		"data":       e.Data.String(),
		"status":     string(e.Status),
		"oldStatus":  string(e.OldStatus),
		"occurredAt": e.OccurredAt.Format(time.RFC3339Nano),
	})
	return nil
}

type fanout []Notifier

// Fanout returns a Notifier sending events to all of notifiers.
//
// All notifiers are called even if some of them fail. Errors are joined.
func Fanout(notifiers ...Notifier) Notifier {
	return fanout(notifiers)
}

func (f fanout) Notify(ctx context.Context, e Event) error {
	errs := make([]error, 0, len(f))
	for _, n := range f {
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop is a Notifier which does nothing.
var Nop Notifier = NotifierFunc(func(context.Context, Event) error { return nil })
