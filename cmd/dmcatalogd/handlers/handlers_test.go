package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/opst/dmcatalog/pkg/catalog"
	"github.com/opst/dmcatalog/pkg/domain"
	kinmem "github.com/opst/dmcatalog/pkg/domain/dmcatalog/db/inmemory"
	"github.com/opst/dmcatalog/pkg/notification"
	"github.com/opst/dmcatalog/pkg/utils/try"
)

var formatKey = domain.FormatKey{
	Namespace: "UT_Namespace", Definition: "UT_Def", Usage: "PRC", FileType: "BZ", Version: 0,
}

// formatQuery is query parameters to identify formatKey.
const formatQuery = "namespace=UT_Namespace&businessObjectDefinitionName=UT_Def" +
	"&businessObjectFormatUsage=PRC&businessObjectFormatFileType=BZ&businessObjectFormatVersion=0"

// formatJSON is JSON fields to identify formatKey.
const formatJSON = `"namespace": "UT_Namespace", "businessObjectDefinitionName": "UT_Def",
	"businessObjectFormatUsage": "PRC", "businessObjectFormatFileType": "BZ", "businessObjectFormatVersion": 0`

type eventRecorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *eventRecorder) Notify(_ context.Context, e notification.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) Events() []notification.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Event{}, r.events...)
}

// setup builds a Service on in-memory stores, with a group "dates" and a format.
func setup(t *testing.T) *catalog.Service {
	t.Helper()
	ctx := context.Background()
	db := kinmem.New()
	svc := catalog.New(db.Data(), db.Formats(), db.Calendar())

	try.To(svc.CreateGroup(ctx, "dates", []string{"2024-01-01", "2024-01-02", "2024-01-03"})).OrFatal(t)
	try.To(svc.RegisterFormat(ctx, domain.Format{
		FormatKey:         formatKey,
		PartitionKey:      "date",
		SubPartitionKeys:  []string{"region"},
		PartitionKeyGroup: "dates",
	})).OrFatal(t)
	return svc
}

func register(t *testing.T, svc *catalog.Service, status domain.Status, pv string, subs ...string) domain.Data {
	t.Helper()
	f := try.To(domain.NewFamily(formatKey, pv, subs...)).OrFatal(t)
	return try.To(svc.Register(context.Background(), domain.DataRegistration{Family: f, Status: status})).OrFatal(t)
}

// statusOf returns the status code of the error returned by a handler.
func statusOf(t *testing.T, err error) int {
	t.Helper()
	var herr *echo.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
	}
	return herr.Code
}

func decodeBody[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Body.Bytes(), &v); err != nil {
		t.Fatalf("response is not JSON: %s (%s)", err, resp.Body.String())
	}
	return v
}

