package catalog

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/opst/dmcatalog/pkg/domain"
	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
)

// source serves availability checks from stores.
type source struct {
	calendar kcalendar.CalendarInterface
	data     kdata.DataInterface
}

var _ domain.AvailabilitySource = source{}

func (s source) ExpectedValuesInRange(ctx context.Context, group string, r domain.PartitionRange) ([]string, error) {
	return s.calendar.ExpectedValuesInRange(ctx, group, r)
}

func (s source) Lookup(ctx context.Context, q domain.LookupQuery) ([]domain.Candidate, error) {
	return s.data.Lookup(ctx, q)
}

// CheckAvailability tells which partitions requested are available.
func (s *Service) CheckAvailability(ctx context.Context, req domain.AvailabilityRequest) (_ domain.Availability, err error) {
	ctx, end := s.observe(ctx, "CheckAvailability", formatAttr(req.Format))
	defer func() { end(&err) }()

	return s.checkAvailability(ctx, req)
}

func (s *Service) checkAvailability(ctx context.Context, req domain.AvailabilityRequest) (domain.Availability, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.Availability{}, err
	}
	f, err := s.formats.Get(ctx, req.Format)
	if err != nil {
		return domain.Availability{}, err
	}
	a, err := s.policy.CheckAvailability(ctx, &f, req, source{calendar: s.calendar, data: s.data})
	if err != nil {
		return domain.Availability{}, err
	}
	s.metrics.availabilityChecks.WithLabelValues(completeLabel(a.Complete())).Inc()
	return a, nil
}

// AvailabilityCollection is results of availability checks of many requests.
type AvailabilityCollection struct {
	Results []domain.Availability

	// true when every result is complete.
	IsAllDataAvailable bool
}

// CheckAvailabilityCollection checks requests in order.
//
// When any of requests fails, whole the check fails.
func (s *Service) CheckAvailabilityCollection(ctx context.Context, reqs []domain.AvailabilityRequest) (_ AvailabilityCollection, err error) {
	ctx, end := s.observe(ctx, "CheckAvailabilityCollection", attribute.Int("dmcatalog.requests", len(reqs)))
	defer func() { end(&err) }()

	col := AvailabilityCollection{
		Results:            make([]domain.Availability, 0, len(reqs)),
		IsAllDataAvailable: true,
	}
	for _, req := range reqs {
		a, err := s.checkAvailability(ctx, req)
		if err != nil {
			return AvailabilityCollection{}, err
		}
		col.Results = append(col.Results, a)
		col.IsAllDataAvailable = col.IsAllDataAvailable && a.Complete()
	}
	return col, nil
}

func completeLabel(complete bool) string {
	if complete {
		return "complete"
	}
	return "incomplete"
}
