// Package catalog is the entry point of catalog operations.
//
// Service validates requests, resolves formats and delegates to stores.
// It also retries registrations racing for a version, and observes operations
// with logs, metrics and traces.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/opst/dmcatalog/pkg/domain"
	kcalendar "github.com/opst/dmcatalog/pkg/domain/calendar/db"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
	"github.com/opst/dmcatalog/pkg/utils/retry"
)

const (
	DefaultMaxRetries    = 3
	DefaultRetryInterval = 10 * time.Millisecond
)

type Service struct {
	data     kdata.DataInterface
	formats  kformat.FormatInterface
	calendar kcalendar.CalendarInterface

	policy        domain.AvailabilityPolicy
	maxRetries    int
	retryInterval time.Duration

	logger  *log.Logger
	tracer  trace.Tracer
	metrics *metrics
}

type Option func(*Service)

// WithPolicy sets the rule of availability.
func WithPolicy(policy domain.AvailabilityPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithRetry sets how registrations losing a race for a version are retried.
func WithRetry(maxRetries int, interval time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = maxRetries
		s.retryInterval = interval
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithRegisterer sets where metrics are registered.
//
// By default, metrics are registered to a registry private to the Service.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Service) {
		s.metrics = newMetrics(reg)
	}
}

func New(
	data kdata.DataInterface,
	formats kformat.FormatInterface,
	calendar kcalendar.CalendarInterface,
	options ...Option,
) *Service {
	s := &Service{
		data:          data,
		formats:       formats,
		calendar:      calendar,
		maxRetries:    DefaultMaxRetries,
		retryInterval: DefaultRetryInterval,
	}
	for _, o := range options {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.New("catalog")
		s.logger.SetLevel(log.OFF)
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("catalog")
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.NewRegistry())
	}
	return s
}

// observe starts a span of the operation.
//
// Call the returned function with the result error of the operation, to end the span.
func (s *Service) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	begin := time.Now()
	ctx, span := s.tracer.Start(ctx, "catalog."+op, trace.WithAttributes(attrs...))
	return ctx, func(perr *error) {
		defer span.End()
		result := "ok"
		if err := *perr; err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Debugf("%s failed: %s", op, err)
		}
		s.metrics.duration.WithLabelValues(op, result).Observe(time.Since(begin).Seconds())
	}
}

func formatAttr(key domain.FormatKey) attribute.KeyValue {
	return attribute.String("dmcatalog.format", key.String())
}

// RegisterFormat registers a new format.
func (s *Service) RegisterFormat(ctx context.Context, f domain.Format) (_ domain.Format, err error) {
	ctx, end := s.observe(ctx, "RegisterFormat", formatAttr(f.FormatKey))
	defer func() { end(&err) }()

	f.PartitionKey = strings.TrimSpace(f.PartitionKey)
	f.PartitionKeyGroup = strings.TrimSpace(f.PartitionKeyGroup)
	subKeys := make([]string, 0, len(f.SubPartitionKeys))
	for _, k := range f.SubPartitionKeys {
		subKeys = append(subKeys, strings.TrimSpace(k))
	}
	f.SubPartitionKeys = subKeys

	if err := f.Validate(); err != nil {
		return domain.Format{}, err
	}
	registered, err := s.formats.Register(ctx, f)
	if err != nil {
		return domain.Format{}, err
	}
	s.logger.Infof("format registered: %s", registered.FormatKey)
	return registered, nil
}

func (s *Service) GetFormat(ctx context.Context, key domain.FormatKey) (_ domain.Format, err error) {
	ctx, end := s.observe(ctx, "GetFormat", formatAttr(key))
	defer func() { end(&err) }()

	if err := key.Validate(); err != nil {
		return domain.Format{}, err
	}
	return s.formats.Get(ctx, key)
}

func (s *Service) FindFormats(ctx context.Context, q kformat.FindQuery) (_ []domain.Format, err error) {
	ctx, end := s.observe(ctx, "FindFormats")
	defer func() { end(&err) }()

	return s.formats.Find(ctx, q)
}

// Register registers a new version of Data.
//
// When a concurrent registration takes the version, it is retried with the next version.
func (s *Service) Register(ctx context.Context, reg domain.DataRegistration) (_ domain.Data, err error) {
	ctx, end := s.observe(ctx, "Register", formatAttr(reg.Family.Format))
	defer func() {
		end(&err)
		result := "ok"
		if err != nil {
			result = "error"
		}
		s.metrics.registrations.WithLabelValues(result).Inc()
	}()

	if err := reg.Validate(); err != nil {
		return domain.Data{}, err
	}
	f, err := s.formats.Get(ctx, reg.Family.Format)
	if err != nil {
		return domain.Data{}, err
	}
	if err := f.CheckSubPartitions(reg.Family.SubPartitionValues); err != nil {
		return domain.Data{}, err
	}

	wait := retry.Static(s.retryInterval)
	backoff := retry.Limited(s.maxRetries, func(ctx context.Context, attempt int) error {
		s.metrics.registrationRetry.Inc()
		s.logger.Debugf("registration of %s is retried (#%d)", reg.Family, attempt)
		return wait(ctx, attempt)
	})

	d, err := retry.Blocking(ctx, backoff, func() (domain.Data, error) {
		d, err := s.data.Register(ctx, reg)
		if errors.Is(err, domerr.ErrDuplicateVersion) {
			return d, retry.Again(err)
		}
		return d, err
	})
	if err != nil {
		return domain.Data{}, err
	}
	s.logger.Infof("data registered: %s (id: %s)", d.DataKey, d.Id)
	return d, nil
}

func (s *Service) GetData(ctx context.Context, q domain.DataQuery) (_ domain.Data, err error) {
	ctx, end := s.observe(ctx, "GetData", formatAttr(q.Family.Format))
	defer func() { end(&err) }()

	if err := q.Family.Validate(); err != nil {
		return domain.Data{}, err
	}
	if q.Version != nil && *q.Version < domain.InitialVersion {
		return domain.Data{}, domerr.NewValidation("businessObjectDataVersion", "must not be negative: %d", *q.Version)
	}
	return s.data.Get(ctx, q)
}

// Versions lists Data of a partition value.
//
// Sub-partition values in q narrow the result by prefix.
func (s *Service) Versions(ctx context.Context, q kdata.VersionsQuery) (_ []domain.Data, err error) {
	ctx, end := s.observe(ctx, "Versions", formatAttr(q.Format))
	defer func() { end(&err) }()

	if err := q.Format.Validate(); err != nil {
		return nil, err
	}
	q.PartitionValue = strings.TrimSpace(q.PartitionValue)
	if q.PartitionValue == "" {
		return nil, domerr.NewValidation("partitionValue", "must be specified")
	}
	return s.data.Versions(ctx, q)
}

func (s *Service) SetStatus(ctx context.Context, key domain.DataKey, status domain.Status) (_ domain.Data, err error) {
	ctx, end := s.observe(ctx, "SetStatus", formatAttr(key.Format))
	defer func() { end(&err) }()

	if err := key.Validate(); err != nil {
		return domain.Data{}, err
	}
	d, err := s.data.SetStatus(ctx, key, status)
	if err != nil {
		return domain.Data{}, err
	}
	s.logger.Infof("status of %s is changed to %s", key, d.Status)
	return d, nil
}

func (s *Service) AddParents(ctx context.Context, child domain.DataKey, parents []domain.DataKey) (_ domain.Data, err error) {
	ctx, end := s.observe(ctx, "AddParents", formatAttr(child.Format))
	defer func() { end(&err) }()

	if err := child.Validate(); err != nil {
		return domain.Data{}, err
	}
	for _, p := range parents {
		if err := p.Validate(); err != nil {
			return domain.Data{}, err
		}
	}
	return s.data.AddParents(ctx, child, parents)
}

func (s *Service) PutAttributes(ctx context.Context, key domain.DataKey, attrs []domain.Attribute) (_ domain.Data, err error) {
	ctx, end := s.observe(ctx, "PutAttributes", formatAttr(key.Format))
	defer func() { end(&err) }()

	if err := key.Validate(); err != nil {
		return domain.Data{}, err
	}
	if err := domain.ValidateAttributes(attrs); err != nil {
		return domain.Data{}, err
	}
	return s.data.PutAttributes(ctx, key, attrs)
}

func (s *Service) RemoveAttributes(ctx context.Context, key domain.DataKey, names []string) (_ domain.Data, err error) {
	ctx, end := s.observe(ctx, "RemoveAttributes", formatAttr(key.Format))
	defer func() { end(&err) }()

	if err := key.Validate(); err != nil {
		return domain.Data{}, err
	}
	return s.data.RemoveAttributes(ctx, key, names)
}

func (s *Service) AddStorageUnit(ctx context.Context, key domain.DataKey, su domain.StorageUnit) (_ domain.Data, err error) {
	ctx, end := s.observe(ctx, "AddStorageUnit", formatAttr(key.Format))
	defer func() { end(&err) }()

	if err := key.Validate(); err != nil {
		return domain.Data{}, err
	}
	su.StorageName = strings.TrimSpace(su.StorageName)
	if su.StorageName == "" {
		return domain.Data{}, domerr.NewValidation("storageName", "must be specified")
	}
	return s.data.AddStorageUnit(ctx, key, su)
}

// Delete removes Data physically.
func (s *Service) Delete(ctx context.Context, key domain.DataKey) (_ domain.Data, err error) {
	ctx, end := s.observe(ctx, "Delete", formatAttr(key.Format))
	defer func() { end(&err) }()

	if err := key.Validate(); err != nil {
		return domain.Data{}, err
	}
	d, err := s.data.Delete(ctx, key)
	if err != nil {
		return domain.Data{}, err
	}
	s.logger.Infof("data deleted: %s (id: %s)", d.DataKey, d.Id)
	return d, nil
}
