package backend

import (
	"fmt"
	"time"

	"github.com/opst/dmcatalog/pkg/domain"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/backend.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

const (
	DefaultPort          = 8080
	DefaultMaxRetries    = 3
	DefaultRetryInterval = 10 * time.Millisecond
	DefaultCacheTTL      = 1 * time.Minute
)

// Configuration of dmcatalog server.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `BackendConfig`.
type BackendConfigMarshall struct {
	Port         int32                       `yaml:"port,omitempty"`
	Storage      *StorageConfigMarshall      `yaml:"storage"`
	Availability *AvailabilityConfigMarshall `yaml:"availability,omitempty"`
	Registration *RegistrationConfigMarshall `yaml:"registration,omitempty"`
	Calendar     *CalendarConfigMarshall     `yaml:"calendar,omitempty"`
	Tracing      *TracingConfigMarshall      `yaml:"tracing,omitempty"`
}

var _ Marshalled[*BackendConfig] = &BackendConfigMarshall{}

func (b *BackendConfigMarshall) trySeal(path string) *BackendConfig {
	port := b.Port
	if port == 0 {
		port = DefaultPort
	}
	return &BackendConfig{
		port:         port,
		storage:      nonnil(b.Storage, path+".storage").trySeal(path + ".storage"),
		availability: orDefault(b.Availability).trySeal(path + ".availability"),
		registration: orDefault(b.Registration).trySeal(path + ".registration"),
		calendar:     orDefault(b.Calendar).trySeal(path + ".calendar"),
		tracing:      orDefault(b.Tracing).trySeal(path + ".tracing"),
	}
}

type StorageConfigMarshall struct {
	Backend          string `yaml:"backend"`
	Database         string `yaml:"database,omitempty"`
	MaxConns         int32  `yaml:"maxConns,omitempty"`
	SchemaRepository string `yaml:"schemaRepository,omitempty"`
}

func (s *StorageConfigMarshall) trySeal(path string) *StorageConfig {
	conf := &StorageConfig{
		backend:          required(s.Backend, path+".backend"),
		maxConns:         s.MaxConns,
		schemaRepository: s.SchemaRepository,
	}
	switch conf.backend {
	case StoragePostgres:
		conf.database = required(s.Database, path+".database")
	case StorageMemory:
	default:
		panic(fmt.Errorf(
			"%s.backend should be %q or %q, but %q", path, StoragePostgres, StorageMemory, s.Backend,
		))
	}
	if conf.maxConns < 0 {
		panic(fmt.Errorf("%s.maxConns should not be negative", path))
	}
	return conf
}

type AvailabilityConfigMarshall struct {
	AvailableStatuses []string `yaml:"availableStatuses,omitempty"`
	EmptyRange        string   `yaml:"emptyRange,omitempty"`
	ChunkSize         int      `yaml:"chunkSize,omitempty"`
}

func (a *AvailabilityConfigMarshall) trySeal(path string) *AvailabilityConfig {
	policy := domain.AvailabilityPolicy{
		AvailableStatuses: []domain.Status{},
		ChunkSize:         a.ChunkSize,
	}
	for _, s := range a.AvailableStatuses {
		st, err := domain.AsStatus(s)
		if err != nil {
			panic(fmt.Errorf("%s.availableStatuses: %w", path, err))
		}
		if st == domain.Deleted {
			panic(fmt.Errorf("%s.availableStatuses: %s cannot be available", path, st))
		}
		policy.AvailableStatuses = append(policy.AvailableStatuses, st)
	}
	er, err := domain.AsEmptyRangePolicy(a.EmptyRange)
	if err != nil {
		panic(fmt.Errorf("%s.emptyRange: %w", path, err))
	}
	policy.EmptyRange = er
	if policy.ChunkSize < 0 {
		panic(fmt.Errorf("%s.chunkSize should not be negative", path))
	}
	return &AvailabilityConfig{policy: policy}
}

type RegistrationConfigMarshall struct {
	MaxRetries    *int   `yaml:"maxRetries,omitempty"`
	RetryInterval string `yaml:"retryInterval,omitempty"`
}

func (r *RegistrationConfigMarshall) trySeal(path string) *RegistrationConfig {
	conf := &RegistrationConfig{
		maxRetries:    DefaultMaxRetries,
		retryInterval: DefaultRetryInterval,
	}
	if r.MaxRetries != nil {
		if *r.MaxRetries < 0 {
			panic(fmt.Errorf("%s.maxRetries should not be negative", path))
		}
		conf.maxRetries = *r.MaxRetries
	}
	if r.RetryInterval != "" {
		conf.retryInterval = duration(r.RetryInterval, path+".retryInterval")
	}
	return conf
}

type CalendarConfigMarshall struct {
	CacheTTL string `yaml:"cacheTTL,omitempty"`
}

func (c *CalendarConfigMarshall) trySeal(path string) *CalendarConfig {
	conf := &CalendarConfig{cacheTTL: DefaultCacheTTL}
	if c.CacheTTL != "" {
		conf.cacheTTL = duration(c.CacheTTL, path+".cacheTTL")
	}
	return conf
}

type TracingConfigMarshall struct {
	Enabled bool `yaml:"enabled"`
}

func (t *TracingConfigMarshall) trySeal(string) *TracingConfig {
	return &TracingConfig{enabled: t.Enabled}
}

func duration(s string, path string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	if d < 0 {
		panic(fmt.Errorf("%s should not be negative", path))
	}
	return d
}

func orDefault[T any](v *T) *T {
	if v == nil {
		return new(T)
	}
	return v
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
