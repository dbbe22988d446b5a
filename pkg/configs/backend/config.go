package backend

import (
	"time"

	"github.com/opst/dmcatalog/pkg/domain"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Configuration for dmcatalog server.
//
// to get `BackendConfig` instance, use `TrySeal(*BackendConfigMarshall)` or `Unmarshal`.
type BackendConfig struct {
	port         int32
	storage      *StorageConfig
	availability *AvailabilityConfig
	registration *RegistrationConfig
	calendar     *CalendarConfig
	tracing      *TracingConfig
}

func (c *BackendConfig) Port() int32 {
	return c.port
}

func (c *BackendConfig) Storage() *StorageConfig {
	return c.storage
}

func (c *BackendConfig) Availability() *AvailabilityConfig {
	return c.availability
}

func (c *BackendConfig) Registration() *RegistrationConfig {
	return c.registration
}

func (c *BackendConfig) Calendar() *CalendarConfig {
	return c.calendar
}

func (c *BackendConfig) Tracing() *TracingConfig {
	return c.tracing
}

// Where catalog entries are stored.
type StorageConfig struct {
	backend          string
	database         string
	maxConns         int32
	schemaRepository string
}

// "postgres" or "memory"
func (s *StorageConfig) Backend() string {
	return s.backend
}

// Connection string for database. Empty when the backend is "memory".
func (s *StorageConfig) Database() string {
	return s.database
}

// Max connections of the pool. 0 means the default of pgxpool.
func (s *StorageConfig) MaxConns() int32 {
	return s.maxConns
}

// Directory of schema repository.
//
// Empty means the repository embedded in the binary.
func (s *StorageConfig) SchemaRepository() string {
	return s.schemaRepository
}

type AvailabilityConfig struct {
	policy domain.AvailabilityPolicy
}

func (a *AvailabilityConfig) Policy() domain.AvailabilityPolicy {
	p := a.policy
	p.AvailableStatuses = append([]domain.Status{}, a.policy.AvailableStatuses...)
	return p
}

type RegistrationConfig struct {
	maxRetries    int
	retryInterval time.Duration
}

// How many times registration is retried when a concurrent registration takes the version.
func (r *RegistrationConfig) MaxRetries() int {
	return r.maxRetries
}

func (r *RegistrationConfig) RetryInterval() time.Duration {
	return r.retryInterval
}

type CalendarConfig struct {
	cacheTTL time.Duration
}

// TTL of cached partition key groups. 0 means groups are not cached.
func (c *CalendarConfig) CacheTTL() time.Duration {
	return c.cacheTTL
}

type TracingConfig struct {
	enabled bool
}

// When true, spans are written to stdout.
func (t *TracingConfig) Enabled() bool {
	return t.enabled
}
