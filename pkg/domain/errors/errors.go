package errors

import (
	"errors"
	"fmt"
)

var (
	// requested entity (data, format, history...) is not found.
	ErrMissing = errors.New("missing")

	// a concurrent writer has claimed the version first.
	//
	// Callers should resolve the version again and retry.
	ErrDuplicateVersion = errors.New("duplicate version")

	// status change is not allowed by the status transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// lineage edge would make a cycle.
	ErrCyclicLineage = errors.New("cyclic lineage")

	// partition key cannot be resolved.
	ErrMissingPartitionKey = errors.New("missing partition key")

	// partition key group is not registered.
	ErrUnknownGroup = errors.New("unknown partition key group")

	// request is malformed.
	ErrValidation = errors.New("validation error")

	// entity to be created exists already.
	ErrAlreadyExists = errors.New("already exists")
)

// requested record is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return ErrMissing
}

// record to be created conflicts with an existing one.
type Conflict struct {
	Table    string
	Identity string
}

var _ error = Conflict{}

func (c Conflict) Error() string {
	return fmt.Sprintf("%s already exists in %s", c.Identity, c.Table)
}

func (c Conflict) Unwrap() error {
	return ErrAlreadyExists
}

// Validation tells which field of a request is malformed and why.
type Validation struct {
	Field  string
	Reason string
}

var _ error = Validation{}

func (v Validation) Error() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, v.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, v.Field, v.Reason)
}

func (v Validation) Unwrap() error {
	return ErrValidation
}

func NewValidation(field string, format string, args ...any) error {
	return Validation{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DuplicateVersion is returned when the version computed for a family has been
// taken by another registration.
type DuplicateVersion struct {
	// human readable form of the coordinate family
	Family  string
	Version int
}

var _ error = DuplicateVersion{}

func (d DuplicateVersion) Error() string {
	return fmt.Sprintf("%s: version %d of %s", ErrDuplicateVersion, d.Version, d.Family)
}

func (d DuplicateVersion) Unwrap() error {
	return ErrDuplicateVersion
}

type InvalidTransition struct {
	Identity string
	From     string
	To       string
}

var _ error = InvalidTransition{}

func (it InvalidTransition) Error() string {
	return fmt.Sprintf("%s: %s -> %s (%s)", ErrInvalidTransition, it.From, it.To, it.Identity)
}

func (it InvalidTransition) Unwrap() error {
	return ErrInvalidTransition
}

type CyclicLineage struct {
	Child  string
	Parent string
}

var _ error = CyclicLineage{}

func (c CyclicLineage) Error() string {
	if c.Child == c.Parent {
		return fmt.Sprintf("%s: %s cannot be a parent of itself", ErrCyclicLineage, c.Child)
	}
	return fmt.Sprintf("%s: %s depends on %s already", ErrCyclicLineage, c.Parent, c.Child)
}

func (c CyclicLineage) Unwrap() error {
	return ErrCyclicLineage
}

type MissingPartitionKey struct {
	Format string
}

var _ error = MissingPartitionKey{}

func (m MissingPartitionKey) Error() string {
	return fmt.Sprintf("%s: format %s does not declare a partition key", ErrMissingPartitionKey, m.Format)
}

func (m MissingPartitionKey) Unwrap() error {
	return ErrMissingPartitionKey
}

type UnknownGroup struct {
	Name string
}

var _ error = UnknownGroup{}

func (u UnknownGroup) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownGroup, u.Name)
}

func (u UnknownGroup) Unwrap() error {
	return ErrUnknownGroup
}
