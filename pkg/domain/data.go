package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/opst/dmcatalog/pkg/cmp"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

const (
	// max number of sub-partition values of a Data.
	MaxSubPartitions = 4

	// version of the first Data in a family.
	InitialVersion = 0
)

// SubPartitionValues are positional sub-partition values.
//
// Empty string means "not given". Given values should be left-aligned.
type SubPartitionValues [MaxSubPartitions]string

// NewSubPartitionValues builds SubPartitionValues from a list.
//
// Each value is trimmed. Blank values and more than MaxSubPartitions values are rejected.
func NewSubPartitionValues(values ...string) (SubPartitionValues, error) {
	spv := SubPartitionValues{}
	if MaxSubPartitions < len(values) {
		return spv, domerr.NewValidation(
			"subPartitionValues", "at most %d values are allowed, but %d are given",
			MaxSubPartitions, len(values),
		)
	}
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			return spv, domerr.NewValidation(
				"subPartitionValues", "sub-partition value #%d is blank", i+1,
			)
		}
		spv[i] = v
	}
	return spv, nil
}

// Len returns the number of given values.
func (spv SubPartitionValues) Len() int {
	n := 0
	for _, v := range spv {
		if v == "" {
			break
		}
		n += 1
	}
	return n
}

// Values returns given values as a slice.
func (spv SubPartitionValues) Values() []string {
	return append([]string{}, spv[:spv.Len()]...)
}

// validate checks values are left-aligned.
func (spv SubPartitionValues) validate() error {
	n := spv.Len()
	for i := n; i < MaxSubPartitions; i++ {
		if spv[i] != "" {
			return domerr.NewValidation(
				"subPartitionValues", "sub-partition value #%d is given but #%d is not", i+1, n+1,
			)
		}
	}
	return nil
}

// HasPrefix reports whether spv starts with the given values of prefix.
func (spv SubPartitionValues) HasPrefix(prefix SubPartitionValues) bool {
	for i := 0; i < prefix.Len(); i++ {
		if spv[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Family is a coordinate shared among versions of Data.
//
// Family is comparable, and can be used as map key.
type Family struct {
	Format             FormatKey
	PartitionValue     string
	SubPartitionValues SubPartitionValues
}

// NewFamily builds a validated Family.
func NewFamily(format FormatKey, partitionValue string, subPartitionValues ...string) (Family, error) {
	spv, err := NewSubPartitionValues(subPartitionValues...)
	if err != nil {
		return Family{}, err
	}
	f := Family{
		Format:             format,
		PartitionValue:     strings.TrimSpace(partitionValue),
		SubPartitionValues: spv,
	}
	if err := f.Validate(); err != nil {
		return Family{}, err
	}
	return f, nil
}

func (f Family) Validate() error {
	if err := f.Format.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(f.PartitionValue) == "" {
		return domerr.NewValidation("partitionValue", "must be specified")
	}
	return f.SubPartitionValues.validate()
}

func (f Family) String() string {
	b := new(strings.Builder)
	b.WriteString(f.Format.String())
	b.WriteString("/")
	b.WriteString(f.PartitionValue)
	for _, v := range f.SubPartitionValues.Values() {
		b.WriteString("/")
		b.WriteString(v)
	}
	return b.String()
}

// LockKey returns a string which is unique per Family.
//
// Unlike String(), it is unambiguous even if values contain "/".
func (f Family) LockKey() string {
	return fmt.Sprintf(
		"%q %q %q %q %d %q %q %q %q %q",
		f.Format.Namespace, f.Format.Definition, f.Format.Usage, f.Format.FileType, f.Format.Version,
		f.PartitionValue,
		f.SubPartitionValues[0], f.SubPartitionValues[1], f.SubPartitionValues[2], f.SubPartitionValues[3],
	)
}

// DataKey is the natural key of Data.
type DataKey struct {
	Family
	Version int
}

func (dk DataKey) String() string {
	return fmt.Sprintf("%s@v%d", dk.Family, dk.Version)
}

func (dk DataKey) Validate() error {
	if err := dk.Family.Validate(); err != nil {
		return err
	}
	if dk.Version < InitialVersion {
		return domerr.NewValidation("businessObjectDataVersion", "must not be negative: %d", dk.Version)
	}
	return nil
}

type StatusHistory struct {
	Status    Status
	CreatedAt time.Time
}

func (sh StatusHistory) Equal(o StatusHistory) bool {
	return sh.Status == o.Status && sh.CreatedAt.Equal(o.CreatedAt)
}

type Attribute struct {
	Name  string
	Value string
}

// StorageUnit tells where the payload of Data is placed.
type StorageUnit struct {
	StorageName string

	// empty if not known.
	DirectoryPath string
}

// Data is a registration of a partition of dataset in a specific version.
type Data struct {
	// surrogate id
	Id string

	DataKey

	// true if this is the latest version in its Family.
	Latest bool

	Status Status

	// status changes, in the order of creation. The last one is the current status.
	History []StatusHistory

	Attributes   []Attribute
	StorageUnits []StorageUnit

	Parents  []DataKey
	Children []DataKey

	CreatedAt time.Time
}

func (d *Data) Equal(o *Data) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.Id == o.Id &&
		d.DataKey == o.DataKey &&
		d.Latest == o.Latest &&
		d.Status == o.Status &&
		d.CreatedAt.Equal(o.CreatedAt) &&
		cmp.SliceEqWith(d.History, o.History, StatusHistory.Equal) &&
		cmp.SliceContentEq(d.Attributes, o.Attributes) &&
		cmp.SliceContentEq(d.StorageUnits, o.StorageUnits) &&
		cmp.SliceContentEq(d.Parents, o.Parents) &&
		cmp.SliceContentEq(d.Children, o.Children)
}

// Attribute returns value of the named attribute.
func (d *Data) Attribute(name string) (string, bool) {
	for _, a := range d.Attributes {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// DataRegistration is a request to register a new version of Data.
type DataRegistration struct {
	Family Family

	// initial status. Empty means Valid.
	Status Status

	Attributes   []Attribute
	StorageUnits []StorageUnit

	// declared parents. Each of them should be registered already.
	Parents []DataKey
}

// InitialStatus returns the status which the new Data starts with, in canonical form.
//
// Unknown statuses are returned as they are. Validate rejects them.
func (dr DataRegistration) InitialStatus() Status {
	if dr.Status == "" {
		return Valid
	}
	st, err := AsStatus(string(dr.Status))
	if err != nil {
		return dr.Status
	}
	return st
}

func (dr DataRegistration) Validate() error {
	if err := dr.Family.Validate(); err != nil {
		return err
	}

	st := dr.InitialStatus()
	if _, err := AsStatus(string(st)); err != nil {
		return domerr.NewValidation("status", "%s", err)
	}
	if st == Deleted {
		return domerr.NewValidation("status", "data cannot be registered as %s", Deleted)
	}

	if err := ValidateAttributes(dr.Attributes); err != nil {
		return err
	}

	storages := map[string]struct{}{}
	for _, su := range dr.StorageUnits {
		name := strings.TrimSpace(su.StorageName)
		if name == "" {
			return domerr.NewValidation("storageUnits", "storage name must be specified")
		}
		key := strings.ToUpper(name)
		if _, ok := storages[key]; ok {
			return domerr.NewValidation("storageUnits", "storage %q is duplicated", su.StorageName)
		}
		storages[key] = struct{}{}
	}

	for _, p := range dr.Parents {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAttributes checks attribute names are given and unique (case insensitive).
func ValidateAttributes(attrs []Attribute) error {
	names := map[string]struct{}{}
	for _, a := range attrs {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return domerr.NewValidation("attributes", "attribute name must be specified")
		}
		key := strings.ToUpper(name)
		if _, ok := names[key]; ok {
			return domerr.NewValidation("attributes", "attribute %q is duplicated", a.Name)
		}
		names[key] = struct{}{}
	}
	return nil
}

// DataQuery selects Data of a Family.
type DataQuery struct {
	Family Family

	// nil means "the latest".
	Version *int
}

func (q DataQuery) String() string {
	if q.Version == nil {
		return fmt.Sprintf("%s@latest", q.Family)
	}
	return fmt.Sprintf("%s@v%d", q.Family, *q.Version)
}
