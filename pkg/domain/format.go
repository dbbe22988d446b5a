package domain

import (
	"fmt"
	"strings"

	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// FormatKey identifies a Format.
type FormatKey struct {
	Namespace  string
	Definition string
	Usage      string
	FileType   string
	Version    int
}

func (fk FormatKey) String() string {
	return fmt.Sprintf(
		"%s/%s/%s/%s/v%d",
		fk.Namespace, fk.Definition, fk.Usage, fk.FileType, fk.Version,
	)
}

// Validate checks all fields of the key are given.
func (fk FormatKey) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"namespace", fk.Namespace},
		{"businessObjectDefinitionName", fk.Definition},
		{"businessObjectFormatUsage", fk.Usage},
		{"businessObjectFormatFileType", fk.FileType},
	} {
		if strings.TrimSpace(f.value) == "" {
			return domerr.NewValidation(f.name, "must be specified")
		}
	}
	if fk.Version < 0 {
		return domerr.NewValidation("businessObjectFormatVersion", "must not be negative: %d", fk.Version)
	}
	return nil
}

// Format declares how Data of it is partitioned.
type Format struct {
	FormatKey

	// name of the partition column. Partition values of Data are values of it.
	PartitionKey string

	// names of sub-partition columns, in positional order.
	SubPartitionKeys []string

	// name of partition key group which expected partition values are drawn from.
	//
	// empty if not declared.
	PartitionKeyGroup string

	Description string
}

func (f *Format) Equal(o *Format) bool {
	if f == nil || o == nil {
		return f == nil && o == nil
	}
	if len(f.SubPartitionKeys) != len(o.SubPartitionKeys) {
		return false
	}
	for i := range f.SubPartitionKeys {
		if f.SubPartitionKeys[i] != o.SubPartitionKeys[i] {
			return false
		}
	}
	return f.FormatKey == o.FormatKey &&
		f.PartitionKey == o.PartitionKey &&
		f.PartitionKeyGroup == o.PartitionKeyGroup &&
		f.Description == o.Description
}

func (f *Format) Validate() error {
	if err := f.FormatKey.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(f.PartitionKey) == "" {
		return domerr.MissingPartitionKey{Format: f.FormatKey.String()}
	}
	if MaxSubPartitions < len(f.SubPartitionKeys) {
		return domerr.NewValidation(
			"subPartitionKeys", "at most %d sub-partition keys are allowed, but %d are given",
			MaxSubPartitions, len(f.SubPartitionKeys),
		)
	}
	seen := map[string]struct{}{strings.ToLower(f.PartitionKey): {}}
	for _, k := range f.SubPartitionKeys {
		if strings.TrimSpace(k) == "" {
			return domerr.NewValidation("subPartitionKeys", "blank key is not allowed")
		}
		lk := strings.ToLower(k)
		if _, ok := seen[lk]; ok {
			return domerr.NewValidation("subPartitionKeys", "partition key %q is duplicated", k)
		}
		seen[lk] = struct{}{}
	}
	return nil
}

// ResolvePartitionKey returns the partition key to be used with the format.
//
// When requested is empty, the format's own partition key is used.
// Otherwise, requested should match with the format's one (case insensitive).
func (f *Format) ResolvePartitionKey(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		if f.PartitionKey == "" {
			return "", domerr.MissingPartitionKey{Format: f.FormatKey.String()}
		}
		return f.PartitionKey, nil
	}
	if f.PartitionKey == "" {
		return "", domerr.MissingPartitionKey{Format: f.FormatKey.String()}
	}
	if !strings.EqualFold(requested, f.PartitionKey) {
		return "", domerr.NewValidation(
			"partitionKey", "%q does not match with the partition key of format %s (%q)",
			requested, f.FormatKey, f.PartitionKey,
		)
	}
	return f.PartitionKey, nil
}

// CheckSubPartitions verifies sub-partition values can be aligned with sub-partition keys of the format.
func (f *Format) CheckSubPartitions(values SubPartitionValues) error {
	if n := values.Len(); len(f.SubPartitionKeys) < n {
		return domerr.NewValidation(
			"subPartitionValues", "format %s declares %d sub-partition keys, but %d values are given",
			f.FormatKey, len(f.SubPartitionKeys), n,
		)
	}
	return nil
}
