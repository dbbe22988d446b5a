package domain

import (
	"fmt"
	"net/url"
	"strings"

	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// KeyPrefixSpec is the input of KeyPrefix.
type KeyPrefixSpec struct {
	Format FormatKey

	PartitionKey   string
	PartitionValue string

	// keys of sub-partitions, in the format's order.
	SubPartitionKeys []string

	// values of sub-partitions. Only given values make segments.
	SubPartitionValues SubPartitionValues

	Version int
}

// escapeSegment makes s usable as one path segment.
//
// "=" is also escaped so that "key=value" segments are not ambiguous.
func escapeSegment(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "=", "%3D")
}

// KeyPrefix derives the storage location of Data.
//
// The form is:
//
//	NAMESPACE/DEFINITION/USAGE/FILETYPE/frmt-vFORMATVERSION/PKEY=PVALUE[/SUBKEY=SUBVALUE...]/data-vVERSION
//
// Each segment is escaped, so "/" and "=" in values do not make extra segments.
// The same KeyPrefixSpec always derives the same prefix, and a change of any value changes the prefix.
func KeyPrefix(spec KeyPrefixSpec) (string, error) {
	if err := spec.Format.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(spec.PartitionKey) == "" {
		return "", domerr.MissingPartitionKey{Format: spec.Format.String()}
	}
	if strings.TrimSpace(spec.PartitionValue) == "" {
		return "", domerr.NewValidation("partitionValue", "must be specified")
	}
	if err := spec.SubPartitionValues.validate(); err != nil {
		return "", err
	}
	subs := spec.SubPartitionValues.Values()
	if len(spec.SubPartitionKeys) < len(subs) {
		return "", domerr.NewValidation(
			"subPartitionValues", "%d values are given for %d sub-partition keys",
			len(subs), len(spec.SubPartitionKeys),
		)
	}
	if spec.Version < InitialVersion {
		return "", domerr.NewValidation("businessObjectDataVersion", "must not be negative: %d", spec.Version)
	}

	segments := []string{
		escapeSegment(spec.Format.Namespace),
		escapeSegment(spec.Format.Definition),
		escapeSegment(spec.Format.Usage),
		escapeSegment(spec.Format.FileType),
		fmt.Sprintf("frmt-v%d", spec.Format.Version),
		escapeSegment(spec.PartitionKey) + "=" + escapeSegment(spec.PartitionValue),
	}
	for i, v := range subs {
		segments = append(
			segments,
			escapeSegment(spec.SubPartitionKeys[i])+"="+escapeSegment(v),
		)
	}
	segments = append(segments, fmt.Sprintf("data-v%d", spec.Version))
	return strings.Join(segments, "/"), nil
}
