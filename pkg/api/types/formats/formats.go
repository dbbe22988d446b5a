package formats

import (
	"github.com/opst/dmcatalog/pkg/domain"
)

// Key identifies a format.
type Key struct {
	Namespace  string `json:"namespace"`
	Definition string `json:"businessObjectDefinitionName"`
	Usage      string `json:"businessObjectFormatUsage"`
	FileType   string `json:"businessObjectFormatFileType"`
	Version    int    `json:"businessObjectFormatVersion"`
}

func (k Key) Domain() domain.FormatKey {
	return domain.FormatKey{
		Namespace:  k.Namespace,
		Definition: k.Definition,
		Usage:      k.Usage,
		FileType:   k.FileType,
		Version:    k.Version,
	}
}

func ComposeKey(k domain.FormatKey) Key {
	return Key{
		Namespace:  k.Namespace,
		Definition: k.Definition,
		Usage:      k.Usage,
		FileType:   k.FileType,
		Version:    k.Version,
	}
}

type Format struct {
	Key

	PartitionKey      string   `json:"partitionKey"`
	SubPartitionKeys  []string `json:"subPartitionKeys"`
	PartitionKeyGroup string   `json:"partitionKeyGroup,omitempty"`
	Description       string   `json:"description,omitempty"`
}

func (f Format) Domain() domain.Format {
	return domain.Format{
		FormatKey:         f.Key.Domain(),
		PartitionKey:      f.PartitionKey,
		SubPartitionKeys:  f.SubPartitionKeys,
		PartitionKeyGroup: f.PartitionKeyGroup,
		Description:       f.Description,
	}
}

func ComposeFormat(f domain.Format) Format {
	subKeys := f.SubPartitionKeys
	if subKeys == nil {
		subKeys = []string{}
	}
	return Format{
		Key:               ComposeKey(f.FormatKey),
		PartitionKey:      f.PartitionKey,
		SubPartitionKeys:  subKeys,
		PartitionKeyGroup: f.PartitionKeyGroup,
		Description:       f.Description,
	}
}
