package catalog

import (
	"context"
	"fmt"

	"github.com/opst/dmcatalog/pkg/domain"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

type KeyPrefixRequest struct {
	Format domain.FormatKey

	// Empty means the format's one.
	PartitionKey   string
	PartitionValue string

	SubPartitionValues []string

	// nil means the version is decided by the catalog.
	Version *int

	// When Version is nil and the family has Data already,
	// the next version is used if this is true. Otherwise, it is a conflict.
	CreateNewVersion bool
}

// KeyPrefix derives the storage location of Data.
//
// When the version is decided by the catalog, it is not reserved.
// A registration following this may get another version, when other registrations race.
func (s *Service) KeyPrefix(ctx context.Context, req KeyPrefixRequest) (_ string, err error) {
	ctx, end := s.observe(ctx, "KeyPrefix", formatAttr(req.Format))
	defer func() { end(&err) }()

	if err := req.Format.Validate(); err != nil {
		return "", err
	}
	f, err := s.formats.Get(ctx, req.Format)
	if err != nil {
		return "", err
	}
	pkey, err := f.ResolvePartitionKey(req.PartitionKey)
	if err != nil {
		return "", err
	}
	family, err := domain.NewFamily(req.Format, req.PartitionValue, req.SubPartitionValues...)
	if err != nil {
		return "", err
	}
	if err := f.CheckSubPartitions(family.SubPartitionValues); err != nil {
		return "", err
	}

	version := domain.InitialVersion
	if req.Version != nil {
		version = *req.Version
	} else {
		next, err := s.data.NextVersion(ctx, family)
		if err != nil {
			return "", err
		}
		switch {
		case next == domain.InitialVersion:
		case req.CreateNewVersion:
			version = next
		default:
			return "", domerr.Conflict{
				Table:    "data",
				Identity: fmt.Sprintf("initial version of %s", family),
			}
		}
	}

	return domain.KeyPrefix(domain.KeyPrefixSpec{
		Format:             f.FormatKey,
		PartitionKey:       pkey,
		PartitionValue:     family.PartitionValue,
		SubPartitionKeys:   f.SubPartitionKeys,
		SubPartitionValues: family.SubPartitionValues,
		Version:            version,
	})
}
