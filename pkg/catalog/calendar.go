package catalog

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/opst/dmcatalog/pkg/domain"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

func groupAttr(name string) attribute.KeyValue {
	return attribute.String("dmcatalog.group", name)
}

func (s *Service) CreateGroup(ctx context.Context, name string, values []string) (_ domain.PartitionKeyGroup, err error) {
	ctx, end := s.observe(ctx, "CreateGroup", groupAttr(name))
	defer func() { end(&err) }()

	name = strings.TrimSpace(name)
	if err := domain.ValidateGroupName(name); err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	norm, err := domain.NormalizeExpectedValues(values)
	if err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	g, err := s.calendar.CreateGroup(ctx, name, norm)
	if err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	s.logger.Infof("partition key group created: %s (%d values)", g.Name, len(g.ExpectedValues))
	return g, nil
}

func (s *Service) GetGroup(ctx context.Context, name string) (_ domain.PartitionKeyGroup, err error) {
	ctx, end := s.observe(ctx, "GetGroup", groupAttr(name))
	defer func() { end(&err) }()

	name = strings.TrimSpace(name)
	if err := domain.ValidateGroupName(name); err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	return s.calendar.GetGroup(ctx, name)
}

func (s *Service) DeleteGroup(ctx context.Context, name string) (err error) {
	ctx, end := s.observe(ctx, "DeleteGroup", groupAttr(name))
	defer func() { end(&err) }()

	name = strings.TrimSpace(name)
	if err := domain.ValidateGroupName(name); err != nil {
		return err
	}
	if err := s.calendar.DeleteGroup(ctx, name); err != nil {
		return err
	}
	s.logger.Infof("partition key group deleted: %s", name)
	return nil
}

func (s *Service) AddExpectedValues(ctx context.Context, name string, values []string) (_ domain.PartitionKeyGroup, err error) {
	ctx, end := s.observe(ctx, "AddExpectedValues", groupAttr(name))
	defer func() { end(&err) }()

	name = strings.TrimSpace(name)
	if err := domain.ValidateGroupName(name); err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	norm, err := domain.NormalizeExpectedValues(values)
	if err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	if len(norm) == 0 {
		return domain.PartitionKeyGroup{}, domerr.NewValidation("expectedPartitionValues", "must be specified")
	}
	return s.calendar.AddExpectedValues(ctx, name, norm)
}

func (s *Service) RemoveExpectedValues(ctx context.Context, name string, values []string) (_ domain.PartitionKeyGroup, err error) {
	ctx, end := s.observe(ctx, "RemoveExpectedValues", groupAttr(name))
	defer func() { end(&err) }()

	name = strings.TrimSpace(name)
	if err := domain.ValidateGroupName(name); err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	norm, err := domain.NormalizeExpectedValues(values)
	if err != nil {
		return domain.PartitionKeyGroup{}, err
	}
	if len(norm) == 0 {
		return domain.PartitionKeyGroup{}, domerr.NewValidation("expectedPartitionValues", "must be specified")
	}
	return s.calendar.RemoveExpectedValues(ctx, name, norm)
}

// ExpectedValues returns expected values of the group in the range.
func (s *Service) ExpectedValues(ctx context.Context, name string, r domain.PartitionRange) (_ []string, err error) {
	ctx, end := s.observe(ctx, "ExpectedValues", groupAttr(name))
	defer func() { end(&err) }()

	name = strings.TrimSpace(name)
	if err := domain.ValidateGroupName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.Start) == "" || strings.TrimSpace(r.End) == "" {
		return nil, domerr.NewValidation("partitionValueRange", "start and end should be specified")
	}
	return s.calendar.ExpectedValuesInRange(ctx, name, r)
}
