// Package workflow adapts catalog operations as tasks of workflow engines.
//
// Tasks receive string-typed parameters and set output variables.
package workflow

import (
	"context"

	"github.com/opst/dmcatalog/pkg/catalog"
	"github.com/opst/dmcatalog/pkg/domain"
)

const (
	// output of CheckAvailability: bool
	VariableIsAllDataAvailable = "isAllDataAvailable"

	// output of GetKeyPrefix: string
	VariableKeyPrefix = "keyPrefix"

	// set by Run when a task fails: string
	VariableErrorMessage = "taskErrorMessage"
)

type Task interface {
	Execute(context.Context, Params) (Variables, error)
}

// Run executes the task.
//
// When the task fails, returned variables have VariableErrorMessage.
func Run(ctx context.Context, task Task, params Params) (Variables, error) {
	vars, err := task.Execute(ctx, params)
	if err != nil {
		return Variables{VariableErrorMessage: err.Error()}, err
	}
	return vars, nil
}

type AvailabilityChecker interface {
	CheckAvailability(context.Context, domain.AvailabilityRequest) (domain.Availability, error)
}

type KeyPrefixer interface {
	KeyPrefix(context.Context, catalog.KeyPrefixRequest) (string, error)
}

// formatKey reads parameters identifying a format.
//
// versionLabel is the name of format version in error messages.
func formatKey(p Params, versionLabel string) (domain.FormatKey, error) {
	version, err := p.Int("businessObjectFormatVersion", versionLabel, true)
	if err != nil {
		return domain.FormatKey{}, err
	}
	return domain.FormatKey{
		Namespace:  p.String("namespace"),
		Definition: p.String("businessObjectDefinitionName"),
		Usage:      p.String("businessObjectFormatUsage"),
		FileType:   p.String("businessObjectFormatFileType"),
		Version:    *version,
	}, nil
}

type checkAvailability struct {
	checker AvailabilityChecker
}

// CheckAvailability returns a task checking availability of partitions.
//
// Parameters are: namespace, businessObjectDefinitionName, businessObjectFormatUsage,
// businessObjectFormatFileType, businessObjectFormatVersion, partitionKey,
// partitionValues (delimited list) or startPartitionValue and endPartitionValue,
// and businessObjectDataVersion.
//
// It sets VariableIsAllDataAvailable.
func CheckAvailability(checker AvailabilityChecker) Task {
	return checkAvailability{checker: checker}
}

func (t checkAvailability) Execute(ctx context.Context, p Params) (Variables, error) {
	format, err := formatKey(p, "BusinessObjectFormatVersion")
	if err != nil {
		return nil, err
	}
	version, err := p.Int("businessObjectDataVersion", "BusinessObjectDataVersion", false)
	if err != nil {
		return nil, err
	}

	req := domain.AvailabilityRequest{
		Format:       format,
		PartitionKey: p.String("partitionKey"),
		Values:       p.List("partitionValues"),
		Version:      version,
	}
	start, end := p.String("startPartitionValue"), p.String("endPartitionValue")
	if start != "" || end != "" {
		req.Range = &domain.PartitionRange{Start: start, End: end}
	}

	a, err := t.checker.CheckAvailability(ctx, req)
	if err != nil {
		return nil, err
	}
	return Variables{VariableIsAllDataAvailable: a.Complete()}, nil
}

type getKeyPrefix struct {
	prefixer KeyPrefixer
}

// GetKeyPrefix returns a task deriving a key prefix of Data.
//
// Parameters are: namespace, businessObjectDefinitionName, businessObjectFormatUsage,
// businessObjectFormatFileType, businessObjectFormatVersion, partitionKey, partitionValue,
// subPartitionValues (delimited list), businessObjectDataVersion and createNewVersion.
//
// It sets VariableKeyPrefix.
func GetKeyPrefix(prefixer KeyPrefixer) Task {
	return getKeyPrefix{prefixer: prefixer}
}

func (t getKeyPrefix) Execute(ctx context.Context, p Params) (Variables, error) {
	format, err := formatKey(p, "businessObjectFormatVersion")
	if err != nil {
		return nil, err
	}
	version, err := p.Int("businessObjectDataVersion", "businessObjectDataVersion", false)
	if err != nil {
		return nil, err
	}
	createNewVersion, err := p.Bool("createNewVersion", "createNewVersion", false)
	if err != nil {
		return nil, err
	}

	prefix, err := t.prefixer.KeyPrefix(ctx, catalog.KeyPrefixRequest{
		Format:             format,
		PartitionKey:       p.String("partitionKey"),
		PartitionValue:     p.String("partitionValue"),
		SubPartitionValues: p.List("subPartitionValues"),
		Version:            version,
		CreateNewVersion:   createNewVersion,
	})
	if err != nil {
		return nil, err
	}
	return Variables{VariableKeyPrefix: prefix}, nil
}
