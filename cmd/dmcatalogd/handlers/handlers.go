// Package handlers serves catalog operations over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/opst/dmcatalog/pkg/api/types/errors"
	"github.com/opst/dmcatalog/pkg/catalog"
	"github.com/opst/dmcatalog/pkg/domain"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
)

type DataService interface {
	Register(context.Context, domain.DataRegistration) (domain.Data, error)
	GetData(context.Context, domain.DataQuery) (domain.Data, error)
	Versions(context.Context, kdata.VersionsQuery) ([]domain.Data, error)
	SetStatus(context.Context, domain.DataKey, domain.Status) (domain.Data, error)
	AddParents(context.Context, domain.DataKey, []domain.DataKey) (domain.Data, error)
	PutAttributes(context.Context, domain.DataKey, []domain.Attribute) (domain.Data, error)
	RemoveAttributes(context.Context, domain.DataKey, []string) (domain.Data, error)
	AddStorageUnit(context.Context, domain.DataKey, domain.StorageUnit) (domain.Data, error)
	Delete(context.Context, domain.DataKey) (domain.Data, error)
}

type AvailabilityService interface {
	CheckAvailability(context.Context, domain.AvailabilityRequest) (domain.Availability, error)
	CheckAvailabilityCollection(context.Context, []domain.AvailabilityRequest) (catalog.AvailabilityCollection, error)
	KeyPrefix(context.Context, catalog.KeyPrefixRequest) (string, error)
}

type FormatService interface {
	RegisterFormat(context.Context, domain.Format) (domain.Format, error)
	GetFormat(context.Context, domain.FormatKey) (domain.Format, error)
	FindFormats(context.Context, kformat.FindQuery) ([]domain.Format, error)
}

type GroupService interface {
	CreateGroup(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error)
	GetGroup(ctx context.Context, name string) (domain.PartitionKeyGroup, error)
	DeleteGroup(ctx context.Context, name string) error
	AddExpectedValues(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error)
	RemoveExpectedValues(ctx context.Context, name string, values []string) (domain.PartitionKeyGroup, error)
	ExpectedValues(ctx context.Context, name string, r domain.PartitionRange) ([]string, error)
}

var (
	_ DataService         = &catalog.Service{}
	_ AvailabilityService = &catalog.Service{}
	_ FormatService       = &catalog.Service{}
	_ GroupService        = &catalog.Service{}
)

// decode reads the request body as JSON.
//
// Unknown fields are rejected.
func decode[T any](c echo.Context) (T, error) {
	var body T
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		return body, apierr.NewErrorMessage(
			http.StatusBadRequest,
			"format error",
			apierr.WithAdvice(err.Error()),
			apierr.WithError(err),
		)
	}
	return body, nil
}

// queryInt parses a query parameter as an integer.
//
// Returns nil if the parameter is not given.
func queryInt(c echo.Context, name string) (*int, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, domerr.NewValidation(name, "must be a valid integer value: %q", v)
	}
	return &i, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, domerr.NewValidation(name, "must be a valid boolean value: %q", v)
	}
	return b, nil
}

func queryFormatKey(c echo.Context) (domain.FormatKey, error) {
	version, err := queryInt(c, "businessObjectFormatVersion")
	if err != nil {
		return domain.FormatKey{}, err
	}
	if version == nil {
		return domain.FormatKey{}, domerr.NewValidation("businessObjectFormatVersion", "must be specified")
	}
	return domain.FormatKey{
		Namespace:  c.QueryParam("namespace"),
		Definition: c.QueryParam("businessObjectDefinitionName"),
		Usage:      c.QueryParam("businessObjectFormatUsage"),
		FileType:   c.QueryParam("businessObjectFormatFileType"),
		Version:    *version,
	}, nil
}

// subPartitionValues are given as repeated "subPartitionValues" query parameters.
func querySubPartitionValues(c echo.Context) []string {
	return c.QueryParams()["subPartitionValues"]
}

func queryFamily(c echo.Context) (domain.Family, error) {
	format, err := queryFormatKey(c)
	if err != nil {
		return domain.Family{}, err
	}
	return domain.NewFamily(format, c.QueryParam("partitionValue"), querySubPartitionValues(c)...)
}

func queryDataKey(c echo.Context) (domain.DataKey, error) {
	family, err := queryFamily(c)
	if err != nil {
		return domain.DataKey{}, err
	}
	version, err := queryInt(c, "businessObjectDataVersion")
	if err != nil {
		return domain.DataKey{}, err
	}
	if version == nil {
		return domain.DataKey{}, domerr.NewValidation("businessObjectDataVersion", "must be specified")
	}
	dk := domain.DataKey{Family: family, Version: *version}
	if err := dk.Validate(); err != nil {
		return domain.DataKey{}, err
	}
	return dk, nil
}
