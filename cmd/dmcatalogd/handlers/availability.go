package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apidata "github.com/opst/dmcatalog/pkg/api/types/data"
	apierr "github.com/opst/dmcatalog/pkg/api/types/errors"
	"github.com/opst/dmcatalog/pkg/catalog"
	"github.com/opst/dmcatalog/pkg/domain"
)

func PostAvailabilityHandler(svc AvailabilityService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apidata.AvailabilityRequest](c)
		if err != nil {
			return err
		}
		req, err := body.Domain()
		if err != nil {
			return apierr.FromDomain(err)
		}

		a, err := svc.CheckAvailability(ctx, req)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apidata.ComposeAvailability(a))
	}
}

func PostAvailabilityCollectionHandler(svc AvailabilityService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apidata.AvailabilityCollectionRequest](c)
		if err != nil {
			return err
		}
		reqs := make([]domain.AvailabilityRequest, 0, len(body.Requests))
		for _, r := range body.Requests {
			req, err := r.Domain()
			if err != nil {
				return apierr.FromDomain(err)
			}
			reqs = append(reqs, req)
		}

		col, err := svc.CheckAvailabilityCollection(ctx, reqs)
		if err != nil {
			return apierr.FromDomain(err)
		}

		resp := apidata.AvailabilityCollection{
			IsAllDataAvailable: col.IsAllDataAvailable,
			Responses:          make([]apidata.Availability, 0, len(col.Results)),
		}
		for _, a := range col.Results {
			resp.Responses = append(resp.Responses, apidata.ComposeAvailability(a))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// GetKeyPrefixHandler responds the key prefix of Data.
//
// Query parameters "businessObjectDataVersion", "partitionKey" and "createNewVersion" are optional.
func GetKeyPrefixHandler(svc AvailabilityService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		format, err := queryFormatKey(c)
		if err != nil {
			return apierr.FromDomain(err)
		}
		version, err := queryInt(c, "businessObjectDataVersion")
		if err != nil {
			return apierr.FromDomain(err)
		}
		createNewVersion, err := queryBool(c, "createNewVersion")
		if err != nil {
			return apierr.FromDomain(err)
		}

		prefix, err := svc.KeyPrefix(ctx, catalog.KeyPrefixRequest{
			Format:             format,
			PartitionKey:       c.QueryParam("partitionKey"),
			PartitionValue:     c.QueryParam("partitionValue"),
			SubPartitionValues: querySubPartitionValues(c),
			Version:            version,
			CreateNewVersion:   createNewVersion,
		})
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apidata.KeyPrefix{KeyPrefix: prefix})
	}
}
