package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/opst/dmcatalog/pkg/api/types/errors"
	apigroups "github.com/opst/dmcatalog/pkg/api/types/groups"
	"github.com/opst/dmcatalog/pkg/domain"
)

func PostGroupHandler(svc GroupService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apigroups.Group](c)
		if err != nil {
			return err
		}

		g, err := svc.CreateGroup(ctx, body.Name, body.ExpectedValues)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apigroups.ComposeGroup(g))
	}
}

func GetGroupHandler(svc GroupService, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		g, err := svc.GetGroup(ctx, c.Param(paramKey))
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apigroups.ComposeGroup(g))
	}
}

func DeleteGroupHandler(svc GroupService, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if err := svc.DeleteGroup(ctx, c.Param(paramKey)); err != nil {
			return apierr.FromDomain(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func PostExpectedValuesHandler(svc GroupService, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apigroups.ExpectedValues](c)
		if err != nil {
			return err
		}

		g, err := svc.AddExpectedValues(ctx, c.Param(paramKey), body.Values)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apigroups.ComposeGroup(g))
	}
}

func DeleteExpectedValuesHandler(svc GroupService, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apigroups.ExpectedValues](c)
		if err != nil {
			return err
		}

		g, err := svc.RemoveExpectedValues(ctx, c.Param(paramKey), body.Values)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apigroups.ComposeGroup(g))
	}
}

// GetExpectedValuesHandler responds expected values in the range
// given by query parameters "start" and "end".
func GetExpectedValuesHandler(svc GroupService, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		values, err := svc.ExpectedValues(ctx, c.Param(paramKey), domain.PartitionRange{
			Start: c.QueryParam("start"),
			End:   c.QueryParam("end"),
		})
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apigroups.ExpectedValues{Values: values})
	}
}
