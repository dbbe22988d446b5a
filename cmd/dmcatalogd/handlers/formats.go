package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/opst/dmcatalog/pkg/api/types/errors"
	apiformats "github.com/opst/dmcatalog/pkg/api/types/formats"
	kformat "github.com/opst/dmcatalog/pkg/domain/format/db"
)

func PostFormatHandler(svc FormatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apiformats.Format](c)
		if err != nil {
			return err
		}

		f, err := svc.RegisterFormat(ctx, body.Domain())
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apiformats.ComposeFormat(f))
	}
}

// GetFormatsHandler responds formats.
//
// When all of key fields are given as query parameters, the format is responded.
// Otherwise, formats matching given fields are responded as a list.
func GetFormatsHandler(svc FormatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if c.QueryParam("businessObjectFormatVersion") != "" {
			key, err := queryFormatKey(c)
			if err != nil {
				return apierr.FromDomain(err)
			}
			f, err := svc.GetFormat(ctx, key)
			if err != nil {
				return apierr.FromDomain(err)
			}
			return c.JSON(http.StatusOK, apiformats.ComposeFormat(f))
		}

		found, err := svc.FindFormats(ctx, kformat.FindQuery{
			Namespace:  c.QueryParam("namespace"),
			Definition: c.QueryParam("businessObjectDefinitionName"),
			Usage:      c.QueryParam("businessObjectFormatUsage"),
			FileType:   c.QueryParam("businessObjectFormatFileType"),
		})
		if err != nil {
			return apierr.FromDomain(err)
		}
		resp := make([]apiformats.Format, 0, len(found))
		for _, f := range found {
			resp = append(resp, apiformats.ComposeFormat(f))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

