package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apidata "github.com/opst/dmcatalog/pkg/api/types/data"
	apierr "github.com/opst/dmcatalog/pkg/api/types/errors"
	"github.com/opst/dmcatalog/pkg/domain"
	kdata "github.com/opst/dmcatalog/pkg/domain/data/db"
	"github.com/opst/dmcatalog/pkg/notification"
)

// notify sends the event. Failures are logged, and not returned.
func notify(c echo.Context, notifier notification.Notifier, e notification.Event) {
	if err := notifier.Notify(c.Request().Context(), e); err != nil {
		c.Logger().Warnf("notification of %s (%s) is failed: %s", e.Type, e.Data, err)
	}
}

func PostDataHandler(svc DataService, notifier notification.Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apidata.Registration](c)
		if err != nil {
			return err
		}
		reg, err := body.Domain()
		if err != nil {
			return apierr.FromDomain(err)
		}

		d, err := svc.Register(ctx, reg)
		if err != nil {
			return apierr.FromDomain(err)
		}

		notify(c, notifier, notification.Event{
			Type:       notification.DataRegistered,
			Data:       d.DataKey,
			Status:     d.Status,
			OccurredAt: d.CreatedAt,
		})
		return c.JSON(http.StatusOK, apidata.ComposeDetail(d))
	}
}

// GetDataHandler responds a Data.
//
// Query parameter "businessObjectDataVersion" is optional. Without that, the latest is responded.
func GetDataHandler(svc DataService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		family, err := queryFamily(c)
		if err != nil {
			return apierr.FromDomain(err)
		}
		version, err := queryInt(c, "businessObjectDataVersion")
		if err != nil {
			return apierr.FromDomain(err)
		}

		d, err := svc.GetData(ctx, domain.DataQuery{Family: family, Version: version})
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apidata.ComposeDetail(d))
	}
}

// GetVersionsHandler responds Data of a partition value.
//
// Query parameter "subPartitionValues" narrows the result by prefix.
func GetVersionsHandler(svc DataService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		format, err := queryFormatKey(c)
		if err != nil {
			return apierr.FromDomain(err)
		}
		subs, err := domain.NewSubPartitionValues(querySubPartitionValues(c)...)
		if err != nil {
			return apierr.FromDomain(err)
		}
		version, err := queryInt(c, "businessObjectDataVersion")
		if err != nil {
			return apierr.FromDomain(err)
		}

		found, err := svc.Versions(ctx, kdata.VersionsQuery{
			Format:             format,
			PartitionValue:     c.QueryParam("partitionValue"),
			SubPartitionValues: subs,
			Version:            version,
		})
		if err != nil {
			return apierr.FromDomain(err)
		}

		resp := make([]apidata.Detail, 0, len(found))
		for _, d := range found {
			resp = append(resp, apidata.ComposeDetail(d))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func PutStatusHandler(svc DataService, notifier notification.Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apidata.StatusChange](c)
		if err != nil {
			return err
		}
		key, err := body.Key.Domain()
		if err != nil {
			return apierr.FromDomain(err)
		}
		status, err := domain.AsStatus(body.Status)
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		d, err := svc.SetStatus(ctx, key, status)
		if err != nil {
			return apierr.FromDomain(err)
		}

		e := notification.Event{
			Type:       notification.DataStatusChanged,
			Data:       d.DataKey,
			Status:     d.Status,
			OccurredAt: time.Now(),
		}
		if n := len(d.History); 2 <= n {
			e.OldStatus = d.History[n-2].Status
			e.OccurredAt = d.History[n-1].CreatedAt
		}
		notify(c, notifier, e)
		return c.JSON(http.StatusOK, apidata.ComposeDetail(d))
	}
}

func PostParentsHandler(svc DataService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apidata.ParentsDeclaration](c)
		if err != nil {
			return err
		}
		child, parents, err := body.Domain()
		if err != nil {
			return apierr.FromDomain(err)
		}

		d, err := svc.AddParents(ctx, child, parents)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apidata.ComposeDetail(d))
	}
}

func PutAttributesHandler(svc DataService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apidata.AttributesChange](c)
		if err != nil {
			return err
		}
		key, attrs, err := body.Domain()
		if err != nil {
			return apierr.FromDomain(err)
		}

		d, err := svc.PutAttributes(ctx, key, attrs)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apidata.ComposeDetail(d))
	}
}

// DeleteAttributesHandler removes attributes named by repeated query parameter "name".
func DeleteAttributesHandler(svc DataService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		key, err := queryDataKey(c)
		if err != nil {
			return apierr.FromDomain(err)
		}

		d, err := svc.RemoveAttributes(ctx, key, c.QueryParams()["name"])
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apidata.ComposeDetail(d))
	}
}

func PostStorageUnitHandler(svc DataService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := decode[apidata.StorageUnitAddition](c)
		if err != nil {
			return err
		}
		key, err := body.Key.Domain()
		if err != nil {
			return apierr.FromDomain(err)
		}

		d, err := svc.AddStorageUnit(ctx, key, body.StorageUnit.Domain())
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, apidata.ComposeDetail(d))
	}
}

// DeleteDataHandler deletes a Data physically, and responds the Data as it was.
func DeleteDataHandler(svc DataService, notifier notification.Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		key, err := queryDataKey(c)
		if err != nil {
			return apierr.FromDomain(err)
		}

		d, err := svc.Delete(ctx, key)
		if err != nil {
			return apierr.FromDomain(err)
		}

		notify(c, notifier, notification.Event{
			Type:       notification.DataDeleted,
			Data:       d.DataKey,
			OldStatus:  d.Status,
			OccurredAt: time.Now(),
		})
		return c.JSON(http.StatusOK, apidata.ComposeDetail(d))
	}
}
