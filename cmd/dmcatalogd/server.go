package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opst/dmcatalog/cmd/dmcatalogd/handlers"
	"github.com/opst/dmcatalog/pkg/catalog"
	"github.com/opst/dmcatalog/pkg/notification"
)

var API_ROOT = "/api"

func api(subpath string) string {
	if !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	return fmt.Sprintf("%s/%s", API_ROOT, subpath)
}

// parseLogLevel maps loglevel names to gommon levels.
//
// The second return value is false for unknown names, with WARN.
func parseLogLevel(loglevel string) (log.Lvl, bool) {
	switch strings.ToLower(loglevel) {
	case "debug":
		return log.DEBUG, true
	case "info":
		return log.INFO, true
	case "warn", "":
		return log.WARN, true
	case "error":
		return log.ERROR, true
	case "off":
		return log.OFF, true
	default:
		return log.WARN, false
	}
}

// newLogger returns a logger with the prefix, at the loglevel.
func newLogger(prefix string, loglevel string) *log.Logger {
	logger := log.New(prefix)
	lvl, ok := parseLogLevel(loglevel)
	logger.SetLevel(lvl)
	if !ok {
		logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
	return logger
}

func BuildServer(
	svc *catalog.Service,
	notifier notification.Notifier,
	gatherer prometheus.Gatherer,
	loglevel string,
) *echo.Echo {

	e := echo.New()
	e.HideBanner = true

	lvl, ok := parseLogLevel(loglevel)
	e.Logger.SetLevel(lvl)
	if !ok {
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}

	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())

	// logging for server-side latency.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			meth := c.Request().Method
			path := c.Request().URL
			BEGIN := time.Now()
			c.Logger().Infof(
				"< request @[%s] %s %s", BEGIN, meth, path,
			)

			var err error

			defer func() {
				END := time.Now()
				c.Logger().Infof(
					"> response @[%s] status = %d (for request @[%s] %s %s) in %v / error = %+v",
					END, c.Response().Status, BEGIN, meth, path, END.Sub(BEGIN), err,
				)
			}()

			err = next(c)
			return err
		}
	})

	e.POST(api("formats"), handlers.PostFormatHandler(svc))
	e.GET(api("formats"), handlers.GetFormatsHandler(svc))

	e.POST(api("groups"), handlers.PostGroupHandler(svc))
	e.GET(api("groups/:group"), handlers.GetGroupHandler(svc, "group"))
	e.DELETE(api("groups/:group"), handlers.DeleteGroupHandler(svc, "group"))
	e.POST(api("groups/:group/values"), handlers.PostExpectedValuesHandler(svc, "group"))
	e.DELETE(api("groups/:group/values"), handlers.DeleteExpectedValuesHandler(svc, "group"))
	e.GET(api("groups/:group/values"), handlers.GetExpectedValuesHandler(svc, "group"))

	e.POST(api("data"), handlers.PostDataHandler(svc, notifier))
	e.GET(api("data"), handlers.GetDataHandler(svc))
	e.DELETE(api("data"), handlers.DeleteDataHandler(svc, notifier))
	e.GET(api("data/versions"), handlers.GetVersionsHandler(svc))
	e.PUT(api("data/status"), handlers.PutStatusHandler(svc, notifier))
	e.POST(api("data/parents"), handlers.PostParentsHandler(svc))
	e.PUT(api("data/attributes"), handlers.PutAttributesHandler(svc))
	e.DELETE(api("data/attributes"), handlers.DeleteAttributesHandler(svc))
	e.POST(api("data/storageUnits"), handlers.PostStorageUnitHandler(svc))

	e.POST(api("data/availability"), handlers.PostAvailabilityHandler(svc))
	e.POST(api("data/availability/collection"), handlers.PostAvailabilityCollectionHandler(svc))
	e.GET(api("data/keyprefix"), handlers.GetKeyPrefixHandler(svc))

	e.GET("/metrics/", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return e
}
