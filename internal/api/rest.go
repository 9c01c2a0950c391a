package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/loislo/fan-control/internal/control"
	"github.com/loislo/fan-control/internal/hwmon"
	"github.com/loislo/fan-control/internal/persistence"
)

const (
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// backing state served by the endpoints, set once at daemon startup
var (
	sensorRegistry  *hwmon.SensorRegistry
	channelRegistry *hwmon.ChannelRegistry
	controlLoop     *control.Loop
	database        persistence.Persistence
)

// Configure wires the REST service to the running daemon's state
func Configure(
	sensors *hwmon.SensorRegistry,
	channels *hwmon.ChannelRegistry,
	loop *control.Loop,
	db persistence.Persistence,
) {
	sensorRegistry = sensors
	channelRegistry = channels
	controlLoop = loop
	database = db
}

func CreateRestService() *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())
	echoRest.Use(middleware.Recover())

	echoRest.GET("/alive/", isAlive)
	echoRest.GET("/metrics/", echoprometheus.NewHandler())

	registerSensorEndpoints(echoRest)
	registerChannelEndpoints(echoRest)
	registerControlEndpoints(echoRest)
	registerCalibrationEndpoints(echoRest)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// pathId extracts an id from a wildcard route, trimming the trailing
// slash added by the AddTrailingSlash middleware
func pathId(c echo.Context) string {
	return strings.TrimSuffix(c.Param("*"), "/")
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}
