package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"
)

func registerControlEndpoints(rest *echo.Echo) {
	group := rest.Group("/control")

	group.GET("/", getControlStatus)
}

// returns the result of the most recent control loop iteration
func getControlStatus(c echo.Context) error {
	if controlLoop == nil {
		return c.JSONPretty(http.StatusServiceUnavailable, &Result{
			Name:    "Not running",
			Message: "The control loop is not active",
		}, indentationChar)
	}

	snapshot, ok := controlLoop.LastSnapshot()
	if !ok {
		return c.JSONPretty(http.StatusOK, &Result{
			Name:    "Starting",
			Message: "No iteration has completed yet",
		}, indentationChar)
	}

	data := reprint.This(snapshot)
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}
