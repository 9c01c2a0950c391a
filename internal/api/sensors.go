package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"
)

func registerSensorEndpoints(rest *echo.Echo) {
	group := rest.Group("/sensor")

	group.GET("/", getSensors)
	// sensor ids contain a slash, match the rest of the path
	group.GET("/*", getSensor)
}

// returns the latest readings of all sensors
func getSensors(c echo.Context) error {
	data := reprint.This(sensorRegistry.SampleAll())
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getSensor(c echo.Context) error {
	id := pathId(c)
	for _, reading := range sensorRegistry.SampleAll() {
		if reading.Id == id {
			return c.JSONPretty(http.StatusOK, reading, indentationChar)
		}
	}
	return returnNotFound(c, id)
}
