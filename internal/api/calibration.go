package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func registerCalibrationEndpoints(rest *echo.Echo) {
	group := rest.Group("/calibration")

	group.GET("/", getCalibrationResults)
	// channel ids contain a slash, match the rest of the path
	group.GET("/*", getCalibrationResult)
}

// returns the stored calibration results of all channels
func getCalibrationResults(c echo.Context) error {
	data, err := database.LoadAllCalibrationResults()
	if err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getCalibrationResult(c echo.Context) error {
	id := pathId(c)
	data, err := database.LoadCalibrationResults(id)
	if err != nil {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}
