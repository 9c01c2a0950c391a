package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loislo/fan-control/internal/channels"
	"github.com/qdm12/reprint"
)

func registerChannelEndpoints(rest *echo.Echo) {
	group := rest.Group("/channel")

	group.GET("/", getChannels)
	// channel ids contain a slash, match the rest of the path
	group.GET("/*", getChannel)
}

// returns a snapshot of all fan channels
func getChannels(c echo.Context) error {
	data := reprint.This(channelRegistry.Snapshots())
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getChannel(c echo.Context) error {
	id := pathId(c)
	channel, exists := channelRegistry.GetChannel(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, channels.TakeSnapshot(channel), indentationChar)
}
