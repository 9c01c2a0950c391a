package channel

import (
	"fmt"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/hwmon"
	"github.com/spf13/cobra"
)

var channelId string

var Command = &cobra.Command{
	Use:              "channel",
	Short:            "Fan channel related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&channelId,
		"id", "i",
		"",
		"Channel ID as printed by 'fan-control detect'",
	)
	_ = Command.MarkPersistentFlagRequired("id")
}

func getChannel(id string) (channels.Channel, error) {
	configuration.LoadConfig()

	registry := hwmon.NewChannelRegistry(configuration.CurrentConfig.HwMonPath)
	if err := registry.Discover(); err != nil {
		return nil, err
	}

	channel, ok := registry.GetChannel(id)
	if !ok {
		return nil, fmt.Errorf("no channel with id found: %s", id)
	}
	return channel, nil
}
