package channel

import (
	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/persistence"
	"github.com/loislo/fan-control/internal/ui"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Hand a channel back to the firmware and delete its calibration data",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := getChannel(channelId)
		if err != nil {
			return err
		}

		if err := channel.SetControlMode(channels.ControlModeAutomatic); err != nil {
			return err
		}

		dbPath := configuration.CurrentConfig.DbPath
		ui.Info("Using persistence at: %s", dbPath)

		p := persistence.NewPersistence(dbPath)
		err = p.DeleteCalibrationResults(channel.GetId())

		if err == nil {
			ui.Success("Done!")
		}

		return err
	},
}

func init() {
	Command.AddCommand(resetCmd)
}
