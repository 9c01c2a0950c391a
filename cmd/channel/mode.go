package channel

import (
	"fmt"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode [DC|PWM]",
	Short: "Get/Set the electrical mode of a channel",
	Long:  ``,
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		channel, err := getChannel(channelId)
		if err != nil {
			return err
		}

		if len(args) > 0 {
			switch args[0] {
			case "DC", "dc":
				return channel.SetElectricalMode(channels.ElectricalModeDC)
			case "PWM", "pwm":
				return channel.SetElectricalMode(channels.ElectricalModePWM)
			}
			return fmt.Errorf("unknown electrical mode: %s", args[0])
		}

		mode, err := channel.GetElectricalMode()
		if err != nil {
			return err
		}
		fmt.Printf("%s", mode)
		return nil
	},
}

func init() {
	Command.AddCommand(modeCmd)
}
