package channel

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var dutyCmd = &cobra.Command{
	Use:   "duty",
	Short: "Get/Set the current duty value of a channel ([0..255])",
	Long:  ``,
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		channel, err := getChannel(channelId)
		if err != nil {
			return err
		}

		if len(args) > 0 {
			duty, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return channel.SetDuty(duty)
		}

		duty, err := channel.GetDuty()
		if err != nil {
			return err
		}
		fmt.Printf("%d", duty)
		return nil
	},
}

func init() {
	Command.AddCommand(dutyCmd)
}
