package sensor

import (
	"fmt"

	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/hwmon"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var sensorId string

var Command = &cobra.Command{
	Use:              "sensor",
	Short:            "Sensor related commands",
	Long:             ``,
	TraverseChildren: true,
	Args:             cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		configuration.LoadConfig()

		registry := hwmon.NewSensorRegistry(configuration.CurrentConfig.HwMonPath)
		if err := registry.Discover(); err != nil {
			return err
		}

		sensor, ok := registry.GetSensor(sensorId)
		if !ok {
			return fmt.Errorf("no sensor with id found: %s", sensorId)
		}

		value, err := sensor.GetValue()
		if err != nil {
			return err
		}
		fmt.Printf("%.1f", value)
		return nil
	},
}

func init() {
	Command.PersistentFlags().StringVarP(
		&sensorId,
		"id", "i",
		"",
		"Sensor ID as printed by 'fan-control detect'",
	)
	_ = Command.MarkPersistentFlagRequired("id")
}
