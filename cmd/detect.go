package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/loislo/fan-control/cmd/global"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/hwmon"
	"github.com/loislo/fan-control/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect devices",
	Long:  `Detects all fan channels and temperature sensors and prints them as a list`,
	Run: func(cmd *cobra.Command, args []string) {
		configuration.LoadConfig()

		devices, err := hwmon.GetDevices(configuration.CurrentConfig.HwMonPath)
		if err != nil {
			ui.Fatal("Cannot scan %s: %v", configuration.CurrentConfig.HwMonPath, err)
		}

		// === Print detected devices ===
		tableConfig := &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		}

		for _, device := range devices {
			ui.Printfln("> %s", device.Name)

			var channelRows [][]string
			for _, channel := range device.Channels {
				dutyText := "N/A"
				if duty, err := channel.GetDuty(); err == nil {
					dutyText = strconv.Itoa(duty)
				}

				rpmText := "N/A"
				if channel.SupportsRpmSensor() {
					if rpm, err := channel.GetRpm(); err == nil {
						rpmText = strconv.Itoa(rpm)
					}
				}

				modeText := "N/A"
				if channel.SupportsElectricalMode() {
					if mode, err := channel.GetElectricalMode(); err == nil {
						modeText = mode.String()
					}
				}

				enableText := "unknown"
				if enable, err := channel.GetControlMode(); err == nil {
					enableText = enable.String()
				}

				channelRows = append(channelRows, []string{
					"", strconv.Itoa(channel.Index), channel.Label, rpmText, dutyText, modeText, enableText,
				})
			}
			var channelHeaders = []string{"Fans   ", "Index", "Label", "RPM", "Duty", "Mode", "Control"}

			channelTable := table.Table{
				Headers: channelHeaders,
				Rows:    channelRows,
			}

			var sensorRows [][]string
			for _, sensor := range device.Sensors {
				valueText := "N/A"
				if value, err := sensor.GetValue(); err == nil {
					valueText = fmt.Sprintf("%.1f°C", value)
				}

				_, file := filepath.Split(sensor.Input)
				labelAndFile := fmt.Sprintf("%s (%s)", sensor.Label, file)

				sensorRows = append(sensorRows, []string{
					"", strconv.Itoa(sensor.Index), labelAndFile, valueText, sensor.GetRole().String(),
				})
			}
			var sensorHeaders = []string{"Sensors", "Index", "Label", "Value", "Role"}

			sensorTable := table.Table{
				Headers: sensorHeaders,
				Rows:    sensorRows,
			}

			tables := []table.Table{channelTable, sensorTable}

			for idx, tab := range tables {
				if tab.Rows == nil {
					continue
				}
				var buf bytes.Buffer
				tableErr := tab.WriteTable(&buf, tableConfig)
				if tableErr != nil {
					ui.Fatal("Error printing table: %v", tableErr)
				}
				tableString := buf.String()
				if idx < (len(tables) - 1) {
					ui.Printf(tableString)
				} else {
					ui.Printfln(tableString)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
