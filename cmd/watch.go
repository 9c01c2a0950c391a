package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/guptarohit/asciigraph"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/hwmon"
	"github.com/loislo/fan-control/internal/sensors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const watchHistorySize = 60

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch sensors and fans without controlling anything",
	Long:  `Periodically prints all temperatures and fan speeds, read-only and without root`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()
		configuration.LoadConfig()
		config := configuration.CurrentConfig

		sensorRegistry := hwmon.NewSensorRegistry(config.HwMonPath)
		if err := sensorRegistry.Discover(); err != nil {
			return err
		}
		channelRegistry := hwmon.NewChannelRegistry(config.HwMonPath)
		if err := channelRegistry.Discover(); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		go func() {
			_ = keyboard.Listen(func(key keys.Key) (stop bool, err error) {
				if key.Code == keys.CtrlC || key.String() == "q" {
					cancel()
					return true, nil
				}
				if key.Code == keys.Escape {
					return true, nil
				}
				return false, nil
			})
		}()
		defer func() {
			_ = keyboard.SimulateKeyPress(keys.Escape)
		}()

		area, err := pterm.DefaultArea.WithFullscreen().Start()
		if err != nil {
			return err
		}
		defer func() {
			_ = area.Stop()
		}()

		history := map[string][]float64{}
		for ctx.Err() == nil {
			area.Update(renderWatchScreen(sensorRegistry, channelRegistry, history))

			select {
			case <-ctx.Done():
			case <-time.After(config.Control.Interval):
			}
		}
		return nil
	},
}

// renderWatchScreen builds one frame of the watch display
func renderWatchScreen(
	sensorRegistry *hwmon.SensorRegistry,
	channelRegistry *hwmon.ChannelRegistry,
	history map[string][]float64,
) string {
	var sb strings.Builder

	sb.WriteString(pterm.DefaultSection.Sprint("Sensors"))
	for _, reading := range sensorRegistry.SampleAll() {
		appendHistory(history, reading.Id, reading.Celsius)

		marker := " "
		if reading.Role == sensors.RoleControl {
			marker = "*"
		}

		avgText := ""
		if sensor, ok := sensorRegistry.GetSensor(reading.Id); ok {
			avgText = fmt.Sprintf("  (avg %.1f°C)", sensor.GetMovingAvg())
		}
		sb.WriteString(fmt.Sprintf("%s %-40s %6.1f°C%s\n", marker, reading.Label, reading.Celsius, avgText))
	}

	sb.WriteString(pterm.DefaultSection.Sprint("Fans"))
	for _, snapshot := range channelRegistry.Snapshots() {
		rpmText := "N/A"
		if snapshot.Rpm >= 0 {
			rpmText = fmt.Sprintf("%d rpm", snapshot.Rpm)
			appendHistory(history, snapshot.Id, float64(snapshot.Rpm))
		}
		sb.WriteString(fmt.Sprintf("  %-40s duty %3d  %10s  [%s]\n", snapshot.Id, snapshot.Duty, rpmText, snapshot.ControlMode))
	}

	sb.WriteString(pterm.DefaultSection.Sprint("History"))
	ids := make([]string, 0, len(history))
	for id := range history {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		values := history[id]
		if len(values) < 2 {
			continue
		}
		graph := asciigraph.Plot(values, asciigraph.Height(5), asciigraph.Width(80), asciigraph.Caption(id))
		sb.WriteString(graph)
		sb.WriteString("\n\n")
	}

	sb.WriteString(pterm.Gray("q to quit"))
	return sb.String()
}

func appendHistory(history map[string][]float64, id string, value float64) {
	values := append(history[id], value)
	if len(values) > watchHistorySize {
		values = values[len(values)-watchHistorySize:]
	}
	history[id] = values
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
