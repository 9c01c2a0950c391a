package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/loislo/fan-control/internal/api"
	"github.com/loislo/fan-control/internal/calibrate"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/control"
	"github.com/loislo/fan-control/internal/guard"
	"github.com/loislo/fan-control/internal/hwmon"
	"github.com/loislo/fan-control/internal/persistence"
	"github.com/loislo/fan-control/internal/statistics"
	"github.com/loislo/fan-control/internal/ui"
	"github.com/oklog/run"
)

// RunDaemon discovers the hardware, takes over the configured fan
// channels and runs the control loop until interrupted. Exits non-zero
// when a channel could not be handed back to the firmware.
func RunDaemon() {
	config := configuration.CurrentConfig

	if getProcessOwner() != "root" {
		ui.Fatal("Fan control requires root permissions to be able to modify fan speeds, please run fan-control as root")
	}

	sensorRegistry, channelRegistry := DiscoverHardware(config.HwMonPath)

	selected, err := calibrate.SelectChannels(channelRegistry.Channels(), config.Control.Channels)
	if err != nil {
		ui.Fatal("No controllable fan channels: %v", err)
	}

	g, err := guard.Acquire(selected)
	if err != nil {
		ui.Fatal("Cannot take control of fan channels: %v", err)
	}

	offset := &control.Offset{}
	offset.Set(config.Control.Offset)
	loop := control.NewLoop(config, sensorRegistry, g, offset)

	pers := persistence.NewPersistence(config.DbPath)
	if err := pers.Init(); err != nil {
		ui.Warning("Cannot initialize persistence: %v", err)
	}

	if config.Statistics.Enabled {
		statistics.Register(statistics.NewSensorCollector(sensorRegistry.Sensors()))
		statistics.Register(statistics.NewChannelCollector(channelRegistry.Channels()))
		statistics.Register(statistics.NewControlCollector(loop))
	}

	ctx, cancel := context.WithCancel(context.Background())

	var actors run.Group
	{
		// === control loop
		actors.Add(func() error {
			err := loop.Run(ctx)
			ui.Info("Control loop stopped.")
			return err
		}, func(err error) {
			cancel()
		})
	}
	{
		enabled := config.Api.Enabled
		if enabled {
			// === REST api
			api.Configure(sensorRegistry, channelRegistry, loop, pers)
			server := api.CreateRestService()
			addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)

			actors.Add(func() error {
				if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start REST api (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := server.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping REST api: %v", err)
				} else {
					ui.Info("REST api stopped.")
				}
			})
		}
	}
	{
		if config.KeyboardControl {
			// === live offset keys
			actors.Add(func() error {
				return listenForKeys(ctx, offset, cancel)
			}, func(err error) {
				cancel()
				// unblock the key listener
				_ = keyboard.SimulateKeyPress(keys.Escape)
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		actors.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received termination signal, exiting...")
			case <-ctx.Done():
			}
			return nil
		}, func(err error) {
			cancel()
		})
	}

	err = actors.Run()
	if err != nil {
		var restoreFailure *guard.RestoreFailure
		if errors.As(err, &restoreFailure) {
			ui.ErrorAndNotify("Restore failed", "Channels left in manual mode: %v", restoreFailure.ChannelIds)
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ui.Info("Done.")
	os.Exit(0)
}

// DiscoverHardware builds the sensor and channel registries, fatal if
// the hwmon root is unusable or no control sensor exists
func DiscoverHardware(hwMonPath string) (*hwmon.SensorRegistry, *hwmon.ChannelRegistry) {
	sensorRegistry := hwmon.NewSensorRegistry(hwMonPath)
	if err := sensorRegistry.Discover(); err != nil {
		ui.Fatal("Cannot discover sensors: %v", err)
	}
	if len(sensorRegistry.ControlSensors()) == 0 {
		ui.Fatal("No control sensor (CPU/GPU) found below %s, cannot compute a duty", hwMonPath)
	}

	channelRegistry := hwmon.NewChannelRegistry(hwMonPath)
	if err := channelRegistry.Discover(); err != nil {
		ui.Fatal("Cannot discover fan channels: %v", err)
	}

	return sensorRegistry, channelRegistry
}

// listenForKeys adjusts the duty offset from key presses until q or
// the context ends the session
func listenForKeys(ctx context.Context, offset *control.Offset, quit func()) error {
	return keyboard.Listen(func(key keys.Key) (stop bool, err error) {
		if ctx.Err() != nil {
			return true, nil
		}
		switch {
		case key.Code == keys.Up || key.String() == "w":
			value := offset.Adjust(control.OffsetStep)
			ui.Info("Duty offset: %+d", value)
		case key.Code == keys.Down || key.String() == "s":
			value := offset.Adjust(-control.OffsetStep)
			ui.Info("Duty offset: %+d", value)
		case key.Code == keys.CtrlC || key.String() == "q":
			ui.Info("Quit requested")
			quit()
			return true, nil
		case key.Code == keys.Escape:
			return true, nil
		}
		return false, nil
	})
}

// RunCalibration runs a quick or comprehensive responsiveness test on
// the selected channels and stores the outcome
func RunCalibration(comprehensive bool, channelIds []string) error {
	config := configuration.CurrentConfig

	if getProcessOwner() != "root" {
		ui.Fatal("Calibration writes to fan channels and requires root permissions")
	}

	_, channelRegistry := DiscoverHardware(config.HwMonPath)
	selected, err := calibrate.SelectChannels(channelRegistry.Channels(), channelIds)
	if err != nil {
		return err
	}

	pers := persistence.NewPersistence(config.DbPath)
	if err := pers.Init(); err != nil {
		ui.Warning("Cannot initialize persistence: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	calibrator := calibrate.NewCalibrator(config.Calibration)

	var results []calibrate.Result
	if comprehensive {
		recommendations, err := calibrator.ComprehensiveTest(ctx, selected)
		if err != nil {
			return err
		}
		for _, recommendation := range recommendations {
			printRecommendation(recommendation)
			results = append(results, recommendation.Results...)
		}
	} else {
		results, err = calibrator.QuickTest(ctx, selected)
		if err != nil {
			return err
		}
	}

	return saveResults(pers, results)
}

// PrintCalibrationResults lists the stored calibration history, no root
// or hardware access needed
func PrintCalibrationResults() error {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)

	resultsByChannel, err := pers.LoadAllCalibrationResults()
	if err != nil {
		return err
	}
	if len(resultsByChannel) <= 0 {
		ui.Info("No stored calibration results, run 'fan-control calibrate' first")
		return nil
	}

	channelIds := make([]string, 0, len(resultsByChannel))
	for channelId := range resultsByChannel {
		channelIds = append(channelIds, channelId)
	}
	sort.Strings(channelIds)

	for _, channelId := range channelIds {
		ui.Printfln("> %s", channelId)
		for _, result := range resultsByChannel[channelId] {
			ui.Printfln("  %s", result)
		}
	}
	return nil
}

func printRecommendation(recommendation calibrate.Recommendation) {
	if !recommendation.Functional {
		ui.Warning("%s did not respond in any mode, the fan may be disconnected", recommendation.ChannelId)
		ui.NotifyWarn("Fan not responding", recommendation.ChannelId)
		return
	}
	if len(recommendation.RecommendedMode) > 0 {
		ui.Success("%s: use %s mode", recommendation.ChannelId, recommendation.RecommendedMode)
	} else {
		ui.Success("%s: both modes usable", recommendation.ChannelId)
	}
}

func saveResults(pers persistence.Persistence, results []calibrate.Result) error {
	byChannel := map[string][]calibrate.Result{}
	for _, result := range results {
		byChannel[result.ChannelId] = append(byChannel[result.ChannelId], result)
	}

	for channelId, channelResults := range byChannel {
		if err := pers.SaveCalibrationResults(channelId, channelResults); err != nil {
			return fmt.Errorf("cannot save calibration results for %s: %w", channelId, err)
		}
	}
	return nil
}

func getProcessOwner() string {
	stdout, err := exec.Command("ps", "-o", "user=", "-p", strconv.Itoa(os.Getpid())).Output()
	if err != nil {
		ui.Fatal("Error checking process owner: %v", err)
		os.Exit(1)
	}
	return strings.TrimSpace(string(stdout))
}
