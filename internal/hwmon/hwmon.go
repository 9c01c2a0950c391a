package hwmon

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/sensors"
	"github.com/loislo/fan-control/internal/util"
)

var (
	tempInputRegex = regexp.MustCompile("^temp([0-9]+)_input$")
	pwmRegex       = regexp.MustCompile("^pwm([0-9]+)$")
)

// HwMonDevice is one hardware-monitor chip below the hwmon root
type HwMonDevice struct {
	Name string
	Path string

	Sensors  []*sensors.HwmonSensor
	Channels []*channels.HwMonChannel
}

// GetDevices scans the given hwmon root and returns all devices that
// expose at least one temperature sensor or fan channel. A missing or
// unreadable root is an error, an empty root is not.
func GetDevices(root string) ([]*HwMonDevice, error) {
	devicePaths, err := util.FindHwmonDevicePaths(root)
	if err != nil {
		return nil, fmt.Errorf("cannot scan hwmon root %s: %w", root, err)
	}

	var list []*HwMonDevice
	for _, devicePath := range devicePaths {
		name := util.GetDeviceName(devicePath)

		sensorList := GetTempSensors(devicePath, name)
		channelList := GetChannels(devicePath, name)

		if len(sensorList) <= 0 && len(channelList) <= 0 {
			continue
		}

		device := &HwMonDevice{
			Name:     name,
			Path:     devicePath,
			Sensors:  sensorList,
			Channels: channelList,
		}
		list = append(list, device)
	}

	return list, nil
}

// GetTempSensors lists the temperature sensors of a single device
func GetTempSensors(devicePath string, deviceName string) []*sensors.HwmonSensor {
	var sensorList []*sensors.HwmonSensor

	inputPaths, err := util.FindFilesMatching(devicePath, tempInputRegex)
	if err != nil {
		return sensorList
	}

	for _, inputPath := range inputPaths {
		_, inputFile := filepath.Split(inputPath)
		match := tempInputRegex.FindStringSubmatch(inputFile)
		channel, _ := strconv.Atoi(match[1])

		label := util.GetLabel(devicePath, inputFile)
		if label == filepath.Base(devicePath) {
			// no label file, synthesize one the way lm-sensors does
			label = fmt.Sprintf("%s_temp%d", deviceName, channel)
		}

		sensorList = append(sensorList, &sensors.HwmonSensor{
			Name:  fmt.Sprintf("%s/temp%d", deviceName, channel),
			Label: label,
			Index: len(sensorList) + 1,
			Input: inputPath,
			Role:  sensors.ClassifyRole(deviceName, label),
		})
	}

	return sensorList
}

// GetChannels lists the controllable fan channels of a single device.
// A pwmN file only counts as a channel if pwmN_enable exists, without
// it there is no way to take over (or hand back) control.
func GetChannels(devicePath string, deviceName string) []*channels.HwMonChannel {
	var channelList []*channels.HwMonChannel

	pwmPaths, err := util.FindFilesMatching(devicePath, pwmRegex)
	if err != nil {
		return channelList
	}

	for _, pwmPath := range pwmPaths {
		_, pwmFile := filepath.Split(pwmPath)
		match := pwmRegex.FindStringSubmatch(pwmFile)
		channel, _ := strconv.Atoi(match[1])

		enablePath := filepath.Join(devicePath, fmt.Sprintf("pwm%d_enable", channel))
		if !fileExists(enablePath) {
			continue
		}

		modePath := filepath.Join(devicePath, fmt.Sprintf("pwm%d_mode", channel))
		if !fileExists(modePath) {
			modePath = ""
		}

		rpmInputPath := filepath.Join(devicePath, fmt.Sprintf("fan%d_input", channel))
		if !fileExists(rpmInputPath) {
			rpmInputPath = ""
		}

		channelList = append(channelList, &channels.HwMonChannel{
			Name:         fmt.Sprintf("%s/pwm%d", deviceName, channel),
			Label:        fmt.Sprintf("PWM%d", channel),
			Index:        len(channelList) + 1,
			PwmPath:      pwmPath,
			EnablePath:   enablePath,
			ModePath:     modePath,
			RpmInputPath: rpmInputPath,
		})
	}

	return channelList
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
