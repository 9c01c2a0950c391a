package hwmon

import (
	"sort"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/sensors"
	"github.com/loislo/fan-control/internal/ui"
	"github.com/loislo/fan-control/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// movingAvgWindowSize smooths the per-sensor moving average shown in
// display surfaces, the control loop always uses the raw reading
const movingAvgWindowSize = 10

// SensorRegistry enumerates and samples the temperature sensors below
// one hwmon root
type SensorRegistry struct {
	root    string
	sensors cmap.ConcurrentMap[string, sensors.Sensor]
}

func NewSensorRegistry(root string) *SensorRegistry {
	return &SensorRegistry{
		root:    root,
		sensors: cmap.New[sensors.Sensor](),
	}
}

// Discover scans the hwmon root and (re)builds the sensor set.
// Fails only when the root itself is missing or unreadable.
func (r *SensorRegistry) Discover() error {
	devices, err := GetDevices(r.root)
	if err != nil {
		return err
	}

	r.sensors.Clear()
	for _, device := range devices {
		for _, sensor := range device.Sensors {
			r.sensors.Set(sensor.GetId(), sensor)
		}
	}
	return nil
}

// Sensors returns all known sensors, ordered by id
func (r *SensorRegistry) Sensors() []sensors.Sensor {
	result := make([]sensors.Sensor, 0, r.sensors.Count())
	for _, sensor := range r.sensors.Items() {
		result = append(result, sensor)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GetId() < result[j].GetId()
	})
	return result
}

// ControlSensors returns the sensors whose readings drive the fan curve
func (r *SensorRegistry) ControlSensors() []sensors.Sensor {
	var result []sensors.Sensor
	for _, sensor := range r.Sensors() {
		if sensor.GetRole() == sensors.RoleControl {
			result = append(result, sensor)
		}
	}
	return result
}

func (r *SensorRegistry) GetSensor(id string) (sensors.Sensor, bool) {
	return r.sensors.Get(id)
}

// SampleAll reads every sensor and returns the valid readings.
// An unreadable or implausible sensor is skipped, never fatal, stale
// sysfs files are a fact of life.
func (r *SensorRegistry) SampleAll() []sensors.Reading {
	var readings []sensors.Reading
	for _, sensor := range r.Sensors() {
		value, err := sensor.GetValue()
		if err != nil {
			ui.Debug("Skipping unreadable sensor %s: %v", sensor.GetId(), err)
			continue
		}
		if value <= sensors.MinValidCelsius || value > sensors.MaxValidCelsius {
			continue
		}

		if sensor.GetMovingAvg() == 0 {
			sensor.SetMovingAvg(value)
		} else {
			sensor.SetMovingAvg(util.UpdateSimpleMovingAvg(sensor.GetMovingAvg(), movingAvgWindowSize, value))
		}

		readings = append(readings, sensors.Reading{
			Id:      sensor.GetId(),
			Label:   sensor.GetLabel(),
			Celsius: value,
			Role:    sensor.GetRole(),
		})
	}
	return readings
}

// ChannelRegistry enumerates the controllable fan channels below one
// hwmon root
type ChannelRegistry struct {
	root     string
	channels cmap.ConcurrentMap[string, channels.Channel]
}

func NewChannelRegistry(root string) *ChannelRegistry {
	return &ChannelRegistry{
		root:     root,
		channels: cmap.New[channels.Channel](),
	}
}

// Discover scans the hwmon root and (re)builds the channel set.
// Fails only when the root itself is missing or unreadable.
func (r *ChannelRegistry) Discover() error {
	devices, err := GetDevices(r.root)
	if err != nil {
		return err
	}

	r.channels.Clear()
	for _, device := range devices {
		for _, channel := range device.Channels {
			r.channels.Set(channel.GetId(), channel)
		}
	}
	return nil
}

// Channels returns all known channels, ordered by id
func (r *ChannelRegistry) Channels() []channels.Channel {
	result := make([]channels.Channel, 0, r.channels.Count())
	for _, channel := range r.channels.Items() {
		result = append(result, channel)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GetId() < result[j].GetId()
	})
	return result
}

func (r *ChannelRegistry) GetChannel(id string) (channels.Channel, bool) {
	return r.channels.Get(id)
}

// Snapshots reads the current state of every channel, best-effort
func (r *ChannelRegistry) Snapshots() []channels.Snapshot {
	var snapshots []channels.Snapshot
	for _, channel := range r.Channels() {
		snapshots = append(snapshots, channels.TakeSnapshot(channel))
	}
	return snapshots
}
