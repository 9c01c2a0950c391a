package hwmon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loislo/fan-control/internal/sensors"
	"github.com/stretchr/testify/assert"
)

// createFakeHwmonRoot builds a sysfs-like tree with two devices:
// a CPU sensor chip and a motherboard chip with fans
func createFakeHwmonRoot(t *testing.T) string {
	root := t.TempDir()

	cpu := filepath.Join(root, "hwmon0")
	assert.NoError(t, os.MkdirAll(cpu, 0755))
	writeFile(t, cpu, "name", "coretemp")
	writeFile(t, cpu, "temp1_input", "62500")
	writeFile(t, cpu, "temp1_label", "Package id 0")
	writeFile(t, cpu, "temp2_input", "58000")
	writeFile(t, cpu, "temp2_label", "Core 0")

	board := filepath.Join(root, "hwmon1")
	assert.NoError(t, os.MkdirAll(board, 0755))
	writeFile(t, board, "name", "nct6798")
	writeFile(t, board, "temp1_input", "34000")
	writeFile(t, board, "temp1_label", "SYSTIN")
	writeFile(t, board, "pwm1", "128")
	writeFile(t, board, "pwm1_enable", "2")
	writeFile(t, board, "pwm1_mode", "1")
	writeFile(t, board, "fan1_input", "950")
	// pwm2 has no enable file and must not be picked up
	writeFile(t, board, "pwm2", "255")

	return root
}

func writeFile(t *testing.T, dir string, name string, content string) {
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content+"\n"), 0644))
}

func TestGetDevices(t *testing.T) {
	// GIVEN
	root := createFakeHwmonRoot(t)

	// WHEN
	devices, err := GetDevices(root)

	// THEN
	assert.NoError(t, err)
	assert.Len(t, devices, 2)

	cpu := devices[0]
	assert.Equal(t, "coretemp", cpu.Name)
	assert.Len(t, cpu.Sensors, 2)
	assert.Len(t, cpu.Channels, 0)
	assert.Equal(t, "coretemp/temp1", cpu.Sensors[0].GetId())
	assert.Equal(t, "Package id 0", cpu.Sensors[0].GetLabel())
	assert.Equal(t, sensors.RoleControl, cpu.Sensors[0].GetRole())

	board := devices[1]
	assert.Equal(t, "nct6798", board.Name)
	assert.Len(t, board.Sensors, 1)
	assert.Equal(t, sensors.RoleDisplay, board.Sensors[0].GetRole())
	assert.Len(t, board.Channels, 1)
	assert.Equal(t, "nct6798/pwm1", board.Channels[0].GetId())
	assert.True(t, board.Channels[0].SupportsRpmSensor())
	assert.True(t, board.Channels[0].SupportsElectricalMode())
}

func TestGetDevices_MissingRoot(t *testing.T) {
	// WHEN
	_, err := GetDevices(filepath.Join(t.TempDir(), "does_not_exist"))

	// THEN
	assert.Error(t, err)
}

func TestGetDevices_EmptyRoot(t *testing.T) {
	// WHEN
	devices, err := GetDevices(t.TempDir())

	// THEN
	assert.NoError(t, err)
	assert.Len(t, devices, 0)
}

func TestGetDevices_IsStable(t *testing.T) {
	// GIVEN
	root := createFakeHwmonRoot(t)
	first, err := GetDevices(root)
	assert.NoError(t, err)

	// WHEN
	second, err := GetDevices(root)

	// THEN
	assert.NoError(t, err)
	assert.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		for j := range first[i].Sensors {
			assert.Equal(t, first[i].Sensors[j].GetId(), second[i].Sensors[j].GetId())
			assert.Equal(t, first[i].Sensors[j].GetRole(), second[i].Sensors[j].GetRole())
		}
	}
}

func TestSensorRegistry_SampleAll(t *testing.T) {
	// GIVEN
	root := createFakeHwmonRoot(t)
	registry := NewSensorRegistry(root)
	assert.NoError(t, registry.Discover())

	// WHEN
	readings := registry.SampleAll()

	// THEN
	assert.Len(t, readings, 3)
	assert.Equal(t, "coretemp/temp1", readings[0].Id)
	assert.Equal(t, 62.5, readings[0].Celsius)
	assert.Equal(t, sensors.RoleControl, readings[0].Role)
}

func TestSensorRegistry_SampleAll_SkipsBogusReadings(t *testing.T) {
	// GIVEN
	root := createFakeHwmonRoot(t)
	bogus := filepath.Join(root, "hwmon2")
	assert.NoError(t, os.MkdirAll(bogus, 0755))
	writeFile(t, bogus, "name", "acpitz")
	writeFile(t, bogus, "temp1_input", "0")
	writeFile(t, bogus, "temp2_input", "250000")

	registry := NewSensorRegistry(root)
	assert.NoError(t, registry.Discover())

	// WHEN
	readings := registry.SampleAll()

	// THEN
	for _, reading := range readings {
		assert.Greater(t, reading.Celsius, sensors.MinValidCelsius)
		assert.LessOrEqual(t, reading.Celsius, sensors.MaxValidCelsius)
	}
	assert.Len(t, readings, 3)
}

func TestSensorRegistry_ControlSensors(t *testing.T) {
	// GIVEN
	root := createFakeHwmonRoot(t)
	registry := NewSensorRegistry(root)
	assert.NoError(t, registry.Discover())

	// WHEN
	controlSensors := registry.ControlSensors()

	// THEN
	assert.Len(t, controlSensors, 2)
	for _, sensor := range controlSensors {
		assert.Equal(t, sensors.RoleControl, sensor.GetRole())
	}
}

func TestChannelRegistry(t *testing.T) {
	// GIVEN
	root := createFakeHwmonRoot(t)
	registry := NewChannelRegistry(root)

	// WHEN
	err := registry.Discover()

	// THEN
	assert.NoError(t, err)
	assert.Len(t, registry.Channels(), 1)

	channel, ok := registry.GetChannel("nct6798/pwm1")
	assert.True(t, ok)
	duty, err := channel.GetDuty()
	assert.NoError(t, err)
	assert.Equal(t, 128, duty)
}

func TestChannelRegistry_MissingRoot(t *testing.T) {
	// GIVEN
	registry := NewChannelRegistry(filepath.Join(t.TempDir(), "does_not_exist"))

	// WHEN
	err := registry.Discover()

	// THEN
	assert.Error(t, err)
}
