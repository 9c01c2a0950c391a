package channels

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockChannel struct {
	id   string
	duty int
	rpm  int

	controlMode    ControlMode
	electricalMode ElectricalMode

	hasRpm  bool
	hasMode bool

	dutyErr error
	rpmErr  error
	modeErr error
}

func (c *mockChannel) GetId() string    { return c.id }
func (c *mockChannel) GetLabel() string { return c.id }
func (c *mockChannel) GetDuty() (int, error) {
	return c.duty, c.dutyErr
}
func (c *mockChannel) SetDuty(duty int) error {
	c.duty = duty
	return c.dutyErr
}
func (c *mockChannel) GetRpm() (int, error) {
	return c.rpm, c.rpmErr
}
func (c *mockChannel) SupportsRpmSensor() bool { return c.hasRpm }
func (c *mockChannel) GetControlMode() (ControlMode, error) {
	return c.controlMode, c.modeErr
}
func (c *mockChannel) SetControlMode(mode ControlMode) error {
	c.controlMode = mode
	return c.modeErr
}
func (c *mockChannel) GetElectricalMode() (ElectricalMode, error) {
	return c.electricalMode, c.modeErr
}
func (c *mockChannel) SetElectricalMode(mode ElectricalMode) error {
	c.electricalMode = mode
	return c.modeErr
}
func (c *mockChannel) SupportsElectricalMode() bool { return c.hasMode }

func createChannelFiles(t *testing.T, pwm int, enable int) *HwMonChannel {
	dir := t.TempDir()
	pwmPath := filepath.Join(dir, "pwm1")
	enablePath := filepath.Join(dir, "pwm1_enable")
	assert.NoError(t, os.WriteFile(pwmPath, []byte(strconv.Itoa(pwm)), 0644))
	assert.NoError(t, os.WriteFile(enablePath, []byte(strconv.Itoa(enable)), 0644))

	return &HwMonChannel{
		Name:       "nct6798/pwm1",
		Label:      "PWM1",
		Index:      1,
		PwmPath:    pwmPath,
		EnablePath: enablePath,
	}
}

func TestHwMonChannel_SetDuty(t *testing.T) {
	// GIVEN
	channel := createChannelFiles(t, 0, 1)

	// WHEN
	err := channel.SetDuty(143)

	// THEN
	assert.NoError(t, err)
	duty, err := channel.GetDuty()
	assert.NoError(t, err)
	assert.Equal(t, 143, duty)
}

func TestHwMonChannel_SetDuty_OutOfRange(t *testing.T) {
	// GIVEN
	channel := createChannelFiles(t, 0, 1)

	tests := []struct {
		tn   string
		duty int
	}{
		{tn: "below minimum", duty: -1},
		{tn: "above maximum", duty: 256},
	}

	for _, tc := range tests {
		t.Run(tc.tn, func(t *testing.T) {
			// WHEN
			err := channel.SetDuty(tc.duty)

			// THEN
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}
}

func TestHwMonChannel_SetControlMode(t *testing.T) {
	// GIVEN
	channel := createChannelFiles(t, 128, 2)

	// WHEN
	err := channel.SetControlMode(ControlModeManual)

	// THEN
	assert.NoError(t, err)
	mode, err := channel.GetControlMode()
	assert.NoError(t, err)
	assert.Equal(t, ControlModeManual, mode)
}

func TestHwMonChannel_SetControlMode_MissingFile(t *testing.T) {
	// GIVEN
	channel := &HwMonChannel{
		Name:       "nct6798/pwm1",
		EnablePath: filepath.Join(t.TempDir(), "does_not_exist"),
	}

	// WHEN
	err := channel.SetControlMode(ControlModeManual)

	// THEN
	assert.Error(t, err)
}

func TestHwMonChannel_GetRpm_Unsupported(t *testing.T) {
	// GIVEN
	channel := createChannelFiles(t, 128, 1)

	// WHEN
	_, err := channel.GetRpm()

	// THEN
	assert.True(t, errors.Is(err, ErrNotSupported))
}

func TestHwMonChannel_ElectricalMode_Unsupported(t *testing.T) {
	// GIVEN
	channel := createChannelFiles(t, 128, 1)

	// WHEN
	err := channel.SetElectricalMode(ElectricalModePWM)

	// THEN
	assert.True(t, errors.Is(err, ErrNotSupported))
}

func TestControlModeFromRaw(t *testing.T) {
	tests := []struct {
		tn       string
		raw      int
		expected ControlMode
	}{
		{tn: "disabled", raw: 0, expected: ControlModeDisabled},
		{tn: "manual", raw: 1, expected: ControlModeManual},
		{tn: "automatic", raw: 2, expected: ControlModeAutomatic},
		{tn: "vendor specific automatic", raw: 5, expected: ControlModeAutomatic},
	}

	for _, tc := range tests {
		t.Run(tc.tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, ControlModeFromRaw(tc.raw))
		})
	}
}

func TestTakeSnapshot(t *testing.T) {
	// GIVEN
	channel := &mockChannel{
		id:             "nct6798/pwm1",
		duty:           128,
		rpm:            950,
		controlMode:    ControlModeManual,
		electricalMode: ElectricalModePWM,
		hasRpm:         true,
		hasMode:        true,
	}

	// WHEN
	snapshot := TakeSnapshot(channel)

	// THEN
	assert.Equal(t, "nct6798/pwm1", snapshot.Id)
	assert.Equal(t, 128, snapshot.Duty)
	assert.Equal(t, 950, snapshot.Rpm)
	assert.Equal(t, "manual", snapshot.ControlMode)
	assert.Equal(t, "PWM", snapshot.ElectricalMode)
}

func TestTakeSnapshot_UnreadableChannel(t *testing.T) {
	// GIVEN
	channel := &mockChannel{
		id:      "nct6798/pwm1",
		dutyErr: errors.New("read failed"),
		modeErr: errors.New("read failed"),
	}

	// WHEN
	snapshot := TakeSnapshot(channel)

	// THEN
	assert.Equal(t, -1, snapshot.Duty)
	assert.Equal(t, -1, snapshot.Rpm)
	assert.Equal(t, "unknown", snapshot.ControlMode)
	assert.Equal(t, "N/A", snapshot.ElectricalMode)
}
