package guard

import (
	"errors"
	"testing"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/stretchr/testify/assert"
)

type mockChannel struct {
	id   string
	duty int

	controlMode    channels.ControlMode
	electricalMode channels.ElectricalMode
	hasMode        bool

	setModeErr     error
	setModeErrOnce bool
	setDutyErr     error
	failRestore    bool
}

func (c *mockChannel) GetId() string    { return c.id }
func (c *mockChannel) GetLabel() string { return c.id }
func (c *mockChannel) GetDuty() (int, error) {
	return c.duty, nil
}
func (c *mockChannel) SetDuty(duty int) error {
	if c.setDutyErr != nil {
		return c.setDutyErr
	}
	c.duty = duty
	return nil
}
func (c *mockChannel) GetRpm() (int, error)    { return -1, channels.ErrNotSupported }
func (c *mockChannel) SupportsRpmSensor() bool { return false }
func (c *mockChannel) GetControlMode() (channels.ControlMode, error) {
	return c.controlMode, nil
}
func (c *mockChannel) SetControlMode(mode channels.ControlMode) error {
	if c.setModeErr != nil {
		err := c.setModeErr
		if c.setModeErrOnce {
			c.setModeErr = nil
		}
		return err
	}
	if c.failRestore && mode == channels.ControlModeAutomatic {
		return errors.New("stuck in manual mode")
	}
	c.controlMode = mode
	return nil
}
func (c *mockChannel) GetElectricalMode() (channels.ElectricalMode, error) {
	return c.electricalMode, nil
}
func (c *mockChannel) SetElectricalMode(mode channels.ElectricalMode) error {
	c.electricalMode = mode
	return nil
}
func (c *mockChannel) SupportsElectricalMode() bool { return c.hasMode }

func autoChannel(id string) *mockChannel {
	return &mockChannel{
		id:          id,
		duty:        255,
		controlMode: channels.ControlModeAutomatic,
	}
}

func TestAcquireAndRelease(t *testing.T) {
	// GIVEN
	channel := autoChannel("nct6798/pwm1")

	// WHEN
	g, err := Acquire([]channels.Channel{channel})

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, channels.ControlModeManual, channel.controlMode)

	// WHEN
	err = g.Release()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, channels.ControlModeAutomatic, channel.controlMode)
	assert.Equal(t, 255, channel.duty)
}

func TestAcquire_Conflict(t *testing.T) {
	// GIVEN
	channel := autoChannel("nct6798/pwm1")
	first, err := Acquire([]channels.Channel{channel})
	assert.NoError(t, err)
	defer func() {
		assert.NoError(t, first.Release())
	}()

	// WHEN
	_, err = Acquire([]channels.Channel{channel})

	// THEN
	assert.True(t, errors.Is(err, ErrGuardConflict))
}

func TestAcquire_ReleaseClearsConflict(t *testing.T) {
	// GIVEN
	channel := autoChannel("nct6798/pwm1")
	first, err := Acquire([]channels.Channel{channel})
	assert.NoError(t, err)
	assert.NoError(t, first.Release())

	// WHEN
	second, err := Acquire([]channels.Channel{channel})

	// THEN
	assert.NoError(t, err)
	assert.NoError(t, second.Release())
}

func TestAcquire_RollbackOnPartialFailure(t *testing.T) {
	// GIVEN
	working := autoChannel("nct6798/pwm1")
	broken := autoChannel("nct6798/pwm2")
	broken.setModeErr = errors.New("write failed")

	// WHEN
	_, err := Acquire([]channels.Channel{working, broken})

	// THEN
	assert.Error(t, err)
	assert.Equal(t, channels.ControlModeAutomatic, working.controlMode)

	// both channels must be acquirable again
	broken.setModeErr = nil
	g, err := Acquire([]channels.Channel{working, broken})
	assert.NoError(t, err)
	assert.NoError(t, g.Release())
}

func TestRelease_OnlyFirstCallRestores(t *testing.T) {
	// GIVEN
	channel := autoChannel("nct6798/pwm1")
	g, err := Acquire([]channels.Channel{channel})
	assert.NoError(t, err)
	assert.NoError(t, g.Release())

	// WHEN the channel state changes after release
	channel.controlMode = channels.ControlModeManual
	channel.duty = 40
	err = g.Release()

	// THEN the second call must not touch the channel
	assert.NoError(t, err)
	assert.Equal(t, channels.ControlModeManual, channel.controlMode)
	assert.Equal(t, 40, channel.duty)
}

func TestRelease_SafeFallbackOnRestoreFailure(t *testing.T) {
	// GIVEN
	working := autoChannel("nct6798/pwm1")
	stuck := autoChannel("nct6798/pwm2")
	g, err := Acquire([]channels.Channel{working, stuck})
	assert.NoError(t, err)
	stuck.failRestore = true

	// WHEN
	err = g.Release()

	// THEN the working channel is restored
	assert.Equal(t, channels.ControlModeAutomatic, working.controlMode)

	// AND the stuck channel is pinned at the safe fallback duty
	assert.Equal(t, channels.ControlModeManual, stuck.controlMode)
	assert.Equal(t, channels.SafeFallbackDuty, stuck.duty)

	// AND the failure names the stuck channel
	var failure *RestoreFailure
	assert.True(t, errors.As(err, &failure))
	assert.Equal(t, []string{"nct6798/pwm2"}, failure.ChannelIds)
}
