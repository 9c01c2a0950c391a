package channels

import (
	"errors"
	"fmt"
	"os"

	"github.com/loislo/fan-control/internal/ui"
	"github.com/loislo/fan-control/internal/util"
)

type HwMonChannel struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Index        int    `json:"index"`
	PwmPath      string `json:"pwmPath"`
	EnablePath   string `json:"enablePath"`
	ModePath     string `json:"modePath"`
	RpmInputPath string `json:"rpmInputPath"`
}

func (channel *HwMonChannel) GetId() string {
	return channel.Name
}

func (channel *HwMonChannel) GetLabel() string {
	return channel.Label
}

func (channel *HwMonChannel) GetDuty() (int, error) {
	return util.ReadIntFromFile(channel.PwmPath)
}

func (channel *HwMonChannel) SetDuty(duty int) error {
	if duty < MinDutyValue || duty > MaxDutyValue {
		return fmt.Errorf("%w: duty value %d outside [%d..%d]", ErrInvalidArgument, duty, MinDutyValue, MaxDutyValue)
	}
	ui.Debug("Setting %s (%s) to %d ...", channel.Name, channel.Label, duty)
	return writeWithRetry(duty, channel.PwmPath)
}

func (channel *HwMonChannel) GetRpm() (int, error) {
	if !channel.SupportsRpmSensor() {
		return -1, ErrNotSupported
	}
	return util.ReadIntFromFile(channel.RpmInputPath)
}

func (channel *HwMonChannel) SupportsRpmSensor() bool {
	return len(channel.RpmInputPath) > 0
}

func (channel *HwMonChannel) GetControlMode() (ControlMode, error) {
	value, err := util.ReadIntFromFile(channel.EnablePath)
	if err != nil {
		return ControlModeDisabled, err
	}
	return ControlModeFromRaw(value), nil
}

// SetControlMode writes the given value to pwmN_enable and verifies it
// by reading it back, some chips silently refuse certain modes.
func (channel *HwMonChannel) SetControlMode(mode ControlMode) error {
	err := writeWithRetry(int(mode), channel.EnablePath)
	if err != nil {
		return err
	}

	currentValue, err := util.ReadIntFromFile(channel.EnablePath)
	if err != nil || ControlModeFromRaw(currentValue) != mode {
		return fmt.Errorf("control mode of %s stuck at %d", channel.Name, currentValue)
	}
	return nil
}

func (channel *HwMonChannel) GetElectricalMode() (ElectricalMode, error) {
	if !channel.SupportsElectricalMode() {
		return ElectricalModeDC, ErrNotSupported
	}
	value, err := util.ReadIntFromFile(channel.ModePath)
	if err != nil {
		return ElectricalModeDC, err
	}
	return ElectricalMode(value), nil
}

func (channel *HwMonChannel) SetElectricalMode(mode ElectricalMode) error {
	if !channel.SupportsElectricalMode() {
		return ErrNotSupported
	}
	err := writeWithRetry(int(mode), channel.ModePath)
	if err != nil {
		return err
	}

	currentValue, err := util.ReadIntFromFile(channel.ModePath)
	if err != nil || ElectricalMode(currentValue) != mode {
		return fmt.Errorf("electrical mode of %s stuck at %d", channel.Name, currentValue)
	}
	return nil
}

func (channel *HwMonChannel) SupportsElectricalMode() bool {
	return len(channel.ModePath) > 0
}

// writeWithRetry writes the given value, retrying once on transient
// failures. Permission and not-found errors are never transient.
func writeWithRetry(value int, path string) error {
	err := util.WriteIntToFile(value, path)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) {
		return err
	}
	return util.WriteIntToFile(value, path)
}
