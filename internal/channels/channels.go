package channels

import (
	"errors"
)

const (
	MaxDutyValue = 255
	MinDutyValue = 0

	// SafeFallbackDuty is written to channels that refuse to return to
	// automatic control, 50% keeps the machine cool without being loud
	SafeFallbackDuty = 128
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotSupported    = errors.New("not supported by this channel")
)

// ControlMode is the pwmN_enable state of a channel.
// Raw values 2 and above all mean firmware control and are normalized
// to ControlModeAutomatic.
type ControlMode int

const (
	// ControlModeDisabled completely disables control, resulting in a 100% voltage/PWM signal output
	ControlModeDisabled ControlMode = 0
	// ControlModeManual enables fixed speed control via the duty value
	ControlModeManual ControlMode = 1
	// ControlModeAutomatic hands control back to the firmware
	ControlModeAutomatic ControlMode = 2
)

func (m ControlMode) String() string {
	switch m {
	case ControlModeDisabled:
		return "off"
	case ControlModeManual:
		return "manual"
	case ControlModeAutomatic:
		return "auto"
	}
	return "unknown"
}

// ControlModeFromRaw maps a raw pwmN_enable value to a ControlMode
func ControlModeFromRaw(value int) ControlMode {
	if value >= 2 {
		return ControlModeAutomatic
	}
	return ControlMode(value)
}

// ElectricalMode is the pwmN_mode drive method of a channel
type ElectricalMode int

const (
	ElectricalModeDC  ElectricalMode = 0
	ElectricalModePWM ElectricalMode = 1
)

func (m ElectricalMode) String() string {
	if m == ElectricalModePWM {
		return "PWM"
	}
	return "DC"
}

type Channel interface {
	GetId() string
	GetLabel() string

	// GetDuty returns the current duty value of this channel
	GetDuty() (int, error)
	// SetDuty writes the given duty value ([0..255]) to the channel
	SetDuty(duty int) error

	// GetRpm returns the current tachometer value of this channel
	GetRpm() (int, error)
	SupportsRpmSensor() bool

	GetControlMode() (ControlMode, error)
	SetControlMode(mode ControlMode) error

	GetElectricalMode() (ElectricalMode, error)
	SetElectricalMode(mode ElectricalMode) error
	SupportsElectricalMode() bool
}

// Snapshot is a point-in-time view of a channel for display and API
// consumers. Unreadable values are reported as -1.
type Snapshot struct {
	Id             string `json:"id"`
	Label          string `json:"label"`
	Duty           int    `json:"duty"`
	Rpm            int    `json:"rpm"`
	ControlMode    string `json:"controlMode"`
	ElectricalMode string `json:"electricalMode"`
}

// TakeSnapshot reads the current state of a channel, best-effort
func TakeSnapshot(channel Channel) Snapshot {
	snapshot := Snapshot{
		Id:    channel.GetId(),
		Label: channel.GetLabel(),
		Duty:  -1,
		Rpm:   -1,
	}

	if duty, err := channel.GetDuty(); err == nil {
		snapshot.Duty = duty
	}
	if channel.SupportsRpmSensor() {
		if rpm, err := channel.GetRpm(); err == nil {
			snapshot.Rpm = rpm
		}
	}
	if mode, err := channel.GetControlMode(); err == nil {
		snapshot.ControlMode = mode.String()
	} else {
		snapshot.ControlMode = "unknown"
	}
	if channel.SupportsElectricalMode() {
		if mode, err := channel.GetElectricalMode(); err == nil {
			snapshot.ElectricalMode = mode.String()
		} else {
			snapshot.ElectricalMode = "unknown"
		}
	} else {
		snapshot.ElectricalMode = "N/A"
	}

	return snapshot
}
