package sensors

import (
	"github.com/loislo/fan-control/internal/util"
)

const (
	// readings outside this range are considered bogus and are skipped,
	// disconnected sensors tend to report 0 or absurd values
	MinValidCelsius = 0.0
	MaxValidCelsius = 120.0
)

type Role int

const (
	// RoleDisplay marks a sensor that is shown but never drives the fans
	RoleDisplay Role = iota
	// RoleControl marks a sensor whose reading feeds the fan curve
	RoleControl
)

func (r Role) String() string {
	if r == RoleControl {
		return "control"
	}
	return "display"
}

// Reading is a single immutable temperature sample
type Reading struct {
	Id      string  `json:"id"`
	Label   string  `json:"label"`
	Celsius float64 `json:"celsius"`
	Role    Role    `json:"role"`
}

type Sensor interface {
	GetId() string
	GetLabel() string
	GetRole() Role

	// GetValue returns the current temperature of this sensor in °C
	GetValue() (float64, error)

	GetMovingAvg() float64
	SetMovingAvg(avg float64)
}

type HwmonSensor struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Index     int     `json:"index"`
	Input     string  `json:"input"`
	Role      Role    `json:"role"`
	MovingAvg float64 `json:"movingAvg"`
}

func (sensor *HwmonSensor) GetId() string {
	return sensor.Name
}

func (sensor *HwmonSensor) GetLabel() string {
	return sensor.Label
}

func (sensor *HwmonSensor) GetRole() Role {
	return sensor.Role
}

func (sensor *HwmonSensor) GetValue() (result float64, err error) {
	integer, err := util.ReadIntFromFile(sensor.Input)
	if err != nil {
		return 0, err
	}
	// hwmon exposes millidegrees
	result = float64(integer) / 1000.0
	return result, err
}

func (sensor *HwmonSensor) GetMovingAvg() (avg float64) {
	return sensor.MovingAvg
}

func (sensor *HwmonSensor) SetMovingAvg(avg float64) {
	sensor.MovingAvg = avg
}
