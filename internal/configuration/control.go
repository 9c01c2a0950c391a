package configuration

import "time"

type ControlConfig struct {
	// TempMin is the temperature at/below which DutyMin is applied
	TempMin float64 `json:"tempMin"`
	// TempMax is the temperature at/above which DutyMax is applied
	TempMax float64 `json:"tempMax"`

	DutyMin DutyValue `json:"dutyMin"`
	DutyMax DutyValue `json:"dutyMax"`

	Interval time.Duration `json:"interval"`

	// Offset is the initial operator offset, applied after the curve
	Offset int `json:"offset"`

	// DutyDecreaseStep limits how fast the duty value may drop per tick.
	// Ramp-up is always instant.
	DutyDecreaseStep int `json:"dutyDecreaseStep"`

	// MaxIterations stops the loop after N ticks, 0 means run forever
	MaxIterations int `json:"maxIterations"`

	// Channels restricts control to the given channel ids, empty means all
	Channels []string `json:"channels"`
}

type CalibrationConfig struct {
	DutyLow  DutyValue `json:"dutyLow"`
	DutyHigh DutyValue `json:"dutyHigh"`

	RpmDeltaThreshold        int     `json:"rpmDeltaThreshold"`
	RpmDeltaPercentThreshold float64 `json:"rpmDeltaPercentThreshold"`
	ModePreferenceFactor     float64 `json:"modePreferenceFactor"`

	SettleTime           time.Duration `json:"settleTime"`
	ResponseTime         time.Duration `json:"responseTime"`
	ModeSwitchSettleTime time.Duration `json:"modeSwitchSettleTime"`
	MaxRpmDiffForSettled float64       `json:"maxRpmDiffForSettled"`
}

type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
}
