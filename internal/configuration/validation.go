package configuration

import (
	"fmt"

	"github.com/looplab/tarjan"
	"golang.org/x/exp/slices"
)

// Validate checks the current configuration for errors that must be
// rejected before any hardware is touched.
func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	err := validateControl(&config.Control)
	if err != nil {
		return err
	}
	err = validateCalibration(&config.Calibration)
	if err != nil {
		return err
	}
	err = validateProfiles(config)
	if err != nil {
		return err
	}

	if len(config.Profile) > 0 && findProfile(config, config.Profile) == nil {
		return fmt.Errorf("active profile '%s' is not defined", config.Profile)
	}

	return nil
}

func validateControl(config *ControlConfig) error {
	if config.TempMax <= config.TempMin {
		return fmt.Errorf("control: tempMax (%.1f) must be greater than tempMin (%.1f)", config.TempMax, config.TempMin)
	}
	if config.DutyMin < 0 || config.DutyMax > 255 {
		return fmt.Errorf("control: duty values must be within [0..255]")
	}
	if config.DutyMin > config.DutyMax {
		return fmt.Errorf("control: dutyMin (%d) must not exceed dutyMax (%d)", config.DutyMin, config.DutyMax)
	}
	if config.Interval <= 0 {
		return fmt.Errorf("control: interval must be greater than zero")
	}
	if config.DutyDecreaseStep < 0 {
		return fmt.Errorf("control: dutyDecreaseStep must not be negative")
	}
	if config.MaxIterations < 0 {
		return fmt.Errorf("control: maxIterations must not be negative")
	}
	return nil
}

func validateCalibration(config *CalibrationConfig) error {
	if config.DutyLow < 0 || config.DutyHigh > 255 {
		return fmt.Errorf("calibration: duty values must be within [0..255]")
	}
	if config.DutyLow >= config.DutyHigh {
		return fmt.Errorf("calibration: dutyLow (%d) must be less than dutyHigh (%d)", config.DutyLow, config.DutyHigh)
	}
	if config.RpmDeltaThreshold <= 0 {
		return fmt.Errorf("calibration: rpmDeltaThreshold must be greater than zero")
	}
	if config.ModePreferenceFactor < 1 {
		return fmt.Errorf("calibration: modePreferenceFactor must be at least 1")
	}
	return nil
}

func validateProfiles(config *Configuration) error {
	var names []string
	for _, profile := range config.Profiles {
		if len(profile.Name) <= 0 {
			return fmt.Errorf("profile without a name found")
		}
		if slices.Contains(names, profile.Name) {
			return fmt.Errorf("profile '%s' is defined more than once", profile.Name)
		}
		names = append(names, profile.Name)
	}

	graph := make(map[interface{}][]interface{})
	for _, profile := range config.Profiles {
		var connections []interface{}
		for _, parent := range profile.Extends {
			if parent == profile.Name {
				return fmt.Errorf("profile '%s' cannot extend itself", profile.Name)
			}
			if !slices.Contains(names, parent) {
				return fmt.Errorf("profile '%s' extends unknown profile '%s'", profile.Name, parent)
			}
			connections = append(connections, parent)
		}
		graph[profile.Name] = connections
	}

	return validateNoLoops(graph)
}

func validateNoLoops(graph map[interface{}][]interface{}) error {
	output := tarjan.Connections(graph)
	for _, items := range output {
		if len(items) > 1 {
			return fmt.Errorf("you have created a profile dependency cycle: %v", items)
		}
	}
	return nil
}
