package configuration

import (
	"fmt"
	"time"
)

// ProfileConfig is a named set of control parameter overrides.
// Profiles can extend other profiles, the chain is resolved
// parent-first so a profile wins over everything it extends.
type ProfileConfig struct {
	Name    string   `json:"name"`
	Extends []string `json:"extends"`

	TempMin          *float64       `json:"tempMin"`
	TempMax          *float64       `json:"tempMax"`
	DutyMin          *DutyValue     `json:"dutyMin"`
	DutyMax          *DutyValue     `json:"dutyMax"`
	Interval         *time.Duration `json:"interval"`
	Offset           *int           `json:"offset"`
	DutyDecreaseStep *int           `json:"dutyDecreaseStep"`
}

// ResolveProfile applies the named profile (and everything it extends)
// on top of the given base control configuration. Assumes the
// configuration has been validated, so extends targets exist and the
// extends graph has no cycles.
func ResolveProfile(config *Configuration, name string, base ControlConfig) (ControlConfig, error) {
	profile := findProfile(config, name)
	if profile == nil {
		return base, fmt.Errorf("no profile with name found: %s", name)
	}

	result := base
	for _, parent := range profile.Extends {
		var err error
		result, err = ResolveProfile(config, parent, result)
		if err != nil {
			return base, err
		}
	}

	applyProfile(&result, profile)
	return result, nil
}

func findProfile(config *Configuration, name string) *ProfileConfig {
	for i := range config.Profiles {
		if config.Profiles[i].Name == name {
			return &config.Profiles[i]
		}
	}
	return nil
}

func applyProfile(target *ControlConfig, profile *ProfileConfig) {
	if profile.TempMin != nil {
		target.TempMin = *profile.TempMin
	}
	if profile.TempMax != nil {
		target.TempMax = *profile.TempMax
	}
	if profile.DutyMin != nil {
		target.DutyMin = *profile.DutyMin
	}
	if profile.DutyMax != nil {
		target.DutyMax = *profile.DutyMax
	}
	if profile.Interval != nil {
		target.Interval = *profile.Interval
	}
	if profile.Offset != nil {
		target.Offset = *profile.Offset
	}
	if profile.DutyDecreaseStep != nil {
		target.DutyDecreaseStep = *profile.DutyDecreaseStep
	}
}
