package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validControlConfig() ControlConfig {
	return ControlConfig{
		TempMin:          45,
		TempMax:          80,
		DutyMin:          10,
		DutyMax:          255,
		Interval:         2 * time.Second,
		DutyDecreaseStep: 5,
	}
}

func validCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{
		DutyLow:                  128,
		DutyHigh:                 220,
		RpmDeltaThreshold:        50,
		RpmDeltaPercentThreshold: 5.0,
		ModePreferenceFactor:     1.2,
		SettleTime:               3 * time.Second,
		ResponseTime:             4 * time.Second,
	}
}

func TestValidateControlOk(t *testing.T) {
	// GIVEN
	config := validControlConfig()

	// WHEN
	err := validateControl(&config)

	// THEN
	assert.NoError(t, err)
}

func TestValidateControlTempRangeInverted(t *testing.T) {
	// GIVEN
	config := validControlConfig()
	config.TempMin = 80
	config.TempMax = 45

	// WHEN
	err := validateControl(&config)

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tempMax")
}

func TestValidateControlTempRangeEqual(t *testing.T) {
	// GIVEN
	config := validControlConfig()
	config.TempMin = 60
	config.TempMax = 60

	// WHEN
	err := validateControl(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateControlDutyRangeInverted(t *testing.T) {
	// GIVEN
	config := validControlConfig()
	config.DutyMin = 200
	config.DutyMax = 100

	// WHEN
	err := validateControl(&config)

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dutyMin")
}

func TestValidateControlDutyOutOfBounds(t *testing.T) {
	// GIVEN
	config := validControlConfig()
	config.DutyMax = 300

	// WHEN
	err := validateControl(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateControlZeroInterval(t *testing.T) {
	// GIVEN
	config := validControlConfig()
	config.Interval = 0

	// WHEN
	err := validateControl(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateCalibrationOk(t *testing.T) {
	// GIVEN
	config := validCalibrationConfig()

	// WHEN
	err := validateCalibration(&config)

	// THEN
	assert.NoError(t, err)
}

func TestValidateCalibrationDutyOrder(t *testing.T) {
	// GIVEN
	config := validCalibrationConfig()
	config.DutyLow = 220
	config.DutyHigh = 128

	// WHEN
	err := validateCalibration(&config)

	// THEN
	assert.Error(t, err)
}

func TestValidateProfilesOk(t *testing.T) {
	// GIVEN
	config := Configuration{
		Control: validControlConfig(),
		Profiles: []ProfileConfig{
			{Name: "quiet"},
			{Name: "silent", Extends: []string{"quiet"}},
		},
	}

	// WHEN
	err := validateProfiles(&config)

	// THEN
	assert.NoError(t, err)
}

func TestValidateProfilesUnknownParent(t *testing.T) {
	// GIVEN
	config := Configuration{
		Profiles: []ProfileConfig{
			{Name: "silent", Extends: []string{"quiet"}},
		},
	}

	// WHEN
	err := validateProfiles(&config)

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")
}

func TestValidateProfilesCycle(t *testing.T) {
	// GIVEN
	config := Configuration{
		Profiles: []ProfileConfig{
			{Name: "a", Extends: []string{"b"}},
			{Name: "b", Extends: []string{"a"}},
		},
	}

	// WHEN
	err := validateProfiles(&config)

	// THEN
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestValidateProfilesDuplicateName(t *testing.T) {
	// GIVEN
	config := Configuration{
		Profiles: []ProfileConfig{
			{Name: "quiet"},
			{Name: "quiet"},
		},
	}

	// WHEN
	err := validateProfiles(&config)

	// THEN
	assert.Error(t, err)
}

func TestResolveProfile(t *testing.T) {
	// GIVEN
	base := validControlConfig()
	tempMax := 70.0
	dutyMax := DutyValue(200)
	offset := -20
	config := Configuration{
		Control: base,
		Profiles: []ProfileConfig{
			{Name: "quiet", TempMax: &tempMax, DutyMax: &dutyMax},
			{Name: "silent", Extends: []string{"quiet"}, Offset: &offset},
		},
	}

	// WHEN
	resolved, err := ResolveProfile(&config, "silent", base)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 70.0, resolved.TempMax)
	assert.Equal(t, DutyValue(200), resolved.DutyMax)
	assert.Equal(t, -20, resolved.Offset)
	// untouched values come from the base config
	assert.Equal(t, 45.0, resolved.TempMin)
	assert.Equal(t, DutyValue(10), resolved.DutyMin)
}

func TestResolveProfileUnknown(t *testing.T) {
	// GIVEN
	config := Configuration{Control: validControlConfig()}

	// WHEN
	_, err := ResolveProfile(&config, "missing", config.Control)

	// THEN
	assert.Error(t, err)
}
