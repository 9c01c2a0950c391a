package configuration

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DutyValue is a PWM duty value in the range [0..255]. In the config it
// can be given either as a plain integer or as a percentage string like
// "50%", which is mapped onto the 0..255 range.
type DutyValue int

// ParseDutyValue parses "NN%" or a plain integer into a DutyValue.
// Range checks happen during validation, not here.
func ParseDutyValue(text string) (DutyValue, error) {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "%") {
		percent, err := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse duty percentage %q: %w", text, err)
		}
		return DutyValue(math.Round(percent / 100.0 * 255)), nil
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duty value %q: %w", text, err)
	}
	return DutyValue(value), nil
}

// DutyValueHookFunc returns a mapstructure decode hook that handles
// both integer and percentage-string duty values.
func DutyValueHookFunc() mapstructure.DecodeHookFuncType {
	dutyValueType := reflect.TypeOf(DutyValue(0))

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != dutyValueType {
			return data, nil
		}

		switch v := data.(type) {
		case int:
			return DutyValue(v), nil
		case int64:
			return DutyValue(v), nil
		case float64:
			return DutyValue(v), nil
		case string:
			return ParseDutyValue(v)
		}
		return data, nil
	}
}
