package configuration

import (
	"os"
	"time"

	"github.com/loislo/fan-control/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	// HwMonPath is the root of the kernel hardware-monitor tree
	HwMonPath string `json:"hwMonPath"`
	DbPath    string `json:"dbPath"`

	// StatusFile, if set, receives a JSON control snapshot each tick
	StatusFile string `json:"statusFile"`

	KeyboardControl bool   `json:"keyboardControl"`
	Profile         string `json:"profile"`

	Control     ControlConfig     `json:"control"`
	Calibration CalibrationConfig `json:"calibration"`
	Api         ApiConfig         `json:"api"`
	Statistics  StatisticsConfig  `json:"statistics"`

	Profiles []ProfileConfig `json:"profiles"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("fan-control")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/fan-control/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("HwMonPath", "/sys/class/hwmon")
	viper.SetDefault("DbPath", "/etc/fan-control/fan-control.db")
	viper.SetDefault("StatusFile", "")
	viper.SetDefault("KeyboardControl", true)
	viper.SetDefault("Profile", "")

	viper.SetDefault("Control.TempMin", 45.0)
	viper.SetDefault("Control.TempMax", 80.0)
	viper.SetDefault("Control.DutyMin", 10)
	viper.SetDefault("Control.DutyMax", 255)
	viper.SetDefault("Control.Interval", 2*time.Second)
	viper.SetDefault("Control.Offset", 0)
	viper.SetDefault("Control.DutyDecreaseStep", 5)
	viper.SetDefault("Control.MaxIterations", 0)

	viper.SetDefault("Calibration.DutyLow", 128)
	viper.SetDefault("Calibration.DutyHigh", 220)
	viper.SetDefault("Calibration.RpmDeltaThreshold", 50)
	viper.SetDefault("Calibration.RpmDeltaPercentThreshold", 5.0)
	viper.SetDefault("Calibration.ModePreferenceFactor", 1.2)
	viper.SetDefault("Calibration.SettleTime", 3*time.Second)
	viper.SetDefault("Calibration.ResponseTime", 4*time.Second)
	viper.SetDefault("Calibration.ModeSwitchSettleTime", 3*time.Second)
	viper.SetDefault("Calibration.MaxRpmDiffForSettled", 10.0)

	viper.SetDefault("Api.Enabled", false)
	viper.SetDefault("Api.Host", "localhost")
	viper.SetDefault("Api.Port", 9449)

	viper.SetDefault("Statistics.Enabled", false)

	viper.SetDefault("Profiles", []ProfileConfig{})
}

// DetectConfigFile returns the path of the config file viper settled on
func DetectConfigFile() string {
	return viper.ConfigFileUsed()
}

// LoadConfig reads the config file (if one exists) and unmarshals it
// into CurrentConfig. A missing config file is fine, the defaults
// cover everything.
func LoadConfig() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			ui.Fatal("Error reading config file: %s", err)
		}
	}

	err := viper.Unmarshal(
		&CurrentConfig,
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			DutyValueHookFunc(),
		)),
	)
	if err != nil {
		ui.Fatal("Unable to decode config into struct: %v", err)
	}
}
