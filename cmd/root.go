package cmd

import (
	"fmt"
	"os"

	"github.com/loislo/fan-control/cmd/channel"
	"github.com/loislo/fan-control/cmd/config"
	"github.com/loislo/fan-control/cmd/global"
	"github.com/loislo/fan-control/cmd/sensor"
	"github.com/loislo/fan-control/internal"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fan-control",
	Short: "A daemon to control the fans of a computer.",
	Long: `fan-control is a simple daemon that drives the fans
on your computer along a temperature curve.`,
	// this is the default command to run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		setupUi()
		printHeader()

		loadAndValidateConfig()

		internal.RunDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/fan-control.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")

	rootCmd.AddCommand(config.Command)

	rootCmd.AddCommand(channel.Command)
	rootCmd.AddCommand(sensor.Command)
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// loadAndValidateConfig reads the config file, applies the selected
// profile and validates the result, fatal on any problem
func loadAndValidateConfig() {
	configPath := configuration.DetectConfigFile()
	if len(configPath) > 0 {
		ui.Info("Using configuration file at: %s", configPath)
	}
	configuration.LoadConfig()

	profile := configuration.CurrentConfig.Profile
	if len(profile) > 0 {
		resolved, err := configuration.ResolveProfile(&configuration.CurrentConfig, profile, configuration.CurrentConfig.Control)
		if err != nil {
			ui.Fatal("Cannot apply profile %s: %v", profile, err)
		}
		configuration.CurrentConfig.Control = resolved
		ui.Info("Using profile: %s", profile)
	}

	// validate after the profile overrides are in place
	if err := configuration.Validate(); err != nil {
		ui.ErrorAndNotify("Config Validation Error", "%v", err)
		os.Exit(1)
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("fan", pterm.NewStyle(pterm.FgLightBlue)),
		pterm.NewLettersFromStringWithStyle("ctl", pterm.NewStyle(pterm.FgWhite)),
	).Render()
	if err != nil {
		fmt.Println("fan-control")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
