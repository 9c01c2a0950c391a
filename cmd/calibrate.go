package cmd

import (
	"github.com/loislo/fan-control/internal"
	"github.com/spf13/cobra"
)

var (
	comprehensive bool
	storedResults bool
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate [channel-id ...]",
	Short: "Test whether the fan channels actually react to duty changes",
	Long: `Drives each channel through a low/high duty sequence and reports whether
the fan followed. With --comprehensive the test runs in both PWM and DC
mode and recommends the better one. Channels are restored afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()
		loadAndValidateConfig()

		if storedResults {
			return internal.PrintCalibrationResults()
		}
		return internal.RunCalibration(comprehensive, args)
	},
}

func init() {
	calibrateCmd.Flags().BoolVarP(&comprehensive, "comprehensive", "C", false, "Also test both electrical modes and recommend one")
	calibrateCmd.Flags().BoolVarP(&storedResults, "results", "r", false, "Print stored calibration results instead of testing")
	rootCmd.AddCommand(calibrateCmd)
}
