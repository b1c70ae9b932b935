package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmarcon/chargesim/core/sizing"
)

var (
	sizeEnergy  float64
	sizeStay    int
	sizeVoltage float64
	sizePeriod  float64
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Find the smallest standard battery for an energy request",
	RunE:  runSize,
}

func init() {
	sizeCmd.Flags().Float64Var(&sizeEnergy, "energy", 20, "requested energy in kWh")
	sizeCmd.Flags().IntVar(&sizeStay, "stay", 720, "stay duration in steps")
	sizeCmd.Flags().Float64Var(&sizeVoltage, "voltage", 220, "AC voltage in V")
	sizeCmd.Flags().Float64Var(&sizePeriod, "period", 1, "step length in minutes")
	rootCmd.AddCommand(sizeCmd)
}

func runSize(cmd *cobra.Command, args []string) error {
	capacity, initCharge, err := sizing.BatteryCapacity(sizeEnergy, sizeStay, sizeVoltage, sizePeriod)
	if err != nil {
		return err
	}
	fmt.Printf("capacity: %.0f kWh\ninitial charge: %.3f kWh\n", capacity, initCharge)
	return nil
}
