package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fuzzycharge/core/charging"
	"github.com/kilianp07/fuzzycharge/core/fuzzy"
)

var evalFlags struct {
	soc         float64
	temperature float64
	using       float64
	strict      bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the controller once and show the rule strengths",
	RunE:  runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.Float64Var(&evalFlags.soc, "soc", 0, "state of charge in percent")
	f.Float64Var(&evalFlags.temperature, "temperature", 0, "battery temperature in degrees Celsius")
	f.Float64Var(&evalFlags.using, "using", 0, "device load in percent")
	f.BoolVar(&evalFlags.strict, "strict", false, "reject inputs outside their universe")
	for _, name := range []string{"soc", "temperature", "using"} {
		_ = evaluateCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	var opts []fuzzy.Option
	if evalFlags.strict || cfg.Simulation.StrictDomain {
		opts = append(opts, fuzzy.WithStrictDomain())
	}
	ctrl, err := charging.NewController(cfg.Simulation.Limits, opts...)
	if err != nil {
		return err
	}
	inf, err := ctrl.Explain(evalFlags.soc, evalFlags.temperature, evalFlags.using)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "voltage\t%.4f V\n", inf.Outputs[charging.VarVoltage])
	fmt.Fprintf(tw, "current\t%.4f A\n", inf.Outputs[charging.VarCurrent])
	fmt.Fprintln(tw)
	for _, r := range ctrl.Rules() {
		fmt.Fprintf(tw, "%s\t%.3f\t%s\n", r.Name, inf.Strengths[r.Name], r)
	}
	return tw.Flush()
}
