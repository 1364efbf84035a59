package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fuzzycharge/app"
	"github.com/kilianp07/fuzzycharge/core/charging"
	"github.com/kilianp07/fuzzycharge/infra/logger"
	"github.com/kilianp07/fuzzycharge/pkg/export"
	"github.com/kilianp07/fuzzycharge/pkg/report"
)

type simulateFlags struct {
	temperature float64
	using       float64
	capacity    float64
	voltage     float64
	socInit     float64
	socTarget   float64
	maxSteps    int
	strict      bool
	out         string
	format      string
	chart       string
	metricsAddr string
}

var simFlags simulateFlags

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a charge from the initial to the target SoC",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.Float64Var(&simFlags.temperature, "temperature", 0, "battery temperature in degrees Celsius")
	f.Float64Var(&simFlags.using, "using", 0, "device load in percent")
	f.Float64Var(&simFlags.capacity, "capacity", 0, "battery capacity in mAh")
	f.Float64Var(&simFlags.voltage, "voltage", 0, "battery nominal voltage in volts")
	f.Float64Var(&simFlags.socInit, "soc-init", 0, "initial state of charge in percent")
	f.Float64Var(&simFlags.socTarget, "soc-target", 0, "target state of charge in percent")
	f.IntVar(&simFlags.maxSteps, "max-steps", 0, "maximum number of simulated seconds")
	f.BoolVar(&simFlags.strict, "strict", false, "reject controller inputs outside their universe")
	f.StringVarP(&simFlags.out, "out", "o", "", "write the trajectories to this file")
	f.StringVar(&simFlags.format, "format", "csv", "trajectory format: csv or json")
	f.StringVar(&simFlags.chart, "chart", "", "render the SoC and output charts to this HTML file")
	f.StringVar(&simFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address after the run")
	rootCmd.AddCommand(simulateCmd)
}

// applySimulateFlags overrides the configuration with the flags explicitly set.
func applySimulateFlags(cmd *cobra.Command, sim *charging.Config) {
	f := cmd.Flags()
	if f.Changed("temperature") {
		sim.Conditions.Temperature = simFlags.temperature
	}
	if f.Changed("using") {
		sim.Conditions.Utilization = simFlags.using
	}
	if f.Changed("capacity") {
		sim.Battery.CapacityMAh = simFlags.capacity
	}
	if f.Changed("voltage") {
		sim.Battery.NominalVoltage = simFlags.voltage
	}
	if f.Changed("soc-init") {
		sim.SoCInit = simFlags.socInit
	}
	if f.Changed("soc-target") {
		sim.SoCTarget = simFlags.socTarget
	}
	if f.Changed("max-steps") {
		sim.MaxSteps = simFlags.maxSteps
	}
	if f.Changed("strict") {
		sim.StrictDomain = simFlags.strict
	}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if simFlags.format != "csv" && simFlags.format != "json" {
		return fmt.Errorf("unsupported format %q", simFlags.format)
	}
	applySimulateFlags(cmd, &cfg.Simulation)
	if err := cfg.Simulation.Validate(); err != nil {
		return fmt.Errorf("invalid simulation: %w", err)
	}

	svc, err := app.New(cfg, simFlags.metricsAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	res, simErr := svc.Simulate(cfg.Simulation)
	if simErr != nil && !errors.Is(simErr, charging.ErrSimulationStalled) {
		return simErr
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), report.Summary(res, cfg.Simulation)); err != nil {
		return err
	}
	if simFlags.out != "" {
		if err := writeFile(simFlags.out, func(w io.Writer) error {
			return encode(w, simFlags.format, res)
		}); err != nil {
			return fmt.Errorf("write %s: %w", simFlags.out, err)
		}
	}
	if simFlags.chart != "" {
		if err := writeFile(simFlags.chart, func(w io.Writer) error {
			return report.RenderCharts(w, res, cfg.Simulation)
		}); err != nil {
			return fmt.Errorf("write %s: %w", simFlags.chart, err)
		}
	}
	if err := svc.Serve(ctx); err != nil {
		return err
	}
	return simErr
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func encode(w io.Writer, format string, res charging.Result) error {
	if format == "json" {
		return export.WriteJSON(w, res)
	}
	return export.WriteCSV(w, res)
}
