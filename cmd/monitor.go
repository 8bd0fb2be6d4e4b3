// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neurotap/mindstat/pkg/thinkgear"
	"github.com/spf13/cobra"
)

var (
	monitorPlot     bool
	monitorSteps    int
	monitorHeight   int
	monitorChannels []string
	monitorOutRate  int
	monitorBurst    int
	monitorTickMs   int
	monitorTUI      bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Decode and display live EEG telemetry",
	Long: `Continuously decode ThinkGear frames and emit channel values on stdout.

Two display modes are available:
  diagnostic (default)  Name=value lines for freshly arrived values, with
                        anomaly counter reports between updates
  plot (--plot)         tab-separated interpolation rows suited for a
                        serial plotter or spreadsheet

Output is paced against a byte budget (--out-rate, --burst) so a slow
terminal or pipe never stalls decoding; updates that cannot be written in
time are dropped and counted instead of queued.

Status banners and the exit summary go to stderr. stdout carries only
decoded output, so it can be piped:

  mindstat monitor -p /dev/ttyUSB0 --plot --channels Delta,Theta > plot.tsv

With --tui a full-screen dashboard replaces the text output.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorPlot, "plot", false, "Start in plot mode (tab-separated rows)")
	monitorCmd.Flags().IntVar(&monitorSteps, "steps", thinkgear.DefaultPlotSteps, "Interpolation steps per plot cycle")
	monitorCmd.Flags().IntVar(&monitorHeight, "height", thinkgear.DefaultPlotHeight, "Plot value range height")
	monitorCmd.Flags().StringSliceVar(&monitorChannels, "channels", []string{"all"}, "Channels to plot (comma separated, or 'all')")
	monitorCmd.Flags().IntVar(&monitorOutRate, "out-rate", 11520, "Output budget in bytes/second")
	monitorCmd.Flags().IntVar(&monitorBurst, "burst", 512, "Output burst capacity in bytes")
	monitorCmd.Flags().IntVar(&monitorTickMs, "tick-ms", 10, "Tick interval in milliseconds")
	monitorCmd.Flags().BoolVar(&monitorTUI, "tui", false, "Full-screen dashboard instead of text output")
}

// applyMonitorConfig layers file settings under flags the user left alone.
func applyMonitorConfig(cmd *cobra.Command) {
	if fileConfig == nil {
		return
	}
	mon := fileConfig.Monitor
	flags := cmd.Flags()
	if !flags.Changed("plot") && mon.Plot {
		monitorPlot = true
	}
	if !flags.Changed("steps") && mon.Steps != 0 {
		monitorSteps = mon.Steps
	}
	if !flags.Changed("height") && mon.Height != 0 {
		monitorHeight = mon.Height
	}
	if !flags.Changed("channels") && len(mon.Channels) > 0 {
		monitorChannels = mon.Channels
	}
	if !flags.Changed("out-rate") && mon.OutRate != 0 {
		monitorOutRate = mon.OutRate
	}
	if !flags.Changed("burst") && mon.Burst != 0 {
		monitorBurst = mon.Burst
	}
	if !flags.Changed("tick-ms") && mon.TickMs != 0 {
		monitorTickMs = mon.TickMs
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	applyMonitorConfig(cmd)

	if monitorTickMs <= 0 {
		return fmt.Errorf("--tick-ms must be positive")
	}

	selection, err := thinkgear.ParseSelection(monitorChannels)
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if monitorTUI {
		return runDashboard(conn, connInfo, selection)
	}

	mode := thinkgear.ModeDiagnostic
	if monitorPlot {
		mode = thinkgear.ModePlot
	}

	fmt.Fprintf(os.Stderr, "Mindstat - Live Monitor\n")
	fmt.Fprintf(os.Stderr, "Connection: %s\n", connInfo)
	fmt.Fprintf(os.Stderr, "Mode: %s | Output budget: %d bytes/sec (burst %d)\n", mode, monitorOutRate, monitorBurst)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to exit\n\n")

	src := newStreamSource(conn)
	sink := thinkgear.NewPacedSink(os.Stdout, monitorOutRate, monitorBurst)
	controls := thinkgear.FixedControls{DisplayMode: mode, Channels: selection}
	pump := thinkgear.NewPump(src, sink, controls, monitorSteps, monitorHeight)

	ticker := time.NewTicker(time.Duration(monitorTickMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			pump.Tick()
			if src.Done() {
				if err := src.Err(); err != nil && err != io.EOF && err != ErrConnectionClosed {
					fmt.Fprintf(os.Stderr, "\nRead error: %v\n", err)
				}
				printMonitorSummary(pump)
				return nil
			}

		case <-sigCh:
			printMonitorSummary(pump)
			return nil
		}
	}
}

// printMonitorSummary dumps session statistics and pump health figures
// to stderr.
func printMonitorSummary(pump *thinkgear.Pump) {
	diag := pump.Diagnostics()
	fmt.Fprintf(os.Stderr, "\n%s", pump.Stats().String())
	fmt.Fprintf(os.Stderr, "Max input backlog: %d bytes\n", diag.MaxBuffered)
	fmt.Fprintf(os.Stderr, "Max tick gap:      %s\n", diag.MaxTickGap)
}
