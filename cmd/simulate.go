// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package cmd

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neurotap/mindstat/pkg/thinkgear"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	simRate    int
	simCount   int
	simCorrupt float64
	simSeed    int64
	simRaw     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Emit a synthetic ThinkGear byte stream on stdout",
	Long: `Generate the byte stream of a simulated headset on stdout.

Each update carries poor-signal, the eight EEG power bands, attention and
meditation in one frame, matching the once-per-second summary a real
headset emits. Values follow bounded random walks. With --raw a burst of
raw wave frames accompanies every update.

The stream is binary and meant to be piped or redirected:

  mindstat simulate --count 60 --seed 1 > session.bin
  mindstat simulate --corrupt 5 | hexdump -C

--corrupt flips one bit in the given percentage of frames to exercise
checksum and resync handling downstream.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().IntVar(&simRate, "rate", 1, "Updates per second")
	simulateCmd.Flags().IntVar(&simCount, "count", 0, "Stop after this many updates (0 = run until interrupted)")
	simulateCmd.Flags().Float64Var(&simCorrupt, "corrupt", 0, "Percentage of frames to corrupt")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed (0 = time-based)")
	simulateCmd.Flags().BoolVar(&simRaw, "raw", false, "Interleave raw wave frames")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simRate <= 0 {
		return fmt.Errorf("--rate must be positive")
	}
	if term.IsTerminal(int(syscall.Stdout)) {
		return fmt.Errorf("stdout is a terminal; redirect the stream to a file or pipe")
	}

	seed := simSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	fmt.Fprintf(os.Stderr, "Mindstat - Headset Simulator\n")
	fmt.Fprintf(os.Stderr, "Rate: %d updates/sec | Corrupt: %.1f%% | Seed: %d\n", simRate, simCorrupt, seed)
	if simCount > 0 {
		fmt.Fprintf(os.Stderr, "Stopping after %d updates\n", simCount)
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	walk := newSignalWalk(rng)

	ticker := time.NewTicker(time.Second / time.Duration(simRate))
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	sent := 0
	for {
		select {
		case <-ticker.C:
			frame := walk.nextFrame(rng, simRaw)
			if simCorrupt > 0 && rng.Float64()*100 < simCorrupt {
				corruptFrame(rng, frame)
			}
			if _, err := out.Write(frame); err != nil {
				return err
			}
			if err := out.Flush(); err != nil {
				return err
			}
			sent++
			if simCount > 0 && sent >= simCount {
				fmt.Fprintf(os.Stderr, "Emitted %d updates\n", sent)
				return nil
			}

		case <-sigCh:
			fmt.Fprintf(os.Stderr, "\nEmitted %d updates\n", sent)
			return nil
		}
	}
}

// signalWalk holds the random walk state behind the synthetic values.
type signalWalk struct {
	attention  int
	meditation int
	signal     int
	bands      [thinkgear.BandCount]int
}

func newSignalWalk(rng *rand.Rand) *signalWalk {
	w := &signalWalk{attention: 50, meditation: 50}
	for i := range w.bands {
		w.bands[i] = 20000 + rng.Intn(80000)
	}
	return w
}

// walkStep moves v by a bounded random amount, clamped to [lo, hi].
func walkStep(rng *rand.Rand, v, spread, lo, hi int) int {
	v += rng.Intn(2*spread+1) - spread
	return thinkgear.Clamp(v, lo, hi)
}

// nextFrame advances the walk and encodes one summary frame, optionally
// followed by a burst of raw wave frames.
func (w *signalWalk) nextFrame(rng *rand.Rand, includeRaw bool) []byte {
	w.attention = walkStep(rng, w.attention, 7, 0, 100)
	w.meditation = walkStep(rng, w.meditation, 7, 0, 100)
	// Occasional electrode contact glitch
	if rng.Intn(20) == 0 {
		w.signal = walkStep(rng, w.signal, 60, 0, 200)
	} else {
		w.signal = walkStep(rng, w.signal, 5, 0, 200)
	}

	bands := make([]uint32, thinkgear.BandCount)
	for i := range w.bands {
		w.bands[i] = walkStep(rng, w.bands[i], w.bands[i]/4+1, 100, 1<<23)
		bands[i] = uint32(w.bands[i])
	}

	payload := thinkgear.AppendByteField(nil, thinkgear.CodePoorSignal, byte(w.signal))
	payload = thinkgear.AppendBands(payload, bands...)
	payload = thinkgear.AppendByteField(payload, thinkgear.CodeAttention, byte(w.attention))
	payload = thinkgear.AppendByteField(payload, thinkgear.CodeMeditation, byte(w.meditation))
	frame := thinkgear.MustEncodeFrame(payload)

	if includeRaw {
		for i := 0; i < 8; i++ {
			raw := thinkgear.AppendRawWave(nil, int16(rng.Intn(2048)-1024))
			frame = append(frame, thinkgear.MustEncodeFrame(raw)...)
		}
	}
	return frame
}

// corruptFrame flips one bit somewhere past the sync bytes.
func corruptFrame(rng *rand.Rand, frame []byte) {
	if len(frame) <= 2 {
		return
	}
	i := 2 + rng.Intn(len(frame)-2)
	frame[i] ^= byte(1 << rng.Intn(8))
}
