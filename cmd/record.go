// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neurotap/mindstat/pkg/session"
	"github.com/neurotap/mindstat/pkg/thinkgear"
	"github.com/spf13/cobra"
)

var (
	recordOutput   string
	recordDuration int
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Capture decoded values to a session file",
	Long: `Decode the incoming stream and append one reading to a CBOR capture
file for every completed EEG power update.

The capture holds a header (format version, start time, source) followed
by a flat sequence of readings, each carrying every tracked channel
value at that instant. Use 'mindstat export' to turn a capture into text
or CSV.

Recording stops after --duration seconds, when the connection closes, or
on Ctrl+C.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "Capture file to write")
	recordCmd.Flags().IntVar(&recordDuration, "duration", 0, "Stop after this many seconds (0 = run until interrupted)")
}

func runRecord(cmd *cobra.Command, args []string) error {
	if recordOutput == "" {
		return fmt.Errorf("--output must be specified")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Create(recordOutput)
	if err != nil {
		return fmt.Errorf("create %s: %v", recordOutput, err)
	}
	defer f.Close()

	writer, err := session.NewWriter(f, connInfo)
	if err != nil {
		return err
	}

	fmt.Printf("Mindstat - Session Recorder\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Capture: %s\n", recordOutput)
	if recordDuration > 0 {
		fmt.Printf("Duration: %d seconds\n", recordDuration)
	}
	fmt.Printf("Press Ctrl+C to stop\n\n")

	var counters thinkgear.Counters
	var store thinkgear.ValueStore
	frames := thinkgear.NewFrameDecoder(&counters)
	fields := thinkgear.NewPayloadDecoder(&store, &counters)
	stats := thinkgear.NewStatistics(&counters)

	// Channel for non-blocking serial reads
	chunks := make(chan []byte, 16)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				chunks <- chunk
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var stop <-chan time.Time
	if recordDuration > 0 {
		timer := time.NewTimer(time.Duration(recordDuration) * time.Second)
		defer timer.Stop()
		stop = timer.C
	}

	for {
		select {
		case chunk := <-chunks:
			stats.AddBytes(len(chunk))
			for _, b := range chunk {
				payload := frames.Feed(b)
				if payload == nil {
					continue
				}
				stats.AddFrame()
				fields.Decode(payload)
				// One reading per completed band update
				if !store.BandsFresh() {
					continue
				}
				if err := writer.Append(session.Snapshot(time.Now(), &store)); err != nil {
					return err
				}
				store.ClearBands()
			}

		case err := <-readErr:
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
			} else {
				log.Printf("Read error: %v", err)
			}
			return finishRecording(writer, stats)

		case <-sigCh:
			return finishRecording(writer, stats)

		case <-stop:
			return finishRecording(writer, stats)
		}
	}
}

func finishRecording(w *session.Writer, stats *thinkgear.Statistics) error {
	fmt.Printf("\nRecorded %d readings\n\n", w.Count())
	fmt.Print(stats.String())
	return nil
}
