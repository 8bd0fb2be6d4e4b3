// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/neurotap/mindstat/pkg/thinkgear"
	"github.com/spf13/cobra"
)

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test connection by waiting for a valid ThinkGear frame",
	Long: `Wait for a valid ThinkGear frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any
checksum-valid ThinkGear frame, ignoring noise and partial frames.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for checking headset pairing, dongle wiring and baud rates.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runProbe(cmd *cobra.Command, args []string) error {
	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Mindstat - Connection Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for valid ThinkGear frame...\n\n")

	var counters thinkgear.Counters
	decoder := thinkgear.NewFrameDecoder(&counters)

	// Channel for frame reception
	frameChan := make(chan []byte, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			for i := 0; i < n; i++ {
				payload := decoder.Feed(buf[i])
				if payload == nil {
					continue
				}
				// Got a valid frame!
				if skipped := counters.Lifetime(thinkgear.DiscardedBytes); skipped > 0 {
					fmt.Printf("(skipped %d invalid bytes before sync)\n", skipped)
				}
				frame := make([]byte, len(payload))
				copy(frame, payload)
				frameChan <- frame
				return
			}
		}
	}()

	// Wait for frame or timeout
	select {
	case payload := <-frameChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Length: %d bytes\n", len(payload))
		fmt.Printf("  Fields: %s\n", fieldSummary(payload))
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(probeTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}

// fieldSummary lists the field codes present in a payload, in order.
func fieldSummary(payload []byte) string {
	var names []string
	i := 0
	for i < len(payload) {
		code := payload[i]
		names = append(names, thinkgear.FormatFieldCode(code))
		if code < 0x80 {
			i += 2
			continue
		}
		if i+1 >= len(payload) {
			break
		}
		i += 2 + int(payload[i+1])
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
