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

	"github.com/neurotap/mindstat/pkg/thinkgear"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Display every decoded frame in human-readable format",
	Long: `Continuously decode and display ThinkGear frames as they arrive.

Each checksum-valid frame is printed with a timestamp, its length and one
line per field. Structurally damaged payload tails are hex dumped rather
than silently dropped.

A statistics summary is printed on exit.

Supports both serial and WebSocket connections.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Mindstat - Frame Watch\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	var counters thinkgear.Counters
	decoder := thinkgear.NewFrameDecoder(&counters)
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

	for {
		select {
		case chunk := <-chunks:
			stats.AddBytes(len(chunk))
			for _, b := range chunk {
				payload := decoder.Feed(b)
				if payload == nil {
					continue
				}
				stats.AddFrame()
				fmt.Print(thinkgear.FormatFrame(payload, time.Now()))
			}

		case err := <-readErr:
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
			} else {
				log.Printf("Read error: %v", err)
			}
			fmt.Printf("\n%s", stats.String())
			return nil

		case <-sigCh:
			fmt.Printf("\n%s", stats.String())
			return nil
		}
	}
}
