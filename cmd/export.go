// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/neurotap/mindstat/pkg/session"
	"github.com/neurotap/mindstat/pkg/thinkgear"
	"github.com/spf13/cobra"
)

var (
	exportInput  string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a session capture to text or CSV",
	Long: `Read a CBOR capture written by 'mindstat record' and print it on stdout.

Formats:
  text  one line per reading with the plotted channel values
  csv   a header row, then one row per reading with every tracked channel

  mindstat export -i session.cap --format csv > session.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Capture file to read")
	exportCmd.Flags().StringVar(&exportFormat, "format", "text", "Output format: text or csv")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportInput == "" {
		return fmt.Errorf("--input must be specified")
	}

	f, err := os.Open(exportInput)
	if err != nil {
		return fmt.Errorf("open %s: %v", exportInput, err)
	}
	defer f.Close()

	reader, err := session.NewReader(f)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "text":
		return exportText(reader)
	case "csv":
		return exportCSV(reader)
	default:
		return fmt.Errorf("unknown format %q (use text or csv)", exportFormat)
	}
}

func exportText(r *session.Reader) error {
	header := r.Header()
	fmt.Printf("Capture v%d", header.Version)
	if header.Source != "" {
		fmt.Printf(" from %s", header.Source)
	}
	fmt.Printf(", started %s\n\n", header.CreatedAt().Format(time.RFC3339))

	for {
		reading, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "[%s]", reading.At().Format("15:04:05.000"))
		for ch := thinkgear.Channel(0); ch < thinkgear.PlottedChannels; ch++ {
			fmt.Fprintf(&b, " %s=%d", ch.Name(), reading.Value(ch))
		}
		fmt.Println(b.String())
	}
}

func exportCSV(r *session.Reader) error {
	w := csv.NewWriter(os.Stdout)

	header := make([]string, 0, thinkgear.ChannelCount+1)
	header = append(header, "time")
	for ch := thinkgear.Channel(0); ch < thinkgear.ChannelCount; ch++ {
		header = append(header, ch.Name())
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, thinkgear.ChannelCount+1)
	for {
		reading, err := r.Next()
		if err == io.EOF {
			w.Flush()
			return w.Error()
		}
		if err != nil {
			return err
		}

		row[0] = reading.At().UTC().Format(time.RFC3339Nano)
		for ch := thinkgear.Channel(0); ch < thinkgear.ChannelCount; ch++ {
			row[int(ch)+1] = strconv.FormatUint(uint64(reading.Value(ch)), 10)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
}
