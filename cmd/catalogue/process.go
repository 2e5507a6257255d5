package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"transitcatalogue.org/internal/reader"
)

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var (
		format      string
		metricsFile string
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "process [input]",
		Short: "Load a request document and answer its stat requests",
		Long: `process reads a JSON request document or a text command file (from a
path, a .gz archive or standard input), loads its network and prints one
answer per stat request, in request order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}

			var forceText bool
			switch format {
			case "", "auto":
			case "text":
				forceText = true
			case "json":
				if isTextInput(source) {
					return fmt.Errorf("--format json given for text input %s", source)
				}
			default:
				return fmt.Errorf("unknown format %q (want auto, json or text)", format)
			}
			if isGTFSSource(source) {
				return fmt.Errorf("%s is a GTFS feed; it has no stat requests to process", source)
			}

			application, net, ctx, err := prepare(cmd, opts, source, forceText)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				application.Config.Workers = workers
			}

			responses, err := reader.Process(ctx, application, net.statRequests, application.Config.Workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if net.text {
				if err := reader.WriteText(out, net.statRequests, responses); err != nil {
					return err
				}
			} else {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(responses); err != nil {
					return fmt.Errorf("error writing responses: %w", err)
				}
			}
			return writeMetrics(application, metricsFile)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "auto", "Input format: auto, json or text")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Stat requests answered in parallel (0 = one per CPU)")
	return cmd
}
