package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"transitcatalogue.org/internal/router"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	waitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	busStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func newRouteCmd(opts *rootOptions) *cobra.Command {
	var (
		networkPath string
		from, to    string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Print the fastest itinerary between two stops",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, _, err := prepare(cmd, opts, networkPath, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range []string{from, to} {
				if !application.IsStopName(name) {
					fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("Unknown stop %q", name)))
					return writeMetrics(application, metricsFile)
				}
			}

			itinerary, found := application.Route(from, to)
			if !found {
				fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("No route from %s to %s", from, to)))
			} else {
				printItinerary(out, from, to, itinerary)
			}
			return writeMetrics(application, metricsFile)
		},
	}

	cmd.Flags().StringVarP(&networkPath, "network", "n", "", "Network source: JSON document, text file, GTFS zip or URL")
	cmd.Flags().StringVar(&from, "from", "", "Departure stop name")
	cmd.Flags().StringVar(&to, "to", "", "Arrival stop name")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func printItinerary(w io.Writer, from, to string, itinerary router.Itinerary) {
	fmt.Fprintf(w, "%s %s\n",
		headerStyle.Render(fmt.Sprintf("%s → %s", from, to)),
		timeStyle.Render(formatMinutes(itinerary.TotalTime)))

	if len(itinerary.Items) == 0 {
		fmt.Fprintln(w, waitStyle.Render("  You are already there."))
		return
	}

	for _, item := range itinerary.Items {
		switch item.Kind {
		case router.Wait:
			fmt.Fprintf(w, "  %s %s\n",
				waitStyle.Render("Wait at "+item.StopName),
				timeStyle.Render(formatMinutes(item.Time)))
		case router.Ride:
			stops := "stops"
			if item.SpanCount == 1 {
				stops = "stop"
			}
			fmt.Fprintf(w, "  %s %s %s\n",
				busStyle.Render("Bus "+item.Bus),
				fmt.Sprintf("for %d %s", item.SpanCount, stops),
				timeStyle.Render(formatMinutes(item.Time)))
		}
	}
}

func formatMinutes(minutes float64) string {
	return fmt.Sprintf("%.2f min", minutes)
}
