package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/geo"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var networkPath string

	cmd := &cobra.Command{
		Use:   "stats [bus...]",
		Short: "Print line statistics, for every bus or the ones named",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, _, err := prepare(cmd, opts, networkPath, false)
			if err != nil {
				return err
			}

			numbers := args
			if len(numbers) == 0 {
				for _, bus := range application.SortedBuses() {
					numbers = append(numbers, bus.Number)
				}
			}

			t := newTable("Bus", "Stops", "Unique", "Length", "Curvature")
			for _, number := range numbers {
				info, found := application.BusStat(number)
				if !found {
					t.Row(number, "not found", "", "", "")
					continue
				}
				t.Row(number,
					strconv.Itoa(info.StopCount),
					strconv.Itoa(info.UniqueStopCount),
					strconv.Itoa(info.RouteLength),
					fmt.Sprintf("%.6g", info.Curvature()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}

	cmd.Flags().StringVarP(&networkPath, "network", "n", "", "Network source: JSON document, text file, GTFS zip or URL")
	_ = cmd.MarkFlagRequired("network")
	return cmd
}

func newNearbyCmd(opts *rootOptions) *cobra.Command {
	var (
		networkPath string
		lat, lng    float64
		radius      float64
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List the stops close to a point, nearest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, _, err := prepare(cmd, opts, networkPath, false)
			if err != nil {
				return err
			}

			center := geo.Coordinates{Lat: lat, Lng: lng}
			stops := application.NearbyStops(center, radius)
			out := cmd.OutOrStdout()
			if len(stops) == 0 {
				fmt.Fprintln(out, "No stops nearby")
				return nil
			}

			t := newTable("Stop", "Distance", "Buses")
			for _, stop := range stops {
				buses, _ := application.StopBuses(stop.Name)
				t.Row(stop.Name,
					fmt.Sprintf("%.0f m", geo.Distance(center, stop.Coordinates)),
					strings.Join(buses, " "))
			}
			fmt.Fprintln(out, t)
			return nil
		},
	}

	cmd.Flags().StringVarP(&networkPath, "network", "n", "", "Network source: JSON document, text file, GTFS zip or URL")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the point")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of the point")
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0, "Search radius in meters (0 = configured default)")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...)
}

// dumpView is what the dump command prints.
type dumpView struct {
	Stops []catalogue.Stop
	Buses []catalogue.Bus
}

func newDumpCmd(opts *rootOptions) *cobra.Command {
	var networkPath string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the loaded stops and buses for debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, _, err := prepare(cmd, opts, networkPath, false)
			if err != nil {
				return err
			}

			config := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
			config.Fdump(cmd.OutOrStdout(), dumpView{
				Stops: application.SortedStops(),
				Buses: application.SortedBuses(),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&networkPath, "network", "n", "", "Network source: JSON document, text file, GTFS zip or URL")
	_ = cmd.MarkFlagRequired("network")
	return cmd
}
