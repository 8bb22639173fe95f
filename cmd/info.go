package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heimdallmaps/heimdall/internal/raster"
	"github.com/heimdallmaps/heimdall/internal/raster/gdal"
	"github.com/heimdallmaps/heimdall/internal/stats"
)

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Describe a raster file",
	Long: `Print the dimensions, georeferencing and band statistics of a raster.

The path may be a local file or a /vsicurl/ URL for remote rasters.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	backend := gdal.New()

	ds, err := backend.Open(args[0])
	if err != nil {
		return err
	}
	defer ds.Close()

	width, height := ds.Size()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Size:           %dx%d\n", width, height)
	fmt.Fprintf(out, "Bands:          %d\n", ds.BandCount())
	fmt.Fprintf(out, "Georeferenced:  %v\n", raster.IsGeoreferenced(ds))

	if proj := ds.Projection(); proj != "" {
		fmt.Fprintf(out, "Projection:     %s\n", proj)
	}
	if native, err := raster.NativeBounds(ds); err == nil {
		fmt.Fprintf(out, "Native bounds:  %g,%g to %g,%g\n",
			native.Min[0], native.Min[1], native.Max[0], native.Max[1])
	}
	if geo, err := raster.GeoBounds(backend, ds); err == nil && raster.IsGeoreferenced(ds) {
		fmt.Fprintf(out, "Geo bounds:     %g,%g to %g,%g\n",
			geo.Min[0], geo.Min[1], geo.Max[0], geo.Max[1])
	}
	if nodata, ok := ds.NoData(1); ok {
		fmt.Fprintf(out, "NoData:         %g\n", nodata)
	}

	for _, s := range stats.ComputeAll(ds) {
		fmt.Fprintf(out, "Band %d:         min=%g max=%g mean=%g stddev=%g\n",
			s.Band, s.Min, s.Max, s.Mean, s.StdDev)
	}
	return nil
}
