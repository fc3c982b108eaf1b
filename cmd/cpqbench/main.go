// Command cpqbench measures the accuracy and latency of closest point
// queries against an exhaustive search on procedural meshes, for one or
// more values of K.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagMesh     string
	flagDetail   int
	flagQueries  int
	flagRadius   float64
	flagShell    float64
	flagKs       []int
	flagSeed     int64
	flagWorkers  int
	flagPlot     string
	flagLogLevel string
	flagLogFile  string
)

var rootCmd = &cobra.Command{
	Use:   "cpqbench",
	Short: "Benchmark closest point on mesh queries",
	Long: `Build a procedural mesh, fire random queries near its surface and
compare the K-nearest-samples search against an exhaustive projection
onto every triangle. Reports miss rate and mean latency per K.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBench,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "YAML query configuration file")
	f.StringVar(&flagMesh, "mesh", "sphere", "mesh to query: sphere, noisy or cube")
	f.IntVar(&flagDetail, "detail", 4, "icosphere subdivision level")
	f.IntVar(&flagQueries, "queries", 10000, "number of random query points")
	f.Float64Var(&flagRadius, "radius", 0.5, "maximum search distance")
	f.Float64Var(&flagShell, "shell", 0.25, "query points are generated within this distance of the unit sphere")
	f.IntSliceVar(&flagKs, "k", nil, "values of K to benchmark, defaults to the configured K")
	f.Int64Var(&flagSeed, "seed", 1, "random seed for mesh noise and query points")
	f.IntVar(&flagWorkers, "workers", 0, "concurrent query workers, 0 uses GOMAXPROCS")
	f.StringVar(&flagPlot, "plot", "", "write a miss rate and latency plot to this PNG file")
	f.StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.StringVar(&flagLogFile, "log-file", "", "also log to this file, rotated")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cpqbench:", err)
		os.Exit(1)
	}
}
