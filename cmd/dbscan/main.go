package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/TrevorS/dbscan"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type options struct {
	Eps        float64
	MinPts     int
	Metric     string
	MinkowskiP float64
	Algorithm  string
	LeafSize   int
	Workers    int
	HasHeader  bool
	LabelsOnly bool
}

var opts = options{}

var rootCmd = &cobra.Command{
	Use:   "dbscan [input.csv]",
	Short: "density-based clustering of CSV point data",
	Long: `
dbscan reads points from a CSV file (or stdin when no file is given), one point
per row with one numeric column per dimension, clusters them with DBSCAN, and
writes the input rows back to stdout with the cluster label appended as the
last column. Noise points get the label -1.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		in := io.Reader(os.Stdin)
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		header, points, err := readPoints(in, opts.HasHeader)
		if err != nil {
			return err
		}

		cfg, err := buildConfig(opts)
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(points),
				progressbar.OptionSetDescription("Clustering"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			cfg.Progress = func(pointsProcessed, _ int) {
				_ = bar.Set(pointsProcessed)
			}
		}

		result, err := dbscan.Cluster(points, cfg)
		if err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Finish()
		}

		log.Printf("%d points, %d clusters, %d noise",
			len(points), len(result.Clusters), len(result.Noise))

		return writeResult(os.Stdout, header, points, result, opts.LabelsOnly)
	},
}

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	rootCmd.Flags().Float64Var(&opts.Eps, "eps", 0.5,
		"neighborhood radius: points within this distance are neighbors")
	rootCmd.Flags().IntVar(&opts.MinPts, "min-pts", 5,
		"minimum neighborhood size (point included) for a core point")
	rootCmd.Flags().StringVar(&opts.Metric, "metric", "euclidean",
		"distance metric: euclidean, manhattan, chebyshev, cosine, minkowski")
	rootCmd.Flags().Float64Var(&opts.MinkowskiP, "minkowski-p", 3,
		"exponent for the minkowski metric")
	rootCmd.Flags().StringVar(&opts.Algorithm, "algorithm", "auto",
		"range-query index: auto, brute, kdtree, balltree")
	rootCmd.Flags().IntVar(&opts.LeafSize, "leaf-size", 40,
		"maximum points per spatial tree leaf")
	rootCmd.Flags().IntVar(&opts.Workers, "workers", 0,
		"goroutines for the brute-force distance matrix (0 = all CPUs)")
	rootCmd.Flags().BoolVar(&opts.HasHeader, "header", false,
		"treat the first CSV row as a header")
	rootCmd.Flags().BoolVar(&opts.LabelsOnly, "labels-only", false,
		"print only the cluster label per row instead of echoing the input")
}

// readPoints parses CSV rows into points. Every row must have the same number
// of numeric columns. When hasHeader is set the first row is returned
// separately instead of being parsed.
func readPoints(r io.Reader, hasHeader bool) ([]string, [][]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var header []string
	var points [][]float64

	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if line == 1 && hasHeader {
			header = record
			continue
		}

		point := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d column %d: %q is not a number", line, i+1, field)
			}
			point[i] = v
		}
		if len(points) > 0 && len(point) != len(points[0]) {
			return nil, nil, fmt.Errorf("line %d: expected %d columns, got %d", line, len(points[0]), len(point))
		}
		points = append(points, point)
	}

	return header, points, nil
}

// buildConfig translates CLI flags into a clustering config.
func buildConfig(o options) (dbscan.Config, error) {
	cfg := dbscan.DefaultConfig()
	cfg.Eps = o.Eps
	cfg.MinPts = o.MinPts
	cfg.Algorithm = dbscan.Algorithm(o.Algorithm)
	cfg.LeafSize = o.LeafSize
	cfg.Workers = o.Workers

	switch o.Metric {
	case "euclidean":
		cfg.Metric = dbscan.EuclideanMetric{}
	case "manhattan":
		cfg.Metric = dbscan.ManhattanMetric{}
	case "chebyshev":
		cfg.Metric = dbscan.ChebyshevMetric{}
	case "cosine":
		cfg.Metric = dbscan.CosineMetric{}
	case "minkowski":
		if o.MinkowskiP < 1 {
			return cfg, fmt.Errorf("minkowski-p must be >= 1, got %v", o.MinkowskiP)
		}
		cfg.Metric = dbscan.MinkowskiMetric{P: o.MinkowskiP}
	default:
		return cfg, fmt.Errorf("unknown metric %q", o.Metric)
	}

	return cfg, nil
}

// writeResult echoes the input rows with the label appended, or just the
// labels when labelsOnly is set.
func writeResult(w io.Writer, header []string, points [][]float64, result *dbscan.Result, labelsOnly bool) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if labelsOnly {
		for _, label := range result.Labels {
			if err := cw.Write([]string{strconv.Itoa(label)}); err != nil {
				return err
			}
		}
		return cw.Error()
	}

	if header != nil {
		if err := cw.Write(append(header, "cluster")); err != nil {
			return err
		}
	}
	for i, point := range points {
		record := make([]string, 0, len(point)+1)
		for _, v := range point {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		record = append(record, strconv.Itoa(result.Labels[i]))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return cw.Error()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
