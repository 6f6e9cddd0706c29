// Command rulpipe trains and inspects RUL regression models on C-MAPSS
// turbofan data.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/rulpipe/analysis"
	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/log"
	"github.com/YuminosukeSato/rulpipe/pipeline"
)

func main() {
	root := &cobra.Command{
		Use:           "rulpipe",
		Short:         "train RUL regression models on C-MAPSS turbofan data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(trainCmd(), analyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rulpipe: %v\n", err)
		os.Exit(1)
	}
}

func trainCmd() *cobra.Command {
	var configPath string
	var loglevel string
	cfg := pipeline.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "train DATA_PATH",
		Short: "run the full training pipeline and print the evaluation report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.SetupLogger(loglevel); err != nil {
				return err
			}

			if configPath != "" {
				loaded, err := pipeline.LoadConfig(configPath)
				if err != nil {
					return err
				}
				// Flags set on the command line win over file values.
				overrides := cfg
				cfg = loaded
				if cmd.Flags().Changed("subset") {
					cfg.Subset = overrides.Subset
				}
				if cmd.Flags().Changed("impute") {
					cfg.MissingValueStrategy = overrides.MissingValueStrategy
				}
				if cmd.Flags().Changed("fe-strategy") {
					cfg.FEStrategy = overrides.FEStrategy
				}
				if cmd.Flags().Changed("algorithm") {
					cfg.Algorithm = overrides.Algorithm
				}
				if cmd.Flags().Changed("features") {
					cfg.Features = overrides.Features
				}
				if cmd.Flags().Changed("outlier") {
					cfg.OutlierMethod = overrides.OutlierMethod
				}
				if cmd.Flags().Changed("split-ratio") {
					cfg.SplitRatio = overrides.SplitRatio
				}
				if cmd.Flags().Changed("seed") {
					cfg.RandomSeed = overrides.RandomSeed
				}
				if cmd.Flags().Changed("group-by-engine") {
					cfg.GroupByEngine = overrides.GroupByEngine
				}
			}
			if len(args) == 1 {
				cfg.FilePath = args[0]
			}

			result, err := pipeline.Run(cfg, pipeline.NewLogRecorder(os.Stderr))
			if err != nil {
				return err
			}

			fmt.Printf("algorithm: %s\n", result.Model.Algorithm)
			if result.OutliersRemoved > 0 {
				fmt.Printf("training outliers removed: %d\n", result.OutliersRemoved)
			}
			names := make([]string, 0, len(result.Report))
			for name := range result.Report {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%-5s %.4f\n", name, result.Report[name])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "yaml config file; flags override its values")
	cmd.Flags().StringVar(&loglevel, "loglevel", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&cfg.Subset, "subset", cfg.Subset, "C-MAPSS subset (FD001..FD004)")
	cmd.Flags().StringVar(&cfg.MissingValueStrategy, "impute", cfg.MissingValueStrategy,
		"missing value strategy (mean, median, most_frequent, constant)")
	cmd.Flags().StringVar(&cfg.FEStrategy, "fe-strategy", cfg.FEStrategy,
		"feature engineering strategy (standard_scaling, minmax_scaling, log, onehot_encoding)")
	cmd.Flags().StringVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "model algorithm (hgb, linreg)")
	cmd.Flags().StringSliceVar(&cfg.Features, "features", nil,
		"feature columns; empty uses every column except the engine id and the target")
	cmd.Flags().StringVar(&cfg.OutlierMethod, "outlier", cfg.OutlierMethod,
		"outlier method (z_score, iqr); empty disables filtering")
	cmd.Flags().Float64Var(&cfg.SplitRatio, "split-ratio", cfg.SplitRatio, "train fraction in (0, 1)")
	cmd.Flags().Int64Var(&cfg.RandomSeed, "seed", cfg.RandomSeed, "random seed for the split")
	cmd.Flags().BoolVar(&cfg.GroupByEngine, "group-by-engine", cfg.GroupByEngine,
		"keep each engine's cycles on one side of the split")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var loglevel string
	var subsetName string
	var histPath string
	var histBins int
	var sensor string
	var engineID float64
	var trajectoryPath string

	cmd := &cobra.Command{
		Use:   "analyze DATA_PATH",
		Short: "print descriptive statistics and optionally render plots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.SetupLogger(loglevel); err != nil {
				return err
			}

			subset, err := dataset.ParseSubset(subsetName)
			if err != nil {
				return err
			}
			ingestor, err := dataset.NewIngestor(args[0])
			if err != nil {
				return err
			}
			ds, err := ingestor.Ingest(args[0], subset)
			if err != nil {
				return err
			}
			labeled, err := dataset.AddRUL(ds.Train)
			if err != nil {
				return err
			}

			summaries, err := analysis.Describe(labeled)
			if err != nil {
				return err
			}
			fmt.Printf("%-12s %8s %8s %10s %10s %10s %10s %10s\n",
				"column", "count", "missing", "mean", "std", "min", "median", "max")
			for _, name := range labeled.Columns() {
				s := summaries[name]
				fmt.Printf("%-12s %8d %8d %10.3f %10.3f %10.3f %10.3f %10.3f\n",
					name, s.Count, s.Missing, s.Mean, s.Std, s.Min, s.Median, s.Max)
			}

			if histPath != "" {
				if err := analysis.SaveRULHistogram(labeled, histBins, histPath); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", histPath)
			}
			if trajectoryPath != "" {
				if err := analysis.SaveSensorTrajectory(labeled, engineID, sensor, trajectoryPath); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", trajectoryPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&loglevel, "loglevel", "warn", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&subsetName, "subset", string(dataset.FD001), "C-MAPSS subset (FD001..FD004)")
	cmd.Flags().StringVar(&histPath, "rul-hist", "", "write a RUL histogram to this file")
	cmd.Flags().IntVar(&histBins, "bins", 30, "histogram bin count")
	cmd.Flags().StringVar(&sensor, "sensor", "s2", "sensor column for the trajectory plot")
	cmd.Flags().Float64Var(&engineID, "engine", 1, "engine id for the trajectory plot")
	cmd.Flags().StringVar(&trajectoryPath, "trajectory", "", "write a sensor trajectory plot to this file")
	return cmd
}
