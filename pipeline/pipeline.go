// Package pipeline sequences the training workflow: ingestion, RUL
// labeling, imputation, feature engineering, outlier filtering, splitting,
// model training and evaluation. Each stage consumes the previous stage's
// artifact and produces a new one; no stage mutates its input.
package pipeline

import (
	"log/slog"
	"strings"

	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/metrics"
	"github.com/YuminosukeSato/rulpipe/pkg/log"
	"github.com/YuminosukeSato/rulpipe/preprocessing"
	"github.com/YuminosukeSato/rulpipe/regression"
)

// Result is the outcome of one training run.
type Result struct {
	Report          metrics.Report
	Model           *regression.TrainedModel
	OutliersRemoved int
}

// Run executes the full training workflow for cfg. Rows are partitioned
// into train and test before any statistic is fitted, so imputation fills,
// transform parameters and outlier bounds always come from the training
// partition only. A nil recorder is treated as NopRecorder; recording
// failures are logged and never fail the run.
func Run(cfg Config, rec Recorder) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = NopRecorder{}
	}
	subset, _ := dataset.ParseSubset(cfg.Subset)

	ingestor, err := dataset.NewIngestor(cfg.FilePath)
	if err != nil {
		return nil, err
	}
	ds, err := ingestor.Ingest(cfg.FilePath, subset)
	if err != nil {
		return nil, err
	}

	labeled, err := dataset.AddRUL(ds.Train)
	if err != nil {
		return nil, err
	}
	slog.Info("labeled RUL target", log.StageAttr("label"), slog.Int("rows", labeled.NumRows()))

	featureCols := cfg.Features
	if len(featureCols) == 0 {
		for _, c := range labeled.Columns() {
			if c != dataset.ColEngineID && c != dataset.ColRUL {
				featureCols = append(featureCols, c)
			}
		}
	}

	var groups []float64
	if cfg.GroupByEngine {
		if groups, err = labeled.Column(dataset.ColEngineID); err != nil {
			return nil, err
		}
	}
	trainIdx, testIdx, err := splitIndices(labeled.NumRows(), groups, cfg.SplitRatio, cfg.RandomSeed, true)
	if err != nil {
		return nil, err
	}
	trainTab := labeled.TakeRows(trainIdx)
	testTab := labeled.TakeRows(testIdx)
	slog.Info("split rows", log.StageAttr("split"),
		slog.Int("train_rows", trainTab.NumRows()),
		slog.Int("test_rows", testTab.NumRows()),
		slog.Bool("grouped", cfg.GroupByEngine),
	)

	imputer, err := preprocessing.NewImputer(cfg.MissingValueStrategy)
	if err != nil {
		return nil, err
	}
	if err := imputer.Fit(trainTab); err != nil {
		return nil, err
	}
	if trainTab, err = imputer.Transform(trainTab); err != nil {
		return nil, err
	}
	if testTab, err = imputer.Transform(testTab); err != nil {
		return nil, err
	}
	slog.Info("imputed missing values", log.StageAttr("impute"),
		slog.String("strategy", cfg.MissingValueStrategy))

	transformer, err := preprocessing.NewTransformer(cfg.FEStrategy, featureCols)
	if err != nil {
		return nil, err
	}
	if err := transformer.Fit(trainTab); err != nil {
		return nil, err
	}
	if trainTab, err = transformer.Transform(trainTab); err != nil {
		return nil, err
	}
	if testTab, err = transformer.Transform(testTab); err != nil {
		return nil, err
	}
	slog.Info("engineered features", log.StageAttr("transform"),
		slog.String("strategy", cfg.FEStrategy),
		slog.Int("columns", trainTab.NumCols()),
	)

	removed := 0
	if cfg.OutlierMethod != "" {
		detector, err := preprocessing.NewOutlierDetector(cfg.OutlierMethod)
		if err != nil {
			return nil, err
		}
		column := cfg.OutlierColumn
		if column == "" {
			column = dataset.ColRUL
		}
		if err := detector.Fit(trainTab, column); err != nil {
			return nil, err
		}
		// Bounds come from the training partition; only training rows are
		// dropped so the held-out evaluation stays untouched.
		if trainTab, removed, err = detector.Filter(trainTab); err != nil {
			return nil, err
		}
	}

	modelCols := modelColumns(trainTab, featureCols)
	xTrain, err := trainTab.Select(modelCols)
	if err != nil {
		return nil, err
	}
	xTest, err := testTab.Select(modelCols)
	if err != nil {
		return nil, err
	}
	yTrain, err := trainTab.Column(dataset.ColRUL)
	if err != nil {
		return nil, err
	}
	yTest, err := testTab.Column(dataset.ColRUL)
	if err != nil {
		return nil, err
	}

	model, err := regression.Train(cfg.Algorithm, xTrain, yTrain)
	if err != nil {
		return nil, err
	}

	preds, err := model.Predict(xTest)
	if err != nil {
		return nil, err
	}
	report, err := metrics.Evaluate(yTest, preds)
	if err != nil {
		return nil, err
	}
	slog.Info("evaluated model", log.StageAttr("evaluate"),
		slog.Float64("mse", report["MSE"]),
		slog.Float64("rmse", report["RMSE"]),
		slog.Float64("mae", report["MAE"]),
		slog.Float64("r2", report["R2"]),
	)

	if err := rec.Record(model.Params, report, model); err != nil {
		slog.Warn("tracking recorder failed", log.StageAttr("track"), log.ErrAttr(err))
	}

	return &Result{Report: report, Model: model, OutliersRemoved: removed}, nil
}

// modelColumns selects the post-transform model input columns: the
// configured features plus any indicator columns derived from them, never
// the engine id or the target.
func modelColumns(t *dataset.Table, featureCols []string) []string {
	wanted := make(map[string]bool, len(featureCols))
	for _, f := range featureCols {
		wanted[f] = true
	}
	var cols []string
	for _, c := range t.Columns() {
		if c == dataset.ColRUL || c == dataset.ColEngineID {
			continue
		}
		base := c
		if i := strings.IndexByte(c, '='); i >= 0 {
			base = c[:i]
		}
		if wanted[c] || wanted[base] {
			cols = append(cols, c)
		}
	}
	return cols
}
