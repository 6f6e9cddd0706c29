// Package rulpipe turns raw NASA C-MAPSS turbofan sensor logs into a
// trained remaining-useful-life (RUL) regression model.
//
// The pipeline is a linear sequence of stages, each consuming the previous
// stage's artifact: ingest the archive, label every cycle with its RUL,
// split train from test, impute missing readings, engineer features,
// filter training outliers, fit a model and evaluate it on the held-out
// rows. All statistics (imputation fills, scaling parameters, outlier
// bounds) are fitted on the training partition only.
//
// # Quick Start
//
//	cfg := pipeline.DefaultConfig()
//	cfg.FilePath = "data/CMAPSSData.zip"
//
//	result, err := pipeline.Run(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("RMSE: %.2f\n", result.Report["RMSE"])
//
// # Packages
//
//   - dataset: archive/directory ingestion, the column-major Table, RUL labeling
//   - preprocessing: imputation, scaling, log transform, one-hot encoding, outlier filtering
//   - regression: gradient boosting and linear models plus the algorithm registry
//   - metrics: MSE, RMSE, MAE and R² evaluation
//   - pipeline: configuration, train/test splitting and the run sequencer
//   - analysis: descriptive statistics and exploratory plots
//
// Each stage returns typed errors (SchemaError, UnsupportedStrategyError,
// InvalidRatioError and friends) so a failing run names the stage and the
// offending input.
package rulpipe
