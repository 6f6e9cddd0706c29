package pipeline

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
	"github.com/YuminosukeSato/rulpipe/preprocessing"
	"github.com/YuminosukeSato/rulpipe/regression"
)

// Config is the full parameter surface of one pipeline run. Strategy and
// algorithm names are validated up front by Validate so a typo fails at
// configuration time, before any data is read.
type Config struct {
	// FilePath is the dataset location: a .zip archive or a directory.
	FilePath string `yaml:"file_path" validate:"required"`

	// Subset selects the C-MAPSS variant, FD001 through FD004.
	Subset string `yaml:"subset" validate:"required"`

	// MissingValueStrategy is one of mean, median, most_frequent, constant.
	MissingValueStrategy string `yaml:"missing_value_strategy"`

	// FEStrategy is one of standard_scaling, minmax_scaling, log,
	// onehot_encoding.
	FEStrategy string `yaml:"fe_strategy"`

	// Algorithm is one of hgb, linreg.
	Algorithm string `yaml:"algorithm"`

	// Features are the columns used as model input. Empty selects every
	// column except the engine id and the target.
	Features []string `yaml:"features"`

	// OutlierMethod enables outlier filtering with z_score or iqr; empty
	// disables the stage.
	OutlierMethod string `yaml:"outlier_method"`

	// OutlierColumn is the column the outlier bounds are computed on.
	OutlierColumn string `yaml:"outlier_column"`

	// SplitRatio is the train fraction, strictly between 0 and 1.
	SplitRatio float64 `yaml:"split_ratio" validate:"gt=0,lt=1"`

	// RandomSeed makes the split (and early stopping holdout) deterministic.
	RandomSeed int64 `yaml:"random_seed"`

	// GroupByEngine keeps each engine's cycles on one side of the split.
	GroupByEngine bool `yaml:"group_by_engine"`
}

// DefaultConfig mirrors the defaults of the reference training run.
func DefaultConfig() Config {
	return Config{
		Subset:               string(dataset.FD001),
		MissingValueStrategy: preprocessing.ImputeMean,
		FEStrategy:           preprocessing.StrategyStandardScaling,
		Algorithm:            regression.AlgorithmHGB,
		OutlierMethod:        preprocessing.OutlierZScore,
		OutlierColumn:        dataset.ColRUL,
		SplitRatio:           0.8,
		RandomSeed:           42,
	}
}

// LoadConfig reads a yaml config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration. Struct shape is checked with the
// validator tags; strategy, algorithm, subset and ratio values map to the
// same typed errors the stages themselves would raise.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if c.SplitRatio <= 0 || c.SplitRatio >= 1 {
			return errors.NewInvalidRatioError(c.SplitRatio)
		}
		return errors.Wrap(err, "pipeline.Config")
	}
	if _, err := dataset.ParseSubset(c.Subset); err != nil {
		return err
	}
	if _, err := preprocessing.NewImputer(c.MissingValueStrategy); err != nil {
		return err
	}
	if _, err := preprocessing.NewTransformer(c.FEStrategy, nil); err != nil {
		return err
	}
	if c.OutlierMethod != "" {
		if _, err := preprocessing.NewOutlierDetector(c.OutlierMethod); err != nil {
			return err
		}
	}
	known := false
	for _, a := range regression.KnownAlgorithms() {
		if a == c.Algorithm {
			known = true
			break
		}
	}
	if !known {
		return errors.NewUnknownAlgorithmError(c.Algorithm, regression.KnownAlgorithms()...)
	}
	return nil
}
