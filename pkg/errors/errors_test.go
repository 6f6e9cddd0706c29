package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewDataNotFoundError(t *testing.T) {
	err := NewDataNotFoundError("/data/raw", "train_FD001.txt")

	want := `rulpipe: no file matching "train_FD001.txt" found under /data/raw`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFound *DataNotFoundError
	if !As(err, &notFound) {
		t.Error("Error should be castable to *DataNotFoundError")
	}

	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}
}

func TestNewFormatError(t *testing.T) {
	err := NewFormatError("train_FD001.txt", 17, 26, 24)

	want := "rulpipe: train_FD001.txt:17: expected 26 whitespace-delimited columns, got 24"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var formatErr *FormatError
	if !As(err, &formatErr) {
		t.Error("Error should be castable to *FormatError")
	}
	if formatErr.Line != 17 {
		t.Errorf("Line = %d, want 17", formatErr.Line)
	}
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("dataset.AddRUL", "engine_id", "cycle")

	want := "rulpipe: dataset.AddRUL: missing required columns: engine_id, cycle"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var schemaErr *SchemaError
	if !As(err, &schemaErr) {
		t.Error("Error should be castable to *SchemaError")
	}
}

func TestNewUnsupportedStrategyError(t *testing.T) {
	err := NewUnsupportedStrategyError("imputation", "drop", "mean", "median")

	want := `rulpipe: unsupported imputation strategy "drop" (supported: mean, median)`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var stratErr *UnsupportedStrategyError
	if !As(err, &stratErr) {
		t.Error("Error should be castable to *UnsupportedStrategyError")
	}
}

func TestNewUnknownAlgorithmError(t *testing.T) {
	err := NewUnknownAlgorithmError("xgboost", "hgb", "linreg")

	want := `rulpipe: unknown algorithm "xgboost" (registered: hgb, linreg)`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var algoErr *UnknownAlgorithmError
	if !As(err, &algoErr) {
		t.Error("Error should be castable to *UnknownAlgorithmError")
	}
}

func TestNewInvalidDomainError(t *testing.T) {
	err := NewInvalidDomainError("LogTransformer.Fit", "s3", -2.5)

	want := `rulpipe: LogTransformer.Fit: value -2.5 in column "s3" is outside the valid domain`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var domainErr *InvalidDomainError
	if !As(err, &domainErr) {
		t.Error("Error should be castable to *InvalidDomainError")
	}
}

func TestNewInvalidRatioError(t *testing.T) {
	err := NewInvalidRatioError(1.5)

	want := "rulpipe: split ratio must be in (0, 1), got 1.5"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var ratioErr *InvalidRatioError
	if !As(err, &ratioErr) {
		t.Error("Error should be castable to *InvalidRatioError")
	}
}

func TestNewSchemaMismatchError(t *testing.T) {
	err := NewSchemaMismatchError("TrainedModel.Predict", []string{"s1", "s2"}, []string{"s1"})

	want := "rulpipe: TrainedModel.Predict: feature schema mismatch: trained on [s1, s2], got [s1]"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var mismatchErr *SchemaMismatchError
	if !As(err, &mismatchErr) {
		t.Error("Error should be castable to *SchemaMismatchError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("HGBRegressor", "Predict")

	want := "rulpipe: HGBRegressor: this estimator is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 8, 1)

	want := "rulpipe: Predict: dimension mismatch on axis 1 (features). Expected 10, got 8"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestSentinelErrors(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "Imputer.Fit")
	if !Is(wrapped, ErrEmptyData) {
		t.Error("wrapped sentinel should match with Is")
	}
}
