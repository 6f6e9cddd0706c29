// Package regression provides the trainable RUL estimators: an ordinary
// least squares baseline and a histogram gradient boosting regressor, plus
// the name-based registry the pipeline resolves algorithms from.
package regression

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/rulpipe/core/model"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// LinearRegression is an ordinary least squares regression model solved by
// QR decomposition. It is the sanity-check baseline for the non-linear
// sensor data; the histogram gradient boosting regressor is the default.
type LinearRegression struct {
	model.BaseEstimator

	fitIntercept bool

	coef      []float64
	intercept float64
	nFeatures int
	nSamples  int
}

// LinearRegressionOption configures a LinearRegression.
type LinearRegressionOption func(*LinearRegression)

// WithFitIntercept controls whether the intercept is learned (default: true).
func WithFitIntercept(fit bool) LinearRegressionOption {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// NewLinearRegression creates a LinearRegression model.
func NewLinearRegression(options ...LinearRegressionOption) *LinearRegression {
	lr := &LinearRegression{fitIntercept: true}
	for _, opt := range options {
		opt(lr)
	}
	return lr
}

// Fit trains the model on X with target y (an n×1 matrix) using QR-based
// least squares.
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("LinearRegression.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LinearRegression.Fit", 1, yCols, 1)
	}
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LinearRegression.Fit")
	}

	lr.nSamples = rows
	lr.nFeatures = cols

	var XFit mat.Matrix
	if lr.fitIntercept {
		// Prepend a bias column of ones.
		withBias := mat.NewDense(rows, cols+1, nil)
		for i := 0; i < rows; i++ {
			withBias.Set(i, 0, 1.0)
			for j := 0; j < cols; j++ {
				withBias.Set(i, j+1, X.At(i, j))
			}
		}
		XFit = withBias
	} else {
		XFit = mat.DenseCopyOf(X)
	}

	var qr mat.QR
	qr.Factorize(XFit)

	_, qrCols := XFit.Dims()
	coefficients := mat.NewDense(qrCols, 1, nil)
	if err := qr.SolveTo(coefficients, false, y); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "LinearRegression.Fit")
	}

	lr.coef = make([]float64, cols)
	if lr.fitIntercept {
		lr.intercept = coefficients.At(0, 0)
		for i := 0; i < cols; i++ {
			lr.coef[i] = coefficients.At(i+1, 0)
		}
	} else {
		lr.intercept = 0.0
		for i := 0; i < cols; i++ {
			lr.coef[i] = coefficients.At(i, 0)
		}
	}

	lr.SetFitted()
	return nil
}

// Predict returns predictions for X as an n×1 matrix.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	rows, cols := X.Dims()
	if cols != lr.nFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.nFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		pred := lr.intercept
		for j := 0; j < cols; j++ {
			pred += X.At(i, j) * lr.coef[j]
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Score computes the coefficient of determination R².
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	var yMean float64
	for i := 0; i < rows; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(rows)

	var ssTot, ssRes float64
	for i := 0; i < rows; i++ {
		yi := y.At(i, 0)
		predi := predictions.At(i, 0)
		ssTot += (yi - yMean) * (yi - yMean)
		ssRes += (yi - predi) * (yi - predi)
	}
	if ssTot == 0 {
		return 0, errors.NewValueError("LinearRegression.Score",
			"cannot compute score with zero variance in y_true")
	}
	return 1.0 - (ssRes / ssTot), nil
}

// Coef returns a copy of the learned weight coefficients.
func (lr *LinearRegression) Coef() []float64 {
	if lr.coef == nil {
		return nil
	}
	coef := make([]float64, len(lr.coef))
	copy(coef, lr.coef)
	return coef
}

// Intercept returns the learned intercept.
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// GetParams returns the model's hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
	}
}

// String returns the string representation of the model.
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t)", lr.fitIntercept)
	}
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d, fitted=true)",
		lr.fitIntercept, lr.nFeatures)
}
