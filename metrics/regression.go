// Package metrics provides the regression error metrics used to evaluate
// trained RUL models.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// MSE computes the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE computes the root mean squared error.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MAE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination R².
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)
		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// Report maps metric names to their computed values.
type Report map[string]float64

// Evaluate computes the full regression report (MSE, RMSE, MAE, R2) for a
// pair of prediction slices.
func Evaluate(yTrue, yPred []float64) (Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, errors.NewDimensionError("metrics.Evaluate", len(yTrue), len(yPred), 0)
	}
	if len(yTrue) == 0 {
		return nil, errors.NewValueError("metrics.Evaluate", "empty vector")
	}
	tv := mat.NewVecDense(len(yTrue), append([]float64(nil), yTrue...))
	pv := mat.NewVecDense(len(yPred), append([]float64(nil), yPred...))

	mse, err := MSE(tv, pv)
	if err != nil {
		return nil, err
	}
	mae, err := MAE(tv, pv)
	if err != nil {
		return nil, err
	}
	r2, err := R2Score(tv, pv)
	if err != nil {
		return nil, err
	}
	return Report{
		"MSE":  mse,
		"RMSE": math.Sqrt(mse),
		"MAE":  mae,
		"R2":   r2,
	}, nil
}
