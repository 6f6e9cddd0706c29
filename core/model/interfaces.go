// Package model defines the estimator contracts shared by the regression
// and preprocessing packages.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for estimators that learn from training data.
type Fitter interface {
	// Fit trains the estimator on X with target y (an n×1 matrix).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for fitted estimators that produce predictions.
type Predictor interface {
	// Predict returns predictions for X as an n×1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}
