package regression

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/rulpipe/core/model"
	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
	"github.com/YuminosukeSato/rulpipe/pkg/log"
)

// Algorithm names accepted by Train.
const (
	AlgorithmHGB    = "hgb"
	AlgorithmLinReg = "linreg"
)

// KnownAlgorithms lists the registered algorithm names.
func KnownAlgorithms() []string {
	return []string{AlgorithmHGB, AlgorithmLinReg}
}

// newEstimator resolves an algorithm name into an unfitted estimator.
func newEstimator(algorithm string) (model.Regressor, error) {
	switch algorithm {
	case AlgorithmHGB:
		return NewHGBRegressor(DefaultHGBParams()), nil
	case AlgorithmLinReg:
		return NewLinearRegression(), nil
	default:
		return nil, errors.NewUnknownAlgorithmError(algorithm, KnownAlgorithms()...)
	}
}

// TrainedModel is a fitted estimator together with the metadata needed to
// apply it safely: the algorithm name, its hyperparameters and the exact
// feature schema it was trained on.
type TrainedModel struct {
	Algorithm string
	Params    map[string]interface{}
	Features  []string

	estimator model.Regressor
}

// Train fits the named algorithm on a feature table and target vector. The
// table must contain feature columns only; its column set becomes the
// schema every later Predict call is validated against.
func Train(algorithm string, X *dataset.Table, y []float64) (*TrainedModel, error) {
	est, err := newEstimator(algorithm)
	if err != nil {
		return nil, err
	}
	if X.NumRows() != len(y) {
		return nil, errors.NewDimensionError("regression.Train", X.NumRows(), len(y), 0)
	}

	xm, err := X.Matrix()
	if err != nil {
		return nil, errors.Wrap(err, "regression.Train")
	}
	ym := mat.NewDense(len(y), 1, append([]float64(nil), y...))

	slog.Info("training model",
		log.StageAttr("train"),
		slog.String("algorithm", algorithm),
		slog.Int("rows", X.NumRows()),
		slog.Int("features", X.NumCols()),
	)
	if err := est.Fit(xm, ym); err != nil {
		return nil, err
	}

	params := map[string]interface{}{}
	if pg, ok := est.(model.ParameterGetter); ok {
		params = pg.GetParams()
	}
	return &TrainedModel{
		Algorithm: algorithm,
		Params:    params,
		Features:  X.Columns(),
		estimator: est,
	}, nil
}

// Predict produces predictions for a feature table. The table must carry
// exactly the columns the model was trained on; a matching column set in a
// different order is reordered, anything else is a SchemaMismatchError.
func (m *TrainedModel) Predict(t *dataset.Table) ([]float64, error) {
	aligned, err := m.align(t)
	if err != nil {
		return nil, err
	}
	xm, err := aligned.Matrix()
	if err != nil {
		return nil, errors.Wrap(err, "TrainedModel.Predict")
	}
	pred, err := m.estimator.Predict(xm)
	if err != nil {
		return nil, err
	}
	rows, _ := pred.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = pred.At(i, 0)
	}
	return out, nil
}

func (m *TrainedModel) align(t *dataset.Table) (*dataset.Table, error) {
	got := t.Columns()
	if len(got) != len(m.Features) {
		return nil, errors.NewSchemaMismatchError("TrainedModel.Predict", m.Features, got)
	}
	same := true
	for i, c := range got {
		if c != m.Features[i] {
			same = false
			break
		}
	}
	if same {
		return t, nil
	}
	aligned, err := t.Select(m.Features)
	if err != nil {
		return nil, errors.NewSchemaMismatchError("TrainedModel.Predict", m.Features, got)
	}
	return aligned, nil
}

// Estimator exposes the underlying fitted estimator.
func (m *TrainedModel) Estimator() model.Regressor {
	return m.estimator
}
