package pipeline

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/rulpipe/metrics"
	"github.com/YuminosukeSato/rulpipe/regression"
)

// Recorder receives the parameters, metrics and fitted model of a completed
// run for external tracking. It is a notification channel, not a functional
// dependency: training succeeds even when recording fails, and the no-op
// implementation is always a valid choice.
type Recorder interface {
	Record(params map[string]interface{}, report metrics.Report, model *regression.TrainedModel) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(map[string]interface{}, metrics.Report, *regression.TrainedModel) error {
	return nil
}

// LogRecorder writes one structured zerolog event per run, which is enough
// to grep a run's parameters and metrics back out of log storage.
type LogRecorder struct {
	logger zerolog.Logger
}

// NewLogRecorder creates a LogRecorder writing to w.
func NewLogRecorder(w io.Writer) *LogRecorder {
	return &LogRecorder{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// Record implements Recorder.
func (r *LogRecorder) Record(params map[string]interface{}, report metrics.Report, model *regression.TrainedModel) error {
	event := r.logger.Info().Str("event", "run_recorded")
	if model != nil {
		event = event.Str("algorithm", model.Algorithm).Strs("features", model.Features)
	}
	paramDict := zerolog.Dict()
	for k, v := range params {
		paramDict = paramDict.Interface(k, v)
	}
	metricDict := zerolog.Dict()
	for k, v := range report {
		metricDict = metricDict.Float64(k, v)
	}
	event.Dict("params", paramDict).Dict("metrics", metricDict).Msg("training run complete")
	return nil
}
