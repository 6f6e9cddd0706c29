package pipeline

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/rulpipe/metrics"
)

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(&buf)

	err := rec.Record(
		map[string]interface{}{"learning_rate": 0.06, "max_iter": 600},
		metrics.Report{"RMSE": 12.5, "R2": 0.91},
		nil,
	)
	require.NoError(t, err)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "run_recorded", event["event"])

	params, ok := event["params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.06, params["learning_rate"])

	reported, ok := event["metrics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 12.5, reported["RMSE"])
}

func TestNopRecorder(t *testing.T) {
	assert.NoError(t, NopRecorder{}.Record(nil, nil, nil))
}
