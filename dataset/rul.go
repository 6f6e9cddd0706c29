package dataset

import "github.com/YuminosukeSato/rulpipe/pkg/errors"

// AddRUL derives the Remaining Useful Life target column:
//
//	RUL = max(cycle | engine) - cycle
//
// The maximum cycle of each engine is taken as its failure point, so the
// last recorded cycle of every engine has RUL 0. Row order is preserved.
// A SchemaError is returned if the engine id or cycle column is absent.
func AddRUL(t *Table) (*Table, error) {
	var missing []string
	for _, c := range []string{ColEngineID, ColCycle} {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError("dataset.AddRUL", missing...)
	}
	engines, _ := t.Column(ColEngineID)
	cycles, _ := t.Column(ColCycle)

	maxCycle := make(map[float64]float64)
	for i, id := range engines {
		if c := cycles[i]; c > maxCycle[id] {
			maxCycle[id] = c
		}
	}

	rul := make([]float64, len(cycles))
	for i, id := range engines {
		rul[i] = maxCycle[id] - cycles[i]
	}
	return t.WithColumn(ColRUL, rul)
}
