package pipeline

import (
	"math"
	"math/rand"
	"sort"

	"github.com/YuminosukeSato/rulpipe/dataset"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// Split is the result of a train/test partition: feature tables and target
// vectors for both sides.
type Split struct {
	XTrain *dataset.Table
	XTest  *dataset.Table
	YTrain []float64
	YTest  []float64
}

// SplitOption configures TrainTestSplit.
type SplitOption func(*splitConfig)

type splitConfig struct {
	seed    int64
	shuffle bool
	group   string
}

// WithSeed sets the shuffle seed; splits are deterministic per seed.
func WithSeed(seed int64) SplitOption {
	return func(c *splitConfig) { c.seed = seed }
}

// WithoutShuffle disables shuffling: the first rows become the training set.
func WithoutShuffle() SplitOption {
	return func(c *splitConfig) { c.shuffle = false }
}

// WithGroupColumn keeps all rows sharing a value of the named column on the
// same side of the split, so one engine's cycles never span both sets.
func WithGroupColumn(name string) SplitOption {
	return func(c *splitConfig) { c.group = name }
}

// TrainTestSplit partitions t into train and test sets. ratio is the train
// fraction and must lie in (0, 1); the target column is removed from the
// feature tables and returned as the target vectors.
func TrainTestSplit(t *dataset.Table, target string, ratio float64, opts ...SplitOption) (*Split, error) {
	cfg := &splitConfig{seed: 42, shuffle: true}
	for _, opt := range opts {
		opt(cfg)
	}

	if !t.HasColumn(target) {
		return nil, errors.NewSchemaError("pipeline.TrainTestSplit", target)
	}
	var groups []float64
	if cfg.group != "" {
		col, err := t.Column(cfg.group)
		if err != nil {
			return nil, err
		}
		groups = col
	}

	trainIdx, testIdx, err := splitIndices(t.NumRows(), groups, ratio, cfg.seed, cfg.shuffle)
	if err != nil {
		return nil, err
	}

	y, _ := t.Column(target)
	features := t.Drop(target)
	split := &Split{
		XTrain: features.TakeRows(trainIdx),
		XTest:  features.TakeRows(testIdx),
		YTrain: takeValues(y, trainIdx),
		YTest:  takeValues(y, testIdx),
	}
	return split, nil
}

// splitIndices partitions row indices by the train ratio. When groups is
// non-nil, whole groups are assigned to one side. Returned indices are in
// ascending order so row order within each side is preserved.
func splitIndices(n int, groups []float64, ratio float64, seed int64, shuffle bool) (train, test []int, err error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, errors.NewInvalidRatioError(ratio)
	}
	if n < 2 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "pipeline.splitIndices")
	}

	rng := rand.New(rand.NewSource(seed))

	if groups != nil {
		return splitGrouped(n, groups, ratio, rng, shuffle)
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if shuffle {
		rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}
	nTrain := clamp(int(math.Round(ratio*float64(n))), 1, n-1)
	train = append([]int(nil), idx[:nTrain]...)
	test = append([]int(nil), idx[nTrain:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

func splitGrouped(n int, groups []float64, ratio float64, rng *rand.Rand, shuffle bool) (train, test []int, err error) {
	var order []float64
	seen := make(map[float64]bool)
	for _, g := range groups {
		if !seen[g] {
			seen[g] = true
			order = append(order, g)
		}
	}
	if len(order) < 2 {
		return nil, nil, errors.NewValueError("pipeline.splitIndices",
			"grouped split needs at least two distinct groups")
	}
	if shuffle {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	nTrainGroups := clamp(int(math.Round(ratio*float64(len(order)))), 1, len(order)-1)
	inTrain := make(map[float64]bool, nTrainGroups)
	for _, g := range order[:nTrainGroups] {
		inTrain[g] = true
	}
	for i := 0; i < n; i++ {
		if inTrain[groups[i]] {
			train = append(train, i)
		} else {
			test = append(test, i)
		}
	}
	return train, test, nil
}

func takeValues(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = vals[r]
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
