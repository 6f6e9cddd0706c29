package regression

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/rulpipe/core/model"
	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// HGBParams contains the histogram gradient boosting hyperparameters.
type HGBParams struct {
	// LearningRate is the shrinkage applied to each tree's contribution.
	LearningRate float64 `json:"learning_rate"`

	// MaxIter is the number of boosting iterations (trees).
	MaxIter int `json:"max_iter"`

	// MaxDepth limits tree depth; 0 means unlimited.
	MaxDepth int `json:"max_depth"`

	// MaxBins is the maximum number of histogram bins per feature.
	MaxBins int `json:"max_bins"`

	// MinSamplesLeaf is the minimum number of samples per leaf.
	MinSamplesLeaf int `json:"min_samples_leaf"`

	// L2Regularization is the lambda term in gain and leaf-value formulas.
	L2Regularization float64 `json:"l2_regularization"`

	// EarlyStopping is the number of rounds without validation improvement
	// before training stops; 0 disables early stopping.
	EarlyStopping int `json:"early_stopping_rounds"`

	// ValidationFraction is the share of training rows held out for early
	// stopping when it is enabled.
	ValidationFraction float64 `json:"validation_fraction"`

	// RandomState seeds the validation holdout shuffle.
	RandomState int64 `json:"random_state"`
}

// DefaultHGBParams returns the default hyperparameters for RUL training.
func DefaultHGBParams() HGBParams {
	return HGBParams{
		LearningRate:       0.06,
		MaxIter:            600,
		MaxDepth:           7,
		MaxBins:            255,
		MinSamplesLeaf:     20,
		L2Regularization:   0.0,
		EarlyStopping:      0,
		ValidationFraction: 0.1,
		RandomState:        42,
	}
}

// hgbNode is one node of a fitted boosting tree. Leaf nodes have Left == -1.
type hgbNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	LeafValue float64
}

func (n hgbNode) isLeaf() bool { return n.Left < 0 }

// hgbTree is one fitted boosting tree as a flat node array rooted at 0.
type hgbTree struct {
	Nodes []hgbNode
}

func (t *hgbTree) predict(row []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.isLeaf() {
			return node.LeafValue
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// HGBRegressor is a histogram gradient boosting regressor for the squared
// error objective. Features are pre-binned into at most MaxBins
// equal-frequency bins; each tree is grown depth-wise by scanning per-bin
// gradient histograms for the best split. Training is deterministic for a
// fixed RandomState.
type HGBRegressor struct {
	model.BaseEstimator

	params HGBParams

	trees     []hgbTree
	baseScore float64
	nFeatures int
}

// NewHGBRegressor creates an HGBRegressor with the given hyperparameters.
// Zero-valued fields fall back to the defaults.
func NewHGBRegressor(params HGBParams) *HGBRegressor {
	def := DefaultHGBParams()
	if params.LearningRate == 0 {
		params.LearningRate = def.LearningRate
	}
	if params.MaxIter == 0 {
		params.MaxIter = def.MaxIter
	}
	if params.MaxBins == 0 {
		params.MaxBins = def.MaxBins
	}
	if params.MinSamplesLeaf == 0 {
		params.MinSamplesLeaf = def.MinSamplesLeaf
	}
	if params.ValidationFraction == 0 {
		params.ValidationFraction = def.ValidationFraction
	}
	return &HGBRegressor{params: params}
}

// trainingState holds the per-fit working data.
type trainingState struct {
	binned    [][]int     // binned[i][j] is the bin of sample i, feature j
	upperEdge [][]float64 // upperEdge[j][b] is the split threshold after bin b
	grad      []float64
	pred      []float64
}

// Fit trains the boosting ensemble on X with target y (an n×1 matrix).
func (h *HGBRegressor) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("HGBRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("HGBRegressor.Fit", 1, yCols, 1)
	}
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "HGBRegressor.Fit")
	}
	h.nFeatures = cols

	raw := make([][]float64, rows)
	targets := make([]float64, rows)
	for i := 0; i < rows; i++ {
		raw[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			raw[i][j] = X.At(i, j)
		}
		targets[i] = y.At(i, 0)
	}

	trainIdx, validIdx := h.holdout(rows)

	st := &trainingState{
		grad: make([]float64, rows),
		pred: make([]float64, rows),
	}
	h.binFeatures(raw, st)

	// Initial score is the target mean, the squared-error optimum.
	var sum float64
	for _, idx := range trainIdx {
		sum += targets[idx]
	}
	h.baseScore = sum / float64(len(trainIdx))
	for i := range st.pred {
		st.pred[i] = h.baseScore
	}

	h.trees = nil
	bestValLoss := math.Inf(1)
	roundsNoImprove := 0
	bestNumTrees := 0

	for iter := 0; iter < h.params.MaxIter; iter++ {
		// Squared error: gradient is the residual, hessian is one.
		for _, idx := range trainIdx {
			st.grad[idx] = st.pred[idx] - targets[idx]
		}

		tree := hgbTree{}
		h.buildNode(&tree, st, trainIdx, 0)
		h.trees = append(h.trees, tree)

		// Update cached predictions for every sample.
		for i := range st.pred {
			st.pred[i] += h.params.LearningRate * tree.predict(raw[i])
		}

		if h.params.EarlyStopping > 0 && len(validIdx) > 0 {
			valLoss := 0.0
			for _, idx := range validIdx {
				diff := st.pred[idx] - targets[idx]
				valLoss += diff * diff
			}
			valLoss /= float64(len(validIdx))
			if valLoss < bestValLoss {
				bestValLoss = valLoss
				roundsNoImprove = 0
				bestNumTrees = len(h.trees)
			} else {
				roundsNoImprove++
				if roundsNoImprove >= h.params.EarlyStopping {
					h.trees = h.trees[:bestNumTrees]
					break
				}
			}
		}
	}

	h.SetFitted()
	return nil
}

// holdout deterministically partitions row indices into training and
// validation sets when early stopping is enabled.
func (h *HGBRegressor) holdout(rows int) (train, valid []int) {
	all := make([]int, rows)
	for i := range all {
		all[i] = i
	}
	if h.params.EarlyStopping <= 0 || h.params.ValidationFraction <= 0 {
		return all, nil
	}
	rng := rand.New(rand.NewSource(h.params.RandomState))
	rng.Shuffle(rows, func(i, j int) { all[i], all[j] = all[j], all[i] })
	nValid := int(float64(rows) * h.params.ValidationFraction)
	if nValid == 0 || rows-nValid < h.params.MinSamplesLeaf {
		return all, nil
	}
	valid = append([]int(nil), all[:nValid]...)
	train = append([]int(nil), all[nValid:]...)
	sort.Ints(train)
	sort.Ints(valid)
	return train, valid
}

// binFeatures maps every feature into at most MaxBins equal-frequency bins
// and records the real-valued threshold after each bin.
func (h *HGBRegressor) binFeatures(raw [][]float64, st *trainingState) {
	rows := len(raw)
	cols := h.nFeatures

	st.binned = make([][]int, rows)
	for i := range st.binned {
		st.binned[i] = make([]int, cols)
	}
	st.upperEdge = make([][]float64, cols)

	values := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			values[i] = raw[i][j]
		}
		edges := binEdges(values, h.params.MaxBins)
		st.upperEdge[j] = edges
		for i := 0; i < rows; i++ {
			st.binned[i][j] = binOf(values[i], edges)
		}
	}
}

// binEdges returns the sorted upper edges separating adjacent bins. A value
// v belongs to the first bin whose edge satisfies v <= edge; values above
// the last edge fall into the final bin.
func binEdges(values []float64, maxBins int) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	unique := sorted[:1]
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			unique = append(unique, sorted[i])
		}
	}

	if len(unique) <= maxBins {
		// One bin per distinct value; edges at midpoints.
		edges := make([]float64, 0, len(unique)-1)
		for i := 1; i < len(unique); i++ {
			edges = append(edges, (unique[i-1]+unique[i])/2)
		}
		return edges
	}

	// At most maxBins-1 edges, so the bin count never exceeds maxBins even
	// when the stride does not divide the distinct values evenly.
	step := len(unique) / maxBins
	edges := make([]float64, 0, maxBins-1)
	for i := step; i < len(unique) && len(edges) < maxBins-1; i += step {
		edges = append(edges, (unique[i-1]+unique[i])/2)
	}
	return edges
}

func binOf(v float64, edges []float64) int {
	return sort.SearchFloat64s(edges, v)
}

// buildNode grows the tree depth-wise and returns the new node's index.
func (h *HGBRegressor) buildNode(tree *hgbTree, st *trainingState, indices []int, depth int) int {
	nodeIdx := len(tree.Nodes)

	if (h.params.MaxDepth > 0 && depth >= h.params.MaxDepth) ||
		len(indices) < 2*h.params.MinSamplesLeaf {
		tree.Nodes = append(tree.Nodes, hgbNode{Left: -1, Right: -1, LeafValue: h.leafValue(st, indices)})
		return nodeIdx
	}

	feature, binIdx, gain := h.findBestSplit(st, indices)
	if gain <= 0 {
		tree.Nodes = append(tree.Nodes, hgbNode{Left: -1, Right: -1, LeafValue: h.leafValue(st, indices)})
		return nodeIdx
	}

	tree.Nodes = append(tree.Nodes, hgbNode{
		Feature:   feature,
		Threshold: st.upperEdge[feature][binIdx],
	})

	var left, right []int
	for _, idx := range indices {
		if st.binned[idx][feature] <= binIdx {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	leftChild := h.buildNode(tree, st, left, depth+1)
	rightChild := h.buildNode(tree, st, right, depth+1)
	tree.Nodes[nodeIdx].Left = leftChild
	tree.Nodes[nodeIdx].Right = rightChild
	return nodeIdx
}

// findBestSplit scans the per-bin gradient histograms of every feature. The
// returned binIdx is the last bin routed to the left child.
func (h *HGBRegressor) findBestSplit(st *trainingState, indices []int) (feature, binIdx int, gain float64) {
	lambda := h.params.L2Regularization

	var totalGrad float64
	totalHess := float64(len(indices))
	for _, idx := range indices {
		totalGrad += st.grad[idx]
	}
	totalScore := totalGrad * totalGrad / (totalHess + lambda)

	bestGain := 0.0
	bestFeature, bestBin := -1, -1

	for j := 0; j < h.nFeatures; j++ {
		nBins := len(st.upperEdge[j]) + 1
		if nBins < 2 {
			continue
		}
		sumGrad := make([]float64, nBins)
		count := make([]int, nBins)
		for _, idx := range indices {
			b := st.binned[idx][j]
			sumGrad[b] += st.grad[idx]
			count[b]++
		}

		leftGrad := 0.0
		leftCount := 0
		for b := 0; b < nBins-1; b++ {
			leftGrad += sumGrad[b]
			leftCount += count[b]
			rightCount := len(indices) - leftCount
			if leftCount < h.params.MinSamplesLeaf || rightCount < h.params.MinSamplesLeaf {
				continue
			}
			rightGrad := totalGrad - leftGrad
			leftScore := leftGrad * leftGrad / (float64(leftCount) + lambda)
			rightScore := rightGrad * rightGrad / (float64(rightCount) + lambda)
			g := 0.5 * (leftScore + rightScore - totalScore)
			if g > bestGain {
				bestGain = g
				bestFeature = j
				bestBin = b
			}
		}
	}

	return bestFeature, bestBin, bestGain
}

// leafValue is the regularized squared-error optimum for a leaf.
func (h *HGBRegressor) leafValue(st *trainingState, indices []int) float64 {
	var sumGrad float64
	for _, idx := range indices {
		sumGrad += st.grad[idx]
	}
	sumHess := float64(len(indices))
	const epsilon = 1e-10
	return -sumGrad / (sumHess + h.params.L2Regularization + epsilon)
}

// Predict returns predictions for X as an n×1 matrix.
func (h *HGBRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !h.IsFitted() {
		return nil, errors.NewNotFittedError("HGBRegressor", "Predict")
	}
	rows, cols := X.Dims()
	if cols != h.nFeatures {
		return nil, errors.NewDimensionError("HGBRegressor.Predict", h.nFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		pred := h.baseScore
		for _, tree := range h.trees {
			pred += h.params.LearningRate * tree.predict(row)
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Score computes the coefficient of determination R².
func (h *HGBRegressor) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := h.Predict(X)
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
		return 0, errors.NewValueError("HGBRegressor.Score",
			"cannot compute score with zero variance in y_true")
	}
	return 1.0 - (ssRes / ssTot), nil
}

// NumTrees returns the number of fitted boosting trees.
func (h *HGBRegressor) NumTrees() int {
	return len(h.trees)
}

// GetParams returns the model's hyperparameters.
func (h *HGBRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"learning_rate":         h.params.LearningRate,
		"max_iter":              h.params.MaxIter,
		"max_depth":             h.params.MaxDepth,
		"max_bins":              h.params.MaxBins,
		"min_samples_leaf":      h.params.MinSamplesLeaf,
		"l2_regularization":     h.params.L2Regularization,
		"early_stopping_rounds": h.params.EarlyStopping,
		"validation_fraction":   h.params.ValidationFraction,
		"random_state":          h.params.RandomState,
	}
}

// String returns the string representation of the model.
func (h *HGBRegressor) String() string {
	if !h.IsFitted() {
		return fmt.Sprintf("HGBRegressor(learning_rate=%g, max_iter=%d, max_depth=%d)",
			h.params.LearningRate, h.params.MaxIter, h.params.MaxDepth)
	}
	return fmt.Sprintf("HGBRegressor(learning_rate=%g, trees=%d, n_features=%d, fitted=true)",
		h.params.LearningRate, len(h.trees), h.nFeatures)
}
