package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stump(feature int, threshold float64, left, right []float64) Tree {
	return Tree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{feature, -2, -2},
		Threshold:     []float64{threshold, -2, -2},
		Value:         [][]float64{{1, 1}, left, right},
	}
}

func TestTree_Decide(t *testing.T) {
	tree := stump(1, 10, []float64{3, 1}, []float64{0, 4})
	require.NoError(t, tree.validate(2))
	assert.Equal(t, 2, tree.Width())

	idx, err := tree.Decide([]float64{0, 10})
	require.NoError(t, err)
	assert.Equal(t, 0, idx, "threshold is inclusive on the left")

	idx, err = tree.Decide([]float64{0, 10.5})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = tree.Decide([]float64{0})
	assert.Error(t, err)
}

func TestTree_Validate(t *testing.T) {
	testCases := []struct {
		name string
		tree Tree
	}{
		{"empty", Tree{}},
		{"length mismatch", Tree{ChildrenLeft: []int{-1}, ChildrenRight: []int{-1, -1}, Feature: []int{0}, Threshold: []float64{0}, Value: [][]float64{{1, 0}}}},
		{"cycle", Tree{ChildrenLeft: []int{0}, ChildrenRight: []int{0}, Feature: []int{0}, Threshold: []float64{0}, Value: [][]float64{{1, 0}}}},
		{"half leaf", Tree{ChildrenLeft: []int{-1}, ChildrenRight: []int{1}, Feature: []int{0}, Threshold: []float64{0}, Value: [][]float64{{1, 0}}}},
		{"wrong class count", Tree{ChildrenLeft: []int{-1}, ChildrenRight: []int{-1}, Feature: []int{-2}, Threshold: []float64{0}, Value: [][]float64{{1, 0, 0}}}},
		{"negative feature", func() Tree { tr := stump(0, 1, []float64{1, 0}, []float64{0, 1}); tr.Feature[0] = -1; return tr }()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.tree.validate(2))
		})
	}
}

func TestForest_SoftVoteAndTies(t *testing.T) {
	forest := &Forest{Trees: []Tree{
		stump(0, 5, []float64{1, 0}, []float64{0, 1}),
		stump(1, 5, []float64{1, 0}, []float64{0, 1}),
	}}
	assert.Equal(t, 2, forest.Width())

	idx, err := forest.Decide([]float64{9, 9})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	// one vote each: tie resolves to the lower class
	idx, err = forest.Decide([]float64{9, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestLinear_Decide(t *testing.T) {
	linear := &Linear{Coef: []float64{0.5, -1}, Intercept: 1}
	assert.Equal(t, 2, linear.Width())

	idx, err := linear.Decide([]float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = linear.Decide([]float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, idx, "zero margin is the negative class")

	_, err = linear.Decide([]float64{1})
	assert.Error(t, err)
}

func TestArtifact_ClassMapping(t *testing.T) {
	a := &Artifact{
		ModelType:    ModelLogisticRegression,
		Classes:      []int{1, 0},
		Coef:         []float64{1},
		Preprocessor: &Preprocessor{},
	}
	require.NoError(t, a.compile())

	label, err := a.Decide([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, NotViable, label, "index 1 maps to class 0")
}

func TestLinear_Validate(t *testing.T) {
	linear := &Linear{Coef: []float64{1, 2}}

	assert.NoError(t, linear.validate(2))
	assert.Error(t, linear.validate(1))
	assert.Error(t, linear.validate(3))
}
