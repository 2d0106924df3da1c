package ml

import (
	"fmt"
	"math"
)

// DecisionFunction maps one ordered feature vector to a class index.
type DecisionFunction interface {
	// Decide returns the index into the artifact's classes.
	Decide(x []float64) (int, error)
	// Width is the minimum vector length the function can read.
	Width() int
}

// Tree is a binary decision tree stored as parallel node arrays.
// A node is a leaf when ChildrenLeft is -1. Value holds per-class weights.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left" yaml:"children_left"`
	ChildrenRight []int       `json:"children_right" yaml:"children_right"`
	Feature       []int       `json:"feature" yaml:"feature"`
	Threshold     []float64   `json:"threshold" yaml:"threshold"`
	Value         [][]float64 `json:"value" yaml:"value"`
}

const leafNode = -1

func (t *Tree) validate(classes int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leafNode {
			if right != leafNode {
				return fmt.Errorf("node %d: leaf with right child %d", i, right)
			}
			if len(t.Value[i]) != classes {
				return fmt.Errorf("node %d: expected %d class weights, got %d", i, classes, len(t.Value[i]))
			}
			continue
		}
		// children always follow their parent, which rules out cycles
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d: child index out of range (%d, %d)", i, left, right)
		}
		if t.Feature[i] < 0 {
			return fmt.Errorf("node %d: negative feature index %d", i, t.Feature[i])
		}
		if math.IsNaN(t.Threshold[i]) {
			return fmt.Errorf("node %d: threshold is NaN", i)
		}
	}
	return nil
}

// Width returns one past the highest feature index used by a split.
func (t *Tree) Width() int {
	w := 0
	for i, left := range t.ChildrenLeft {
		if left != leafNode && t.Feature[i]+1 > w {
			w = t.Feature[i] + 1
		}
	}
	return w
}

// leaf walks the tree and returns the normalized class distribution.
func (t *Tree) leaf(x []float64) ([]float64, error) {
	idx := 0
	for t.ChildrenLeft[idx] != leafNode {
		f := t.Feature[idx]
		if f >= len(x) {
			return nil, fmt.Errorf("feature index %d out of range for %d features", f, len(x))
		}
		if x[f] <= t.Threshold[idx] {
			idx = t.ChildrenLeft[idx]
		} else {
			idx = t.ChildrenRight[idx]
		}
	}
	return normalize(t.Value[idx]), nil
}

// Decide implements DecisionFunction.
func (t *Tree) Decide(x []float64) (int, error) {
	dist, err := t.leaf(x)
	if err != nil {
		return 0, err
	}
	return argmax(dist), nil
}

// Forest averages the leaf distributions of its trees.
type Forest struct {
	Trees []Tree
}

// Width implements DecisionFunction.
func (f *Forest) Width() int {
	w := 0
	for i := range f.Trees {
		if tw := f.Trees[i].Width(); tw > w {
			w = tw
		}
	}
	return w
}

// Decide implements DecisionFunction.
func (f *Forest) Decide(x []float64) (int, error) {
	var sum []float64
	for i := range f.Trees {
		dist, err := f.Trees[i].leaf(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		if sum == nil {
			sum = make([]float64, len(dist))
		}
		for c, p := range dist {
			sum[c] += p
		}
	}
	return argmax(sum), nil
}

// Linear is a logistic regression decision boundary.
type Linear struct {
	Coef      []float64
	Intercept float64
}

// Width implements DecisionFunction.
func (l *Linear) Width() int { return len(l.Coef) }

// validate checks that the model weighs exactly width features.
func (l *Linear) validate(width int) error {
	if len(l.Coef) != width {
		return fmt.Errorf("logistic regression has %d coefficients, schema has %d features", len(l.Coef), width)
	}
	return nil
}

// Decide implements DecisionFunction.
func (l *Linear) Decide(x []float64) (int, error) {
	if len(x) != len(l.Coef) {
		return 0, fmt.Errorf("expected %d features, got %d", len(l.Coef), len(x))
	}
	z := l.Intercept
	for i, c := range l.Coef {
		z += c * x[i]
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

func normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	var total float64
	for _, w := range v {
		total += w
	}
	if total == 0 {
		return out
	}
	for i, w := range v {
		out[i] = w / total
	}
	return out
}

// argmax returns the first index of the largest value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
