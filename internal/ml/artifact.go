package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Supported model types.
const (
	ModelDecisionTree       = "decision_tree"
	ModelRandomForest       = "random_forest"
	ModelLogisticRegression = "logistic_regression"
)

// Preprocessor is the input transform state newer exports carry. Only the
// empty (identity) preprocessor is supported.
type Preprocessor struct {
	Kind   string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

func (p *Preprocessor) identity() bool {
	return p.Kind == "" || p.Kind == "passthrough"
}

// Artifact is a deserialized, pre-trained binary classifier.
// It is read-only once LoadArtifact returns it.
type Artifact struct {
	ModelType      string        `json:"model_type" yaml:"model_type"`
	LibraryVersion string        `json:"library_version,omitempty" yaml:"library_version,omitempty"`
	FeatureNames   []string      `json:"feature_names_in,omitempty" yaml:"feature_names_in,omitempty"`
	FeatureCount   *int          `json:"n_features_in,omitempty" yaml:"n_features_in,omitempty"`
	Classes        []int         `json:"classes,omitempty" yaml:"classes,omitempty"`
	Preprocessor   *Preprocessor `json:"preprocessor,omitempty" yaml:"preprocessor,omitempty"`

	Tree       *Tree     `json:"tree,omitempty" yaml:"tree,omitempty"`
	Estimators []Tree    `json:"estimators,omitempty" yaml:"estimators,omitempty"`
	Coef       []float64 `json:"coef,omitempty" yaml:"coef,omitempty"`
	Intercept  float64   `json:"intercept,omitempty" yaml:"intercept,omitempty"`

	path     string
	patched  bool
	decision DecisionFunction
}

// LoadArtifact reads, decodes and normalizes the artifact at path.
// A missing file yields ErrArtifactNotFound; an artifact that declares
// neither feature names nor a feature count yields ErrSchemaUndetermined.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}

	a, err := DecodeArtifact(data, formatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.path = path

	if NormalizeArtifact(a) {
		log.Info().
			Str("model_path", path).
			Str("library_version", a.LibraryVersion).
			Msg("artifact lacks preprocessor state, applied empty preprocessor")
	}

	if len(a.FeatureNames) == 0 && a.FeatureCount == nil {
		return nil, fmt.Errorf("%s: %w: artifact declares neither feature names nor a feature count",
			path, ErrSchemaUndetermined)
	}

	if err := a.compile(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return a, nil
}

// DecodeArtifact decodes artifact bytes in the given format ("json" or
// "yaml"). The result is not usable until normalized and compiled.
func DecodeArtifact(data []byte, format string) (*Artifact, error) {
	var a Artifact
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &a)
	default:
		err = json.Unmarshal(data, &a)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrArtifactCorrupt, format, err)
	}
	return &a, nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// compile validates the payload and builds the decision function.
func (a *Artifact) compile() error {
	if a.Preprocessor == nil {
		return fmt.Errorf("%w: preprocessor state missing, artifact not normalized", ErrArtifactCorrupt)
	}
	if !a.Preprocessor.identity() {
		return fmt.Errorf("%w: unsupported preprocessor %q", ErrArtifactCorrupt, a.Preprocessor.Kind)
	}

	if len(a.Classes) == 0 {
		a.Classes = []int{0, 1}
	}
	if len(a.Classes) != 2 || a.Classes[0] == a.Classes[1] {
		return fmt.Errorf("%w: binary classifier needs two distinct classes, got %v", ErrArtifactCorrupt, a.Classes)
	}
	for _, c := range a.Classes {
		if c != 0 && c != 1 {
			return fmt.Errorf("%w: class label %d is not binary", ErrArtifactCorrupt, c)
		}
	}

	switch a.ModelType {
	case ModelDecisionTree:
		if a.Tree == nil {
			return fmt.Errorf("%w: decision_tree without tree", ErrArtifactCorrupt)
		}
		if err := a.Tree.validate(len(a.Classes)); err != nil {
			return fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
		}
		a.decision = a.Tree
	case ModelRandomForest:
		if len(a.Estimators) == 0 {
			return fmt.Errorf("%w: random_forest without estimators", ErrArtifactCorrupt)
		}
		for i := range a.Estimators {
			if err := a.Estimators[i].validate(len(a.Classes)); err != nil {
				return fmt.Errorf("%w: estimator %d: %v", ErrArtifactCorrupt, i, err)
			}
		}
		a.decision = &Forest{Trees: a.Estimators}
	case ModelLogisticRegression:
		if len(a.Coef) == 0 {
			return fmt.Errorf("%w: logistic_regression without coefficients", ErrArtifactCorrupt)
		}
		a.decision = &Linear{Coef: a.Coef, Intercept: a.Intercept}
	default:
		return fmt.Errorf("%w: unsupported model type %q", ErrArtifactCorrupt, a.ModelType)
	}
	return nil
}

// Decide runs the decision function on one ordered vector.
func (a *Artifact) Decide(x []float64) (Label, error) {
	if a.decision == nil {
		return 0, fmt.Errorf("%w: artifact not compiled", ErrArtifactCorrupt)
	}
	idx, err := a.decision.Decide(x)
	if err != nil {
		return 0, err
	}
	return Label(a.Classes[idx]), nil
}

// Path returns the file the artifact was loaded from.
func (a *Artifact) Path() string { return a.path }

// Patched reports whether post-load normalization changed the artifact.
func (a *Artifact) Patched() bool { return a.patched }
