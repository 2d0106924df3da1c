package ml

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"minesite/internal/common"
	"minesite/internal/features"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// MetricsInterface defines metrics methods needed by the predictor
type MetricsInterface interface {
	MLPredictionsInc(label int)
	MLFailuresInc()
	MLFeatureMismatchInc()
	MLLatencyObserve(float64)
	MLModelAgeSet(float64)
	MLModelLoadedSet(bool)
	MLCacheHitsInc()
}

// Label is a binary classifier verdict.
type Label int

const (
	NotViable Label = 0
	Viable    Label = 1
)

// Viable reports whether the label marks a potential mining site.
func (l Label) Viable() bool { return l == Viable }

// Outcome returns the user-facing verdict text.
func (l Label) Outcome() string {
	if l.Viable() {
		return common.OutcomeViable
	}
	return common.OutcomeNotViable
}

// PredictorConfig contains configuration for the predictor
type PredictorConfig struct {
	ModelPath    string
	StrictSchema bool     // reject artifacts that only declare a feature count
	CacheSize    int      // 0 disables the prediction cache
	Canonical    []string // positional fallback order; defaults to the collector order
}

// Info describes a loaded predictor.
type Info struct {
	ModelPath      string       `json:"model_path"`
	ModelType      string       `json:"model_type"`
	LibraryVersion string       `json:"library_version,omitempty"`
	ExpectedOrder  []string     `json:"expected_order"`
	SchemaSource   SchemaSource `json:"schema_source"`
	Patched        bool         `json:"compatibility_patched"`
	LoadedAt       time.Time    `json:"loaded_at"`
}

// Predictor reconciles feature records against a loaded artifact and
// returns its verdict. It only exists in the loaded state and is safe for
// concurrent use: the artifact is never mutated after load.
type Predictor struct {
	artifact     *Artifact
	order        []string
	source       SchemaSource
	cache        *lru.Cache[string, Label]
	metrics      MetricsInterface
	loadedAt     time.Time
	modelCreated time.Time
}

func New(path string) (*Predictor, error) {
	return NewWithMetrics(PredictorConfig{ModelPath: path}, nil)
}

// NewWithMetrics loads the artifact, derives its expected feature order and
// returns a ready predictor. Load failures are terminal: there is no retry
// and no fallback artifact.
func NewWithMetrics(config PredictorConfig, metrics MetricsInterface) (*Predictor, error) {
	if metrics != nil {
		metrics.MLModelLoadedSet(false)
	}

	artifact, err := LoadArtifact(config.ModelPath)
	if err != nil {
		return nil, err
	}

	canonical := config.Canonical
	if len(canonical) == 0 {
		canonical = features.CanonicalNames()
	}

	order, source, err := ExpectedOrder(artifact, canonical, config.StrictSchema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ModelPath, err)
	}

	if w := artifact.decision.Width(); w > len(order) {
		return nil, fmt.Errorf("%s: %w: decision function reads %d features, schema has %d",
			config.ModelPath, ErrArtifactCorrupt, w, len(order))
	}
	if lin, ok := artifact.decision.(*Linear); ok {
		if err := lin.validate(len(order)); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", config.ModelPath, ErrArtifactCorrupt, err)
		}
	}
	if artifact.FeatureCount != nil && len(artifact.FeatureNames) > 0 && *artifact.FeatureCount != len(artifact.FeatureNames) {
		log.Warn().
			Int("n_features_in", *artifact.FeatureCount).
			Int("feature_names_in", len(artifact.FeatureNames)).
			Msg("artifact feature count disagrees with its feature names, using names")
	}

	if source == SchemaPositional {
		log.Warn().
			Str("model_path", config.ModelPath).
			Strs("assumed_order", order).
			Msg("artifact declares only a feature count, assuming canonical field order prefix")
	}

	var modelCreated time.Time
	if info, err := os.Stat(config.ModelPath); err == nil {
		modelCreated = info.ModTime()
	}

	p := &Predictor{
		artifact:     artifact,
		order:        order,
		source:       source,
		metrics:      metrics,
		loadedAt:     time.Now(),
		modelCreated: modelCreated,
	}

	if config.CacheSize > 0 {
		cache, err := lru.New[string, Label](config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction cache: %w", err)
		}
		p.cache = cache
	}

	if metrics != nil {
		metrics.MLModelLoadedSet(true)
		if !modelCreated.IsZero() {
			metrics.MLModelAgeSet(time.Since(modelCreated).Seconds())
		}
	}

	log.Info().
		Str("model_path", config.ModelPath).
		Str("model_type", artifact.ModelType).
		Str("schema_source", string(source)).
		Strs("expected_order", order).
		Msg("model artifact loaded")

	return p, nil
}

// ExpectedOrder returns a copy of the feature order the artifact expects.
func (p *Predictor) ExpectedOrder() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// SchemaSource reports how the expected order was derived.
func (p *Predictor) SchemaSource() SchemaSource {
	if p == nil {
		return ""
	}
	return p.source
}

// Vector subsets and reorders rec to the expected order.
func (p *Predictor) Vector(rec features.Record) ([]float64, error) {
	if p == nil {
		return nil, ErrNotLoaded
	}
	x := make([]float64, len(p.order))
	var missing []string
	for i, name := range p.order {
		v, ok := rec.Get(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		x[i] = v
	}
	if len(missing) > 0 {
		return nil, &FeatureMismatchError{Missing: missing, Expected: p.ExpectedOrder()}
	}
	return x, nil
}

// Predict returns the artifact's verdict for rec. Values are passed through
// as-is; the collector already bounds them.
func (p *Predictor) Predict(rec features.Record) (Label, error) {
	if p == nil {
		return 0, ErrNotLoaded
	}

	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.MLLatencyObserve(time.Since(start).Seconds())
		}
	}()

	x, err := p.Vector(rec)
	if err != nil {
		if p.metrics != nil {
			p.metrics.MLFeatureMismatchInc()
			p.metrics.MLFailuresInc()
		}
		log.Error().Err(err).Msg("feature mismatch")
		return 0, err
	}

	key := cacheKey(x)
	if p.cache != nil {
		if label, ok := p.cache.Get(key); ok {
			if p.metrics != nil {
				p.metrics.MLCacheHitsInc()
				p.metrics.MLPredictionsInc(int(label))
			}
			return label, nil
		}
	}

	label, err := p.artifact.Decide(x)
	if err != nil {
		if p.metrics != nil {
			p.metrics.MLFailuresInc()
		}
		log.Error().Err(err).Floats64("features", x).Msg("decision function failed")
		return 0, fmt.Errorf("prediction failed: %w", err)
	}

	if p.cache != nil {
		p.cache.Add(key, label)
	}
	if p.metrics != nil {
		p.metrics.MLPredictionsInc(int(label))
	}

	log.Debug().
		Floats64("features", x).
		Int("label", int(label)).
		Msg("Prediction successful")

	return label, nil
}

// Info describes the loaded artifact.
func (p *Predictor) Info() Info {
	if p == nil {
		return Info{}
	}
	return Info{
		ModelPath:      p.artifact.Path(),
		ModelType:      p.artifact.ModelType,
		LibraryVersion: p.artifact.LibraryVersion,
		ExpectedOrder:  p.ExpectedOrder(),
		SchemaSource:   p.source,
		Patched:        p.artifact.Patched(),
		LoadedAt:       p.loadedAt,
	}
}

func cacheKey(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
