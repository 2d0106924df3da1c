// Package ml loads pre-trained mining-site classifiers and reconciles
// feature records against the input schema each artifact declares.
//
// Artifacts are JSON or YAML exports of tree ensembles or logistic
// regressions. Loading normalizes artifacts from older library versions,
// derives the expected feature order and yields a read-only Predictor.
package ml

import "minesite/internal/features"

// PredictorInterface is what the web layer needs from a predictor.
type PredictorInterface interface {
	// Predict returns the verdict for one feature record.
	Predict(rec features.Record) (Label, error)

	// Vector returns the record reordered to the model's expected order.
	Vector(rec features.Record) ([]float64, error)

	// Info describes the loaded model.
	Info() Info
}

var _ PredictorInterface = (*Predictor)(nil)
