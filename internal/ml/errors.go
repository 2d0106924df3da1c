package ml

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrArtifactNotFound is returned when the artifact path does not resolve.
	ErrArtifactNotFound = errors.New("model artifact not found")
	// ErrArtifactCorrupt is returned when the artifact cannot be decoded or
	// its decision payload is structurally invalid.
	ErrArtifactCorrupt = errors.New("model artifact is invalid")
	// ErrSchemaUndetermined is returned when the expected feature order
	// cannot be derived from the artifact.
	ErrSchemaUndetermined = errors.New("cannot determine which features the model expects")
	// ErrFeatureMismatch is matched by *FeatureMismatchError.
	ErrFeatureMismatch = errors.New("feature mismatch")
	// ErrNotLoaded is returned by a nil predictor.
	ErrNotLoaded = errors.New("predictor has no loaded artifact")
)

// FeatureMismatchError reports expected feature names missing from a record.
type FeatureMismatchError struct {
	Missing  []string
	Expected []string
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("feature mismatch: record lacks [%s]; model expects [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Expected, ", "))
}

// Is lets errors.Is(err, ErrFeatureMismatch) match.
func (e *FeatureMismatchError) Is(target error) bool {
	return target == ErrFeatureMismatch
}
