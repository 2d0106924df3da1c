package ml

// NormalizeArtifact is the post-load compatibility step for artifacts written
// by library versions that predate the preprocessor field: if the field is
// absent it is set to the empty (identity) preprocessor. Nothing else is
// repaired. It reports whether the artifact was changed.
func NormalizeArtifact(a *Artifact) bool {
	if a == nil || a.Preprocessor != nil {
		return false
	}
	a.Preprocessor = &Preprocessor{}
	a.patched = true
	return true
}
