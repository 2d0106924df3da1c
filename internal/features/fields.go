// Package features defines the mining-site input fields and collects them
// into immutable feature records.
//
// The canonical field order is the order in which the sliders are presented.
// It doubles as the positional fallback order for models that only declare
// a feature count.
package features

// Field describes one bounded numeric input.
type Field struct {
	Name    string  // canonical feature name, matches model feature names
	Key     string  // form and JSON key
	Label   string  // human readable label
	Min     float64 // inclusive lower bound
	Max     float64 // inclusive upper bound
	Default float64 // initial slider value
	Step    float64 // slider increment
}

// Canonical feature names.
const (
	Distance       = "Distance from Earth (M km)"
	Iron           = "Iron (%)"
	Nickel         = "Nickel (%)"
	WaterIce       = "Water Ice (%)"
	OtherMinerals  = "Other Minerals (%)"
	EstimatedValue = "Estimated Value (B USD)"
	Sustainability = "Sustainability Index"
	Efficiency     = "Efficiency Index"
)

var canonical = []Field{
	{Name: Distance, Key: "distance", Label: "Distance from Earth (M km)", Min: 1.0, Max: 1000.0, Default: 100.0, Step: 1.0},
	{Name: Iron, Key: "iron", Label: "Iron (%)", Min: 0.0, Max: 100.0, Default: 50.0, Step: 0.5},
	{Name: Nickel, Key: "nickel", Label: "Nickel (%)", Min: 0.0, Max: 100.0, Default: 50.0, Step: 0.5},
	{Name: WaterIce, Key: "water_ice", Label: "Water Ice (%)", Min: 0.0, Max: 100.0, Default: 50.0, Step: 0.5},
	{Name: OtherMinerals, Key: "other_minerals", Label: "Other Minerals (%)", Min: 0.0, Max: 100.0, Default: 50.0, Step: 0.5},
	{Name: EstimatedValue, Key: "estimated_value", Label: "Estimated Value (B USD)", Min: 0.0, Max: 500.0, Default: 100.0, Step: 1.0},
	{Name: Sustainability, Key: "sustainability", Label: "Sustainability Index", Min: 0.0, Max: 100.0, Default: 50.0, Step: 0.5},
	{Name: Efficiency, Key: "efficiency", Label: "Efficiency Index", Min: 0.0, Max: 100.0, Default: 50.0, Step: 0.5},
}

// Canonical returns a copy of the eight input fields in canonical order.
func Canonical() []Field {
	out := make([]Field, len(canonical))
	copy(out, canonical)
	return out
}

// CanonicalNames returns the canonical feature names in order.
func CanonicalNames() []string {
	names := make([]string, len(canonical))
	for i, f := range canonical {
		names[i] = f.Name
	}
	return names
}

// Clamp limits v to the field's bounds.
func (f Field) Clamp(v float64) float64 {
	if v < f.Min {
		return f.Min
	}
	if v > f.Max {
		return f.Max
	}
	return v
}
