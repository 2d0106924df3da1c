package features

// Record is an immutable set of named feature values for one prediction.
// Names keep the order the record was built in.
type Record struct {
	names  []string
	values map[string]float64
}

// NewRecord builds a record from ordered names and a value lookup.
// Names missing from values are skipped; duplicates are kept once.
func NewRecord(names []string, values map[string]float64) Record {
	r := Record{
		names:  make([]string, 0, len(names)),
		values: make(map[string]float64, len(names)),
	}
	for _, n := range names {
		v, ok := values[n]
		if !ok {
			continue
		}
		if _, dup := r.values[n]; dup {
			continue
		}
		r.names = append(r.names, n)
		r.values[n] = v
	}
	return r
}

// Get returns the value for name.
func (r Record) Get(name string) (float64, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns the field names in record order.
func (r Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Values returns the values in record order.
func (r Record) Values() []float64 {
	out := make([]float64, len(r.names))
	for i, n := range r.names {
		out[i] = r.values[n]
	}
	return out
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.names) }

// Map returns a copy of the name to value mapping.
func (r Record) Map() map[string]float64 {
	out := make(map[string]float64, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Equal reports whether both records hold the same names, order and values.
func (r Record) Equal(o Record) bool {
	if len(r.names) != len(o.names) {
		return false
	}
	for i, n := range r.names {
		if o.names[i] != n || o.values[n] != r.values[n] {
			return false
		}
	}
	return true
}
