package features

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Collector turns widget state into a fully populated Record.
type Collector struct {
	fields []Field
	byKey  map[string]Field
}

// NewCollector creates a collector over the canonical fields.
func NewCollector() *Collector {
	return NewCollectorWithFields(canonical)
}

// NewCollectorWithFields creates a collector over a custom field set.
func NewCollectorWithFields(fields []Field) *Collector {
	c := &Collector{
		fields: make([]Field, len(fields)),
		byKey:  make(map[string]Field, len(fields)*2),
	}
	copy(c.fields, fields)
	for _, f := range c.fields {
		c.byKey[f.Key] = f
		c.byKey[f.Name] = f
	}
	return c
}

// Fields returns the collector's fields in order.
func (c *Collector) Fields() []Field {
	out := make([]Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Names returns the collector's field names in order.
func (c *Collector) Names() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return names
}

// Defaults returns the record built from every field's default.
func (c *Collector) Defaults() Record {
	values := make(map[string]float64, len(c.fields))
	for _, f := range c.fields {
		values[f.Name] = f.Default
	}
	return NewRecord(c.Names(), values)
}

// Collect reads slider values keyed by field key (or canonical name).
// Missing or unparseable values fall back to the field default and
// out-of-range values are clamped, so Collect always succeeds.
func (c *Collector) Collect(form url.Values) Record {
	values := make(map[string]float64, len(c.fields))
	for _, f := range c.fields {
		raw := form.Get(f.Key)
		if raw == "" {
			raw = form.Get(f.Name)
		}
		values[f.Name] = c.resolve(f, raw)
	}
	return NewRecord(c.Names(), values)
}

// FromMap builds a record from a key or name indexed map with the same
// default and clamping rules as Collect. Unknown keys are ignored.
func (c *Collector) FromMap(in map[string]float64) Record {
	values := make(map[string]float64, len(c.fields))
	for _, f := range c.fields {
		values[f.Name] = f.Default
	}
	for k, v := range in {
		f, ok := c.byKey[k]
		if !ok || math.IsNaN(v) {
			continue
		}
		values[f.Name] = f.Clamp(v)
	}
	return NewRecord(c.Names(), values)
}

func (c *Collector) resolve(f Field, raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return f.Default
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return f.Default
	}
	return f.Clamp(v)
}
