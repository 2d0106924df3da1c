package features

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical_Order(t *testing.T) {
	expected := []string{
		"Distance from Earth (M km)",
		"Iron (%)",
		"Nickel (%)",
		"Water Ice (%)",
		"Other Minerals (%)",
		"Estimated Value (B USD)",
		"Sustainability Index",
		"Efficiency Index",
	}
	assert.Equal(t, expected, CanonicalNames())

	fields := Canonical()
	require.Len(t, fields, 8)
	assert.Equal(t, 1.0, fields[0].Min)
	assert.Equal(t, 1000.0, fields[0].Max)
	assert.Equal(t, 500.0, fields[5].Max)
	assert.Equal(t, 50.0, fields[6].Default)
}

func TestCanonical_ReturnsCopy(t *testing.T) {
	fields := Canonical()
	fields[0].Name = "changed"
	assert.Equal(t, Distance, Canonical()[0].Name)
}

func TestCollector_Defaults(t *testing.T) {
	c := NewCollector()
	rec := c.Collect(url.Values{})

	require.Equal(t, 8, rec.Len())
	assert.Equal(t, CanonicalNames(), rec.Names())
	assert.Equal(t, []float64{100, 50, 50, 50, 50, 100, 50, 50}, rec.Values())
	assert.True(t, rec.Equal(c.Defaults()))
}

func TestCollector_ValuesMatchSliders(t *testing.T) {
	c := NewCollector()
	form := url.Values{
		"distance":        {"250.5"},
		"iron":            {"71"},
		"nickel":          {"12.5"},
		"water_ice":       {"0"},
		"other_minerals":  {"100"},
		"estimated_value": {"499"},
		"sustainability":  {"33"},
		"efficiency":      {"66"},
	}

	rec := c.Collect(form)
	assert.Equal(t, []float64{250.5, 71, 12.5, 0, 100, 499, 33, 66}, rec.Values())

	v, ok := rec.Get(Nickel)
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	// Unchanged sliders yield an identical record.
	assert.True(t, rec.Equal(c.Collect(form)))
}

func TestCollector_ClampsAndDefaults(t *testing.T) {
	c := NewCollector()
	form := url.Values{
		"distance":        {"0"},
		"iron":            {"150"},
		"nickel":          {"not-a-number"},
		"estimated_value": {"-3"},
		"efficiency":      {"NaN"},
	}

	rec := c.Collect(form)
	values := rec.Map()
	assert.Equal(t, 1.0, values[Distance])
	assert.Equal(t, 100.0, values[Iron])
	assert.Equal(t, 50.0, values[Nickel])
	assert.Equal(t, 0.0, values[EstimatedValue])
	assert.Equal(t, 50.0, values[Efficiency])
}

func TestCollector_AcceptsCanonicalNames(t *testing.T) {
	c := NewCollector()
	rec := c.Collect(url.Values{Iron: {"12"}})
	v, _ := rec.Get(Iron)
	assert.Equal(t, 12.0, v)
}

func TestCollector_FromMap(t *testing.T) {
	c := NewCollector()
	rec := c.FromMap(map[string]float64{
		"iron":           80,
		Sustainability:   10,
		"efficiency":     1000,
		"unknown_column": 5,
	})

	require.Equal(t, 8, rec.Len())
	values := rec.Map()
	assert.Equal(t, 80.0, values[Iron])
	assert.Equal(t, 10.0, values[Sustainability])
	assert.Equal(t, 100.0, values[Efficiency])
	assert.Equal(t, 100.0, values[Distance])
	_, ok := rec.Get("unknown_column")
	assert.False(t, ok)
}

func TestRecord_Immutable(t *testing.T) {
	rec := NewRecord([]string{"a", "b"}, map[string]float64{"a": 1, "b": 2})

	names := rec.Names()
	names[0] = "z"
	m := rec.Map()
	m["a"] = 99

	assert.Equal(t, []string{"a", "b"}, rec.Names())
	v, _ := rec.Get("a")
	assert.Equal(t, 1.0, v)
}

func TestNewRecord_SkipsMissingAndDuplicates(t *testing.T) {
	rec := NewRecord([]string{"a", "b", "a"}, map[string]float64{"a": 1})
	assert.Equal(t, []string{"a"}, rec.Names())
	assert.Equal(t, 1, rec.Len())
}
