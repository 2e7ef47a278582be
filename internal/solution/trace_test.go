package solution

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_RecordMergesSnapshots(t *testing.T) {
	tr := New()
	tr.Record(map[string]float64{"s": 999, "i": 1}, map[string]float64{"population": 1000})
	tr.Record(map[string]float64{"s": 998, "i": 2}, map[string]float64{"population": 1000})

	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, []string{"i", "population", "s"}, tr.Keys())
	assert.Equal(t, []float64{999, 998}, tr.Floats("s"))
}

func TestTrace_NonFiniteBecomesNoValue(t *testing.T) {
	tr := New()
	tr.Record(map[string]float64{"a": math.NaN(), "b": math.Inf(1), "c": math.Inf(-1), "d": 1})

	for _, k := range []string{"a", "b", "c"} {
		v, ok := tr.Last(k)
		require.True(t, ok)
		assert.False(t, v.Valid, "key %s", k)
	}
	d, _ := tr.Last("d")
	assert.Equal(t, Value{V: 1, Valid: true}, d)
}

func TestTrace_LateKeysKeepLengthsEqual(t *testing.T) {
	tr := New()
	tr.Record(map[string]float64{"x": 1})
	tr.Record(map[string]float64{"x": 2})
	tr.Record(map[string]float64{"x": 3, "late": 7})
	tr.Record(map[string]float64{"late": 8})

	for _, k := range tr.Keys() {
		assert.Len(t, tr.Series(k), 4, "key %s", k)
	}
	late := tr.Series("late")
	assert.False(t, late[0].Valid)
	assert.False(t, late[1].Valid)
	assert.Equal(t, 7.0, late[2].V)

	x := tr.Series("x")
	assert.False(t, x[3].Valid)
}

func TestTrace_Reset(t *testing.T) {
	tr := New()
	tr.Record(map[string]float64{"x": 1})
	tr.Reset()

	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Keys())
	assert.False(t, tr.Has("x"))

	tr.Record(map[string]float64{"y": 1})
	assert.Equal(t, []string{"y"}, tr.Keys())
	assert.Len(t, tr.Series("y"), 1)
}

func TestTrace_CloneIsIndependent(t *testing.T) {
	tr := New()
	tr.Record(map[string]float64{"x": 1})
	c := tr.Clone()

	tr.Reset()
	tr.Record(map[string]float64{"x": 5})

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []float64{1}, c.Floats("x"))
}

func TestTrace_Row(t *testing.T) {
	tr := New()
	tr.Record(map[string]float64{"a": 1, "b": 2})
	row := tr.Row(0, []string{"b", "a", "missing"})

	assert.Equal(t, 2.0, row[0].V)
	assert.Equal(t, 1.0, row[1].V)
	assert.False(t, row[2].Valid)
}

func TestFromSeries_Pads(t *testing.T) {
	tr := FromSeries([]string{"a", "b"}, map[string][]Value{
		"a": {Of(1), Of(2)},
		"b": {Of(3)},
	})

	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, []string{"a", "b"}, tr.Keys())
	assert.False(t, tr.Series("b")[1].Valid)
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal([]Value{Of(1.5), Of(math.NaN())})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null]`, string(data))

	var back []Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Value{{V: 1.5, Valid: true}, {}}, back)
}

func TestValue_CSVCell(t *testing.T) {
	assert.Equal(t, "", Of(math.Inf(1)).String())
	assert.Equal(t, "0.25", Of(0.25).String())

	v, err := Parse("")
	require.NoError(t, err)
	assert.False(t, v.Valid)

	v, err = Parse("0.25")
	require.NoError(t, err)
	assert.Equal(t, 0.25, v.V)

	_, err = Parse("abc")
	assert.Error(t, err)
}
