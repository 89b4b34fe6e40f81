package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/s57extract/internal/engine"
)

func TestTableRuleFor(t *testing.T) {
	table, err := NewTable(
		FilteredField{Layer: "LNDARE", Field: "NOBJNM"},
		MappedValue{Layer: "DEPARE", Field: "DRVAL1"},
		ConstantValue{Layer: "SEAARE", Value: 0},
	)
	require.NoError(t, err)

	tests := []struct {
		name  string
		layer string
		want  Rule
	}{
		{"filtered", "LNDARE", FilteredField{Layer: "LNDARE", Field: "NOBJNM"}},
		{"mapped", "DEPARE", MappedValue{Layer: "DEPARE", Field: "DRVAL1"}},
		{"constant", "SEAARE", ConstantValue{Layer: "SEAARE", Value: 0}},
		{"absent", "BRIDGE", nil},
		{"case differs", "lndare", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.RuleFor(tt.layer)
			if tt.want == nil {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableKeepsOrder(t *testing.T) {
	table, err := NewTable(
		FilteredField{Layer: "BRIDGE", Field: "OBJNAM"},
		FilteredField{Layer: "LNDARE", Field: "OBJNAM"},
		FilteredField{Layer: "DEPARE", Field: "OBJNAM"},
	)
	require.NoError(t, err)

	var names []string
	for _, r := range table.Rules() {
		names = append(names, r.LayerName())
	}
	assert.Equal(t, []string{"BRIDGE", "LNDARE", "DEPARE"}, names)
	assert.Equal(t, 3, table.Len())

	// Callers cannot change the table through the returned slice.
	rs := table.Rules()
	rs[0] = nil
	assert.NotNil(t, table.Rules()[0])
}

func TestNewTableErrors(t *testing.T) {
	_, err := NewTable(
		FilteredField{Layer: "LNDARE", Field: "NOBJNM"},
		MappedValue{Layer: "LNDARE", Field: "DRVAL1"},
	)
	assert.True(t, errors.Is(err, ErrDuplicateLayer))

	_, err = NewTable(FilteredField{Layer: "", Field: "NOBJNM"})
	assert.Error(t, err)

	_, err = NewTable(MappedValue{Layer: "DEPARE"})
	assert.Error(t, err)

	_, err = NewTable(ConstantValue{Layer: "LNDARE", Value: -1})
	assert.NoError(t, err)
}

func TestRequiredField(t *testing.T) {
	f, ok := FilteredField{Layer: "LNDARE", Field: "NOBJNM"}.RequiredField()
	assert.True(t, ok)
	assert.Equal(t, "NOBJNM", f)

	f, ok = MappedValue{Layer: "DEPARE", Field: "DRVAL1"}.RequiredField()
	assert.True(t, ok)
	assert.Equal(t, "DRVAL1", f)

	_, ok = ConstantValue{Layer: "LNDARE", Value: -1}.RequiredField()
	assert.False(t, ok)
}

func TestNamesMode(t *testing.T) {
	mode, err := NamesMode(DefaultNamesLayers, DefaultNamesField)
	require.NoError(t, err)

	assert.Equal(t, NamesModeName, mode.Name)
	assert.Equal(t, "NOBJNM", mode.ValueColumn)
	assert.Equal(t, Text, mode.ValueType)
	assert.True(t, mode.LevelColumn)
	assert.Equal(t, "nobjnm", mode.OutputName)
	assert.Equal(t, engine.OpenOptions{}, mode.OpenOptions)
	assert.Zero(t, mode.Dimension)

	var layers []string
	for _, r := range mode.Table.Rules() {
		require.IsType(t, FilteredField{}, r)
		layers = append(layers, r.LayerName())
	}
	assert.Equal(t, []string{"LNDARE", "DEPARE", "SEAARE", "HRBFAC", "BRIDGE"}, layers)

	_, err = NamesMode(nil, "NOBJNM")
	assert.Error(t, err)
	_, err = NamesMode([]string{"LNDARE"}, "")
	assert.Error(t, err)
	_, err = NamesMode([]string{"LNDARE", "LNDARE"}, "OBJNAM")
	assert.True(t, errors.Is(err, ErrDuplicateLayer))
}

func TestDepthMode(t *testing.T) {
	mode, err := DepthMode(DefaultLandValue)
	require.NoError(t, err)

	assert.Equal(t, DepthModeName, mode.Name)
	assert.Equal(t, "DEPTH", mode.ValueColumn)
	assert.Equal(t, Real, mode.ValueType)
	assert.False(t, mode.LevelColumn)
	assert.Equal(t, 2, mode.Dimension)
	assert.Equal(t, engine.OpenOptions{SplitMultipoint: true, AddSoundingDepth: true}, mode.OpenOptions)

	rs := mode.Table.Rules()
	require.Len(t, rs, 8)
	assert.Equal(t, ConstantValue{Layer: "LNDARE", Value: -1}, rs[0])

	want := map[string]string{
		"DEPARE": "DRVAL1", "DEPCNT": "VALDCO", "DRGARE": "DRVAL1", "OBSTRN": "VALSOU",
		"SOUNDG": "DEPTH", "UWTROC": "VALSOU", "WRECKS": "VALSOU",
	}
	for _, r := range rs[1:] {
		mv, ok := r.(MappedValue)
		require.True(t, ok, "%v", r)
		assert.Equal(t, want[mv.Layer], mv.Field, mv.Layer)
	}
}

func TestModesAreRebuiltIdentically(t *testing.T) {
	a, err := DepthMode(-1)
	require.NoError(t, err)
	b, err := DepthMode(-1)
	require.NoError(t, err)
	assert.Equal(t, a.Table.Rules(), b.Table.Rules())

	n1, err := NamesMode([]string{"LNDARE", "BRIDGE"}, "OBJNAM")
	require.NoError(t, err)
	n2, err := NamesMode([]string{"LNDARE", "BRIDGE"}, "OBJNAM")
	require.NoError(t, err)
	assert.Equal(t, n1, n2)
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "LNDARE: NOBJNM", FilteredField{Layer: "LNDARE", Field: "NOBJNM"}.String())
	assert.Equal(t, "DEPARE: real(DRVAL1)", MappedValue{Layer: "DEPARE", Field: "DRVAL1"}.String())
	assert.Equal(t, "LNDARE: -1", ConstantValue{Layer: "LNDARE", Value: -1}.String())
	assert.Equal(t, "REAL", Real.String())
}
