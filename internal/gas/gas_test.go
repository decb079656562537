package gas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableCoversEveryGas(t *testing.T) {
	table := DefaultTable()
	for _, g := range All {
		_, ok := table.MolarMass(g)
		assert.True(t, ok, "missing molar mass for %s", g)
	}
}

func TestMolarMassConvention(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		gas  Gas
		want float64
	}{
		{NH3, NitrogenMass},
		{NOYNO, NitrogenMass},
		{HONO, NitrogenMass},
		{CO2, CarbonMass},
		{CH4, CarbonMass},
		{O3, OxygenMass},
	}
	for _, tt := range tests {
		t.Run(string(tt.gas), func(t *testing.T) {
			got, ok := table.MolarMass(tt.gas)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup(t *testing.T) {
	table := DefaultTable()

	g, ok := table.Lookup("Carbon Dioxide / ppm (cal)")
	require.True(t, ok)
	assert.Equal(t, CO2, g)

	g, ok = table.Lookup("CO2 (ppm)")
	require.True(t, ok)
	assert.Equal(t, CO2, g)

	_, ok = table.Lookup(" CO2 (ppm) ")
	assert.False(t, ok, "lookup expects trimmed headers")

	_, ok = table.Lookup("Water / % (cal)")
	assert.False(t, ok)
}

func TestNewTableCopiesInput(t *testing.T) {
	ids := map[string]Gas{"x (ppb)": NO}
	masses := map[Gas]float64{NO: 1}
	table := NewTable(ids, masses)

	ids["y (ppb)"] = NO2
	masses[NO] = 2

	_, ok := table.Lookup("y (ppb)")
	assert.False(t, ok)
	m, _ := table.MolarMass(NO)
	assert.Equal(t, 1.0, m)
	assert.Equal(t, []string{"x (ppb)"}, table.Headers())
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(NOYNO))
	assert.False(t, IsValid("H2O"))
	assert.False(t, IsValid(""))
}

func TestNewTableSkipsUnknownGases(t *testing.T) {
	table := NewTable(
		map[string]Gas{"x (ppb)": NO, "Water / % (cal)": "H2O"},
		map[Gas]float64{NO: 1, "H2O": 18},
	)

	_, ok := table.Lookup("Water / % (cal)")
	assert.False(t, ok)
	_, ok = table.MolarMass("H2O")
	assert.False(t, ok)
	assert.Equal(t, []string{"x (ppb)"}, table.Headers())
	for _, h := range DefaultTable().Headers() {
		g, _ := DefaultTable().Lookup(h)
		assert.True(t, IsValid(g), h)
	}
}
