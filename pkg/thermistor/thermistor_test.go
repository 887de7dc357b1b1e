package thermistor

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_FloorBoundary(t *testing.T) {
	p := DefaultParams()

	_, err := Estimate(9, p)
	assert.ErrorIs(t, err, ErrInvalidReading)

	temp, err := Estimate(10, p)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(temp))
	assert.False(t, math.IsInf(temp, 0))
}

func TestEstimate_Saturation(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name string
		raw  int
	}{
		{name: "full scale", raw: 4095},
		{name: "just below full scale", raw: 4094},
		{name: "first count above ceiling", raw: Ceiling + 1},
		{name: "beyond 12 bits", raw: 5000},
		{name: "zero", raw: 0},
		{name: "negative", raw: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, err := Estimate(tt.raw, p)
			assert.ErrorIs(t, err, ErrInvalidReading)
			assert.Equal(t, float64(0), temp)
		})
	}

	_, err := Estimate(Ceiling, p)
	assert.NoError(t, err)
}

func TestEstimate_NominalRoundTrip(t *testing.T) {
	// 2730/4095 = 2/3 of supply, so R = R_series/2.
	p := Params{
		SupplyVoltage:     3.3,
		SeriesResistance:  10000,
		NominalResistance: 5000,
		NominalTempC:      25,
		Beta:              3950,
	}

	temp, err := Estimate(2730, p)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, temp, 1e-6)

	p.NominalTempC = -10
	temp, err = Estimate(2730, p)
	require.NoError(t, err)
	assert.InDelta(t, -10.0, temp, 1e-6)
}

func TestEstimate_KnownValues(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name string
		raw  int
		want float64
	}{
		{name: "midscale is close to nominal", raw: 2048, want: 25.0},
		{name: "cold", raw: RawFor(0, p), want: 0.0},
		{name: "hot", raw: RawFor(60, p), want: 60.0},
		{name: "alarm threshold", raw: RawFor(40, p), want: 40.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Estimate(tt.raw, p)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.1)
		})
	}
}

func TestEstimate_Monotonic(t *testing.T) {
	p := DefaultParams()

	prev, err := Estimate(NoiseFloor, p)
	require.NoError(t, err)
	for raw := NoiseFloor + 1; raw <= Ceiling; raw++ {
		temp, err := Estimate(raw, p)
		require.NoError(t, err)
		assert.Greater(t, temp, prev, "raw=%d", raw)
		prev = temp
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	p := DefaultParams()

	first, err := Estimate(1234, p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]float64, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Estimate(1234, p)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, math.Float64bits(first), math.Float64bits(r))
	}
}

func TestRawFor_Clamped(t *testing.T) {
	p := DefaultParams()

	assert.Equal(t, 0, RawFor(-200, p))
	assert.LessOrEqual(t, RawFor(1000, p), MaxADC)
	assert.InDelta(t, 2048, RawFor(25, p), 1)
}

func TestParams_Validate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{name: "zero supply", mutate: func(p *Params) { p.SupplyVoltage = 0 }},
		{name: "negative series", mutate: func(p *Params) { p.SeriesResistance = -1 }},
		{name: "zero nominal", mutate: func(p *Params) { p.NominalResistance = 0 }},
		{name: "zero beta", mutate: func(p *Params) { p.Beta = 0 }},
		{name: "below absolute zero", mutate: func(p *Params) { p.NominalTempC = -300 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestAverage(t *testing.T) {
	avg, err := Average([]uint16{100, 101, 102, 103})
	require.NoError(t, err)
	assert.Equal(t, 102, avg) // 101.5 rounds up

	avg, err = Average([]uint16{4095, 4095, 4095})
	require.NoError(t, err)
	assert.Equal(t, 4095, avg)

	_, err = Average(nil)
	assert.Error(t, err)
}
