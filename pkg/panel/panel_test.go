package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/badgelab/pkg/sample"
)

func TestTempText(t *testing.T) {
	tests := []struct {
		name string
		s    sample.Sample
		ok   bool
		want string
	}{
		{"valid", sample.Sample{TempC: 23.46, Valid: true}, true, "Temp: 23.5 C"},
		{"negative", sample.Sample{TempC: -4.04, Valid: true}, true, "Temp: -4.0 C"},
		{"invalid reading", sample.Sample{Raw: 3}, true, "Temp: --"},
		{"no sample yet", sample.Sample{}, false, "Temp: --"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TempText(tt.s, tt.ok))
		})
	}
}

func TestLightText(t *testing.T) {
	assert.Equal(t, "Light: 812", LightText(sample.Sample{Light: 812}, true))
	assert.Equal(t, "Light: --", LightText(sample.Sample{}, false))
}

func TestGaugeFraction(t *testing.T) {
	assert.Equal(t, float32(0), gaugeFraction(-10))
	assert.Equal(t, float32(0), gaugeFraction(GaugeMinC))
	assert.InDelta(t, 0.5, gaugeFraction(30), 1e-6)
	assert.Equal(t, float32(1), gaugeFraction(GaugeMaxC))
	assert.Equal(t, float32(1), gaugeFraction(100))
}

func TestGaugePoints(t *testing.T) {
	points := gaugePoints(100, 100, 50, 1, 4)
	require.Len(t, points, 5)

	// Arc is symmetric about the vertical axis and peaks at the top
	first, mid, last := points[0], points[2], points[4]
	assert.InDelta(t, 100-first.X, last.X-100, 1e-3)
	assert.InDelta(t, first.Y, last.Y, 1e-3)
	assert.InDelta(t, 100, mid.X, 1e-3)
	assert.InDelta(t, 50, mid.Y, 1e-3)
	assert.Greater(t, first.Y, float32(100), "arc starts below the center")

	for _, p := range points {
		dx, dy := p.X-100, p.Y-100
		assert.InDelta(t, 2500, dx*dx+dy*dy, 0.5)
	}

	assert.Nil(t, gaugePoints(0, 0, 1, 1, 0))
}

func TestSparkPoints(t *testing.T) {
	assert.Nil(t, sparkPoints([]float64{1}, 0, 0, 100, 10))
	assert.Nil(t, sparkPoints([]float64{1, 2}, 0, 0, 0, 10))

	points := sparkPoints([]float64{20, 25, 30}, 10, 0, 100, 10)
	require.Len(t, points, 3)
	assert.Equal(t, float32(10), points[0].X)
	assert.Equal(t, float32(110), points[2].X)
	assert.Equal(t, float32(10), points[0].Y, "minimum at the bottom")
	assert.Equal(t, float32(5), points[1].Y)
	assert.Equal(t, float32(0), points[2].Y, "maximum at the top")

	flat := sparkPoints([]float64{21, 21}, 0, 0, 10, 10)
	assert.Equal(t, flat[0].Y, flat[1].Y)
}
