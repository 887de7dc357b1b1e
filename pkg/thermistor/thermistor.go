package thermistor

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// MaxADC is the full-scale count of a 12-bit ADC.
	MaxADC = 4095
	// NoiseFloor is the smallest raw count that is converted. Readings below it
	// carry almost no current through the divider.
	NoiseFloor = 10
	// Ceiling is the largest raw count that is converted. Above it the
	// thermistor drop approaches zero and the resistance collapses.
	Ceiling = MaxADC - NoiseFloor

	// DefaultSamples is the number of consecutive reads averaged per estimate.
	DefaultSamples = 10
	// DefaultSampleDelay is the pause between averaged reads.
	DefaultSampleDelay = 5 * time.Millisecond

	kelvinOffset = 273.15
)

// ErrInvalidReading is returned when a raw sample is outside the range the
// divider model can convert.
var ErrInvalidReading = errors.New("invalid thermistor reading")

// Params holds the calibration constants of a thermistor in a voltage divider
// with a fixed series resistor.
type Params struct {
	SupplyVoltage     float64 // Divider supply and ADC reference (V)
	SeriesResistance  float64 // Fixed resistor (Ohm)
	NominalResistance float64 // Thermistor resistance at NominalTempC (Ohm)
	NominalTempC      float64 // Nominal temperature (C)
	Beta              float64 // Beta coefficient (K)
}

// DefaultParams returns the constants of a common 10k NTC with B=3950 on a
// 3.3V divider.
func DefaultParams() Params {
	return Params{
		SupplyVoltage:     3.3,
		SeriesResistance:  10000,
		NominalResistance: 10000,
		NominalTempC:      25,
		Beta:              3950,
	}
}

// Validate reports parameters the model cannot work with.
func (p Params) Validate() error {
	switch {
	case p.SupplyVoltage <= 0:
		return fmt.Errorf("supply voltage must be positive, got %g", p.SupplyVoltage)
	case p.SeriesResistance <= 0:
		return fmt.Errorf("series resistance must be positive, got %g", p.SeriesResistance)
	case p.NominalResistance <= 0:
		return fmt.Errorf("nominal resistance must be positive, got %g", p.NominalResistance)
	case p.Beta <= 0:
		return fmt.Errorf("beta coefficient must be positive, got %g", p.Beta)
	case p.NominalTempC <= -kelvinOffset:
		return fmt.Errorf("nominal temperature below absolute zero: %g", p.NominalTempC)
	}
	return nil
}

// Estimate converts an averaged raw ADC sample to degrees Celsius using the
// Beta form of the Steinhart-Hart equation:
//
//	1/T = 1/T0 + ln(R/R0)/B
//
// Samples below NoiseFloor or above Ceiling return ErrInvalidReading.
func Estimate(raw int, p Params) (float64, error) {
	if raw < NoiseFloor || raw > Ceiling {
		return 0, fmt.Errorf("%w: raw=%d (valid %d..%d)", ErrInvalidReading, raw, NoiseFloor, Ceiling)
	}

	vOut := (float64(raw) / MaxADC) * p.SupplyVoltage
	vTherm := p.SupplyVoltage - vOut
	resistance := p.SeriesResistance * (vTherm / vOut)

	invT := 1.0/(p.NominalTempC+kelvinOffset) + (1.0/p.Beta)*math.Log(resistance/p.NominalResistance)
	return 1.0/invT - kelvinOffset, nil
}

// RawFor is the inverse of Estimate: it returns the raw count the divider
// would produce at tempC. The result is clamped to [0, MaxADC].
func RawFor(tempC float64, p Params) int {
	t := tempC + kelvinOffset
	t0 := p.NominalTempC + kelvinOffset
	resistance := p.NominalResistance * math.Exp(p.Beta*(1.0/t-1.0/t0))

	// V_out / V_s = R_series / (R_series + R)
	ratio := p.SeriesResistance / (p.SeriesResistance + resistance)
	raw := int(math.Round(ratio * MaxADC))
	if raw < 0 {
		return 0
	}
	if raw > MaxADC {
		return MaxADC
	}
	return raw
}

// Average returns the mean of consecutive raw samples rounded to the nearest
// count.
func Average(samples []uint16) (int, error) {
	if len(samples) == 0 {
		return 0, errors.New("no samples to average")
	}

	var sum uint32
	for _, s := range samples {
		sum += uint32(s)
	}
	return int(float64(sum)/float64(len(samples)) + 0.5), nil
}
