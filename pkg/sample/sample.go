package sample

import (
	"errors"
	"log"
	"time"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/sensor"
	"github.com/itohio/badgelab/pkg/thermistor"
)

// DefaultBufferSize is the output channel size used when none is given.
const DefaultBufferSize = 100

// Sample represents a processed measurement sample with physical values.
type Sample struct {
	Timestamp time.Time
	Raw       int     // Thermistor count the estimate was computed from
	TempC     float64 // Estimated temperature; meaningful only when Valid
	Valid     bool    // False when Raw is outside the convertible range
	Light     int     // Raw light sensor reading
	LED       bool    // Firmware LED state
}

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan sensor.RawSample) <-chan Sample

// NewConverter creates a converter function that transforms RawSample to
// Sample. Readings outside the valid range are forwarded with Valid unset.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	params := cfg.Thermistor.Params()

	return func(in <-chan sensor.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				send(out, convertSample(raw, params))
			}
		}()

		return out
	}
}

// convertSample converts a RawSample to Sample using the thermistor parameters.
func convertSample(raw sensor.RawSample, p thermistor.Params) Sample {
	s := Sample{
		Timestamp: raw.Timestamp,
		Raw:       int(raw.Thermistor),
		Light:     int(raw.Light),
		LED:       raw.LED,
	}

	tempC, err := thermistor.Estimate(s.Raw, p)
	switch {
	case err == nil:
		s.TempC = tempC
		s.Valid = true
	case errors.Is(err, thermistor.ErrInvalidReading):
		log.Printf("Sensor reading not convertible: %v", err)
	default:
		log.Printf("Failed to convert sample: %v", err)
	}
	return s
}

func send(out chan<- Sample, s Sample) {
	select {
	case out <- s:
	case <-time.After(time.Second):
		log.Printf("Converter output channel full, dropping sample")
	}
}
