package sample

import (
	"time"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/sensor"
	"github.com/itohio/badgelab/pkg/thermistor"
)

// NewAveragingConverter creates a converter that averages consecutive blocks
// of windowSize RawSamples and converts each block to one Sample. A partial
// block left when the input closes is flushed as well.
//
// The firmware sends its readings in bursts. When two samples are more than
// cfg.Sampling.BurstGap apart the pending partial block is flushed, so a
// block never mixes readings from different bursts.
func NewAveragingConverter(cfg *config.Config, windowSize int, bufSize int) Converter {
	if windowSize <= 0 {
		windowSize = thermistor.DefaultSamples
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	params := cfg.Thermistor.Params()
	burstGap := cfg.Sampling.BurstGap

	return func(in <-chan sensor.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			buffer := make([]sensor.RawSample, 0, windowSize)
			for raw := range in {
				if len(buffer) > 0 && isBurstStart(buffer[len(buffer)-1], raw, burstGap) {
					send(out, convertSample(averageSamples(buffer), params))
					buffer = buffer[:0]
				}
				buffer = append(buffer, raw)
				if len(buffer) < windowSize {
					continue
				}
				send(out, convertSample(averageSamples(buffer), params))
				buffer = buffer[:0]
			}

			if len(buffer) > 0 {
				send(out, convertSample(averageSamples(buffer), params))
			}
		}()

		return out
	}
}

// isBurstStart reports whether next follows prev after a pause longer than
// gap. Samples without timestamps never start a burst.
func isBurstStart(prev, next sensor.RawSample, gap time.Duration) bool {
	if gap <= 0 || prev.Timestamp.IsZero() || next.Timestamp.IsZero() {
		return false
	}
	return next.Timestamp.Sub(prev.Timestamp) > gap
}

// averageSamples averages the readings of a non-empty block. The timestamp
// and LED state are taken from the most recent sample.
func averageSamples(samples []sensor.RawSample) sensor.RawSample {
	last := samples[len(samples)-1]

	readings := make([]uint16, len(samples))
	lights := make([]uint16, len(samples))
	for i, s := range samples {
		readings[i] = s.Thermistor
		lights[i] = s.Light
	}

	// Average only fails on empty input
	reading, _ := thermistor.Average(readings)
	light, _ := thermistor.Average(lights)

	return sensor.RawSample{
		Timestamp:  last.Timestamp,
		Thermistor: uint16(reading),
		Light:      uint16(light),
		LED:        last.LED,
	}
}
