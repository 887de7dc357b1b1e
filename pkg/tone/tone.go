// Package tone plays note sequences on a buzzer.
package tone

import (
	"context"
	"fmt"
	"time"
)

// Note frequencies in Hz.
const (
	Rest = 0
	G3   = 196
	E4   = 330
	G4   = 392
	A4   = 440
	A4S  = 466
	B4   = 494
	C5   = 523
	D5   = 587
	E5   = 659
	F5   = 698
	G5   = 784
	A5   = 880
)

// Note durations.
const (
	Quarter   = 250 * time.Millisecond
	Eighth    = 125 * time.Millisecond
	Sixteenth = 62 * time.Millisecond
)

// Buzzer drives a piezo buzzer.
type Buzzer interface {
	// Tone starts a square wave at freq Hz.
	Tone(freq int) error
	// Stop silences the buzzer.
	Stop() error
}

// Note is a single tone. A Freq of Rest is silence.
type Note struct {
	Freq     int
	Duration time.Duration
}

// Melody is a sequence of notes.
type Melody []Note

// Duration returns the total playing time including the gaps between notes.
func (m Melody) Duration() time.Duration {
	var d time.Duration
	for _, n := range m {
		d += n.Duration + gap(n.Duration)
	}
	return d
}

// Alarm is played when the temperature exceeds the alarm threshold.
var Alarm = Melody{
	{E5, Eighth}, {E5, Eighth}, {Rest, Eighth}, {E5, Eighth}, {Rest, Eighth},
	{C5, Eighth}, {E5, Eighth}, {G5, Quarter}, {Rest, Quarter}, {G3, Quarter},
	{C5, Quarter}, {G4, Eighth}, {E4, Quarter}, {A4, Eighth}, {B4, Eighth},
	{A4S, Eighth}, {A4, Eighth}, {G4, Quarter},
}

// Feedback tones for access decisions.
var (
	GrantedBeep = Melody{{G5, 200 * time.Millisecond}}
	LimitedBeep = Melody{{E5, 200 * time.Millisecond}}
	DeniedBeep  = Melody{{G3, 400 * time.Millisecond}}
)

// gap is the silence after each note, a tenth of its duration.
func gap(d time.Duration) time.Duration {
	return d / 10
}

// Play plays m on b and returns when the melody ends or ctx is done. The
// buzzer is always left silent.
func Play(ctx context.Context, b Buzzer, m Melody) (err error) {
	defer func() {
		if stopErr := b.Stop(); stopErr != nil && err == nil {
			err = fmt.Errorf("failed to stop buzzer: %w", stopErr)
		}
	}()

	for _, n := range m {
		if n.Freq == Rest {
			if err := b.Stop(); err != nil {
				return fmt.Errorf("failed to stop buzzer: %w", err)
			}
		} else if err := b.Tone(n.Freq); err != nil {
			return fmt.Errorf("failed to play %d Hz: %w", n.Freq, err)
		}
		if err := sleep(ctx, n.Duration); err != nil {
			return err
		}

		if err := b.Stop(); err != nil {
			return fmt.Errorf("failed to stop buzzer: %w", err)
		}
		if err := sleep(ctx, gap(n.Duration)); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
