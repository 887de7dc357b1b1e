package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/theckman/yacspin"

	"github.com/itohio/badgelab/pkg/reader"
)

func newSpinner(suffix string) (*yacspin.Spinner, error) {
	return yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[14],
		Suffix:            " " + suffix,
		SuffixAutoColon:   true,
		StopCharacter:     "✓",
		StopColors:        []string{"fgGreen"},
		StopFailCharacter: "✗",
		StopFailColors:    []string{"fgRed"},
	})
}

// readerBackOff retries forever with a capped interval; the context ends it.
func readerBackOff(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(&backoff.ExponentialBackOff{
		InitialInterval:     250 * time.Millisecond,
		RandomizationFactor: 0.2,
		Multiplier:          2,
		MaxInterval:         5 * time.Second,
		MaxElapsedTime:      0,
		Clock:               backoff.SystemClock,
	}, ctx)
}

// waitForReader opens the PN532 at path, retrying until it answers or ctx is
// done. A spinner shows the last error while waiting.
func waitForReader(ctx context.Context, path string) (*reader.PN532, error) {
	spinner, err := newSpinner(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}
	_ = spinner.Start()
	spinner.Message("connecting")

	var src *reader.PN532
	op := func() error {
		initCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		p, err := reader.OpenPN532(initCtx, path, detectTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			spinner.Message(err.Error())
			return err
		}
		src = p
		return nil
	}

	if err := backoff.Retry(op, readerBackOff(ctx)); err != nil {
		spinner.StopFailMessage("giving up")
		_ = spinner.StopFail()
		return nil, err
	}
	if src == nil {
		_ = spinner.StopFail()
		return nil, ctx.Err()
	}

	spinner.StopMessage("ready")
	_ = spinner.Stop()
	return src, nil
}
