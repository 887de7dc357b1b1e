package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/hal"
)

func TestOpenDimmer_LogsWithoutGPIO(t *testing.T) {
	d, err := openDimmer(config.GPIOConfig{Dimmer: "GPIO12"}, false)
	require.NoError(t, err)
	assert.IsType(t, &hal.LogDimmer{}, d)

	d, err = openDimmer(config.GPIOConfig{}, true)
	require.NoError(t, err)
	assert.IsType(t, &hal.LogDimmer{}, d, "no pin configured")
}

func TestShadeColor(t *testing.T) {
	assert.Equal(t, uint8(255), shadeColor(0).A, "dark backlight hides the preview")
	assert.Equal(t, uint8(0), shadeColor(255).A)
	assert.Equal(t, uint8(128), shadeColor(127).A)
}
