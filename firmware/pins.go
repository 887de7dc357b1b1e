//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 5   // Delay between thermistor readings of a burst
	BURST_SAMPLES      = 10  // Thermistor readings per burst, averaged by the host
	CYCLE_INTERVAL_MS  = 500 // Time between bursts
	HEARTBEAT_BURSTS   = 2   // Toggle the heartbeat LED every N bursts

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Status LED driven by the host with L1/L0
	PIN_LED = machine.D3

	// ADC pins
	PIN_THERMISTOR = machine.A0
	PIN_LDR        = machine.A1

	// Serial configuration
	// Format "unix_micros,thermistor,light,led\n"
	// Example: "1234567890123456,4095,4095,1\n" = ~30 bytes max per line
	// 20 lines/sec * 30 bytes/line = 600 bytes/sec, well inside 115200 baud
	UART_BAUD_RATE = 115200
)
