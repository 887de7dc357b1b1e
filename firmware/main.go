//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcThermistor machine.ADC
	adcLight      machine.ADC
	uart          = machine.UART0

	ledOn     bool
	heartbeat bool
	bursts    int

	// Serial buffer for reading command lines
	serialBuffer [8]byte
	serialPos    int
)

func main() {
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	PIN_THERMISTOR.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_LDR.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcThermistor = machine.ADC{Pin: PIN_THERMISTOR}
	adcLight = machine.ADC{Pin: PIN_LDR}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	adcThermistor.Configure(adcConfig)
	adcLight.Configure(adcConfig)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	for {
		start := time.Now()

		light := readADC(adcLight)
		for i := 0; i < BURST_SAMPLES; i++ {
			processSerial()
			outputSample(readADC(adcThermistor), light)
			time.Sleep(SAMPLE_INTERVAL_MS * time.Millisecond)
		}

		bursts++
		if bursts >= HEARTBEAT_BURSTS {
			bursts = 0
			heartbeat = !heartbeat
			machine.LED.Set(heartbeat)
		}

		// Keep polling for commands until the next burst
		for time.Since(start) < CYCLE_INTERVAL_MS*time.Millisecond {
			processSerial()
			time.Sleep(time.Millisecond)
		}
	}
}

// readADC scales the 16-bit TinyGo reading down to ADC_RESOLUTION bits.
func readADC(adc machine.ADC) uint16 {
	return adc.Get() >> (16 - ADC_RESOLUTION)
}

func outputSample(thermistor, light uint16) {
	timestampMicros := time.Now().UnixNano() / 1000

	// Output format: "unix_micros,thermistor,light,led\n"
	// Example: "1234567890123,2048,1500,0\n"
	print(timestampMicros)
	print(",")
	print(thermistor)
	print(",")
	print(light)
	if ledOn {
		print(",1\n")
	} else {
		print(",0\n")
	}
}

func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if serialPos == 2 && serialBuffer[0] == 'L' {
				setLED(serialBuffer[1] == '1')
			}
			serialPos = 0
			continue
		}

		if data == ' ' || data == '\t' {
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		} else {
			// Overlong line, drop it
			serialPos = 0
		}
	}
}

func setLED(on bool) {
	ledOn = on
	PIN_LED.Set(on)
}
