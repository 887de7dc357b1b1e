package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/badgelab/pkg/sensor"
)

// showSettingsDialog displays a settings dialog with tabs for the sensor
// configuration.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createThermistorTab(state),
		createStatusTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(520, 420))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

func saveConfig(state *appState) bool {
	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(fmt.Errorf("invalid settings: %w", err), state.window)
		return false
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// reconnect restarts a running chain so that it picks up new settings.
func reconnect(state *appState) {
	if state.chain == nil || !state.chain.device.IsConnected() {
		return
	}
	disconnect(state)
	handleConnect(state)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := sensor.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Display name to port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected
			}
			changed := false
			if selectedPort != "" && selectedPort != state.cfg.Serial.Port {
				state.cfg.Serial.Port = selectedPort
				changed = true
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 && baud != state.cfg.Serial.BaudRate {
				state.cfg.Serial.BaudRate = baud
				changed = true
			}
			if !saveConfig(state) {
				return
			}
			if changed && !state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createThermistorTab creates the divider and thermistor calibration tab.
func createThermistorTab(state *appState) *container.TabItem {
	th := &state.cfg.Thermistor

	supplyEntry := widget.NewEntry()
	supplyEntry.SetText(fmt.Sprintf("%.2f", th.SupplyVoltage))

	seriesEntry := widget.NewEntry()
	seriesEntry.SetText(fmt.Sprintf("%.0f", th.SeriesResistance))

	nominalEntry := widget.NewEntry()
	nominalEntry.SetText(fmt.Sprintf("%.0f", th.NominalResistance))

	nominalTempEntry := widget.NewEntry()
	nominalTempEntry.SetText(fmt.Sprintf("%.1f", th.NominalTempC))

	betaEntry := widget.NewEntry()
	betaEntry.SetText(fmt.Sprintf("%.0f", th.Beta))

	averageEntry := widget.NewEntry()
	averageEntry.SetText(strconv.Itoa(state.cfg.Sampling.AverageSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Supply (V)", Widget: supplyEntry},
			{Text: "Series Resistor (Ω)", Widget: seriesEntry},
			{Text: "Nominal Resistance (Ω)", Widget: nominalEntry},
			{Text: "Nominal Temperature (C)", Widget: nominalTempEntry},
			{Text: "Beta", Widget: betaEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(supplyEntry.Text, 64); err == nil {
				th.SupplyVoltage = v
			}
			if v, err := strconv.ParseFloat(seriesEntry.Text, 64); err == nil {
				th.SeriesResistance = v
			}
			if v, err := strconv.ParseFloat(nominalEntry.Text, 64); err == nil {
				th.NominalResistance = v
			}
			if v, err := strconv.ParseFloat(nominalTempEntry.Text, 64); err == nil {
				th.NominalTempC = v
			}
			if v, err := strconv.ParseFloat(betaEntry.Text, 64); err == nil {
				th.Beta = v
			}
			if v, err := strconv.Atoi(averageEntry.Text); err == nil && v >= 0 {
				state.cfg.Sampling.AverageSamples = v
			}
			if saveConfig(state) {
				// Converters read the calibration when the chain is built
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Thermistor", form)
}

// createStatusTab creates the status unit behaviour tab. Changes apply on
// the next start.
func createStatusTab(state *appState) *container.TabItem {
	st := &state.cfg.Status

	alarmEntry := widget.NewEntry()
	alarmEntry.SetText(fmt.Sprintf("%.1f", st.AlarmTempC))

	lightEntry := widget.NewEntry()
	lightEntry.SetText(strconv.Itoa(st.LightThreshold))

	durationEntry := widget.NewEntry()
	durationEntry.SetText(st.MessageDuration.String())

	defaultEntry := widget.NewEntry()
	defaultEntry.SetText(st.DefaultMessage)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Alarm Temperature (C)", Widget: alarmEntry},
			{Text: "Light Threshold (raw)", Widget: lightEntry},
			{Text: "Message Duration", Widget: durationEntry},
			{Text: "Default Message", Widget: defaultEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(alarmEntry.Text, 64); err == nil {
				st.AlarmTempC = v
			}
			if v, err := strconv.Atoi(lightEntry.Text); err == nil {
				st.LightThreshold = v
			}
			if d, err := time.ParseDuration(durationEntry.Text); err == nil && d > 0 {
				st.MessageDuration = d
			}
			if defaultEntry.Text != "" {
				st.DefaultMessage = defaultEntry.Text
			}
			if saveConfig(state) {
				dialog.ShowInformation("Settings", "Status settings apply after restart", state.window)
			}
		},
	}

	return container.NewTabItem("Status", form)
}

// createMockTab creates the Mock sensor configuration tab.
func createMockTab(state *appState) *container.TabItem {
	m := &state.cfg.Mock

	baseEntry := widget.NewEntry()
	baseEntry.SetText(fmt.Sprintf("%.1f", m.BaseTempC))

	swingEntry := widget.NewEntry()
	swingEntry.SetText(fmt.Sprintf("%.1f", m.SwingC))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(m.Period.String())

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.1f", m.NoiseLevel))

	lightEntry := widget.NewEntry()
	lightEntry.SetText(strconv.Itoa(m.Light))

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(m.SampleRate.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Base Temperature (C)", Widget: baseEntry},
			{Text: "Swing (C)", Widget: swingEntry},
			{Text: "Period", Widget: periodEntry},
			{Text: "Noise (counts)", Widget: noiseEntry},
			{Text: "Light (raw)", Widget: lightEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(baseEntry.Text, 64); err == nil {
				m.BaseTempC = v
			}
			if v, err := strconv.ParseFloat(swingEntry.Text, 64); err == nil {
				m.SwingC = v
			}
			if d, err := time.ParseDuration(periodEntry.Text); err == nil && d > 0 {
				m.Period = d
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				m.NoiseLevel = v
			}
			if v, err := strconv.Atoi(lightEntry.Text); err == nil {
				m.Light = v
			}
			if d, err := time.ParseDuration(sampleRateEntry.Text); err == nil && d > 0 {
				m.SampleRate = d
			}
			if saveConfig(state) && state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
