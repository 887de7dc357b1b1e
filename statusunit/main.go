package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/link"
	"github.com/itohio/badgelab/pkg/panel"
	"github.com/itohio/badgelab/pkg/sample"
	"github.com/itohio/badgelab/pkg/sensor"
	"github.com/itohio/badgelab/pkg/status"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use mocked sensor instead of serial port")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of raw samples to average (0 = disabled, overrides config)")
		gpioFlag           = flag.Bool("gpio", false, "Drive LED and buzzer from host GPIO pins")
		listenFlag         = flag.String("listen", "", "UDP listen address override (e.g., :4210)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *averageSamplesFlag >= 0 {
		cfg.Sampling.AverageSamples = *averageSamplesFlag
	}
	if *listenFlag != "" {
		cfg.Link.ListenAddr = *listenFlag
	}

	outputs, err := openOutputs(cfg.GPIO, *gpioFlag)
	if err != nil {
		log.Fatalf("Failed to open outputs: %v", err)
	}

	unit := status.New(
		cfg.Status,
		cfg.Access.List(),
		status.WithIndicator(outputs.led),
		status.WithBuzzer(outputs.buzzer),
		status.WithWindow(time.Duration(cfg.Sampling.WindowSeconds*float64(time.Second))),
	)

	application := app.NewWithID("com.itohio.badgelab")

	window := application.NewWindow("Status Unit")
	window.Resize(fyne.NewSize(800, 480))
	window.CenterOnScreen()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		unit:       unit,
		led:        outputs.led,
		window:     window,
		useMock:    *mockFlag,
	}

	panelWidget := panel.New(cfg.Status.AlarmTempC)
	state.panel = panelWidget

	updater := newThrottle(16*time.Millisecond, time.Now) // ~60 FPS
	unit.OnUpdate(func(snap status.Snapshot) {
		updater.Do(func() {
			fyne.Do(func() {
				panelWidget.UpdateData(snap)
			})
		})
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := unit.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Status unit stopped: %v", err)
		}
	}()

	listener, err := link.Listen(ctx, cfg.Link.ListenAddr, 0)
	if err != nil {
		log.Printf("Badge link disabled: %v", err)
	} else {
		log.Printf("Listening for badges on %s", listener.Addr())
		wg.Add(1)
		go func() {
			defer wg.Done()
			unit.ProcessPackets(ctx, listener.Packets())
		}()
	}

	toolbar := createToolbar(state)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		panelWidget,
	)

	window.SetContent(content)
	window.ShowAndRun()

	updater.Stop()
	closeSensorChain(state.chain)
	state.chain = nil
	cancel()
	if listener != nil {
		listener.Close()
	}
	wg.Wait()
	outputs.Close()
}

// sensorChain tracks the components of the sensor pipeline for graceful shutdown.
type sensorChain struct {
	device        sensor.Device
	samplesStream <-chan sample.Sample
	unitDone      chan struct{} // Closed when the sample processing goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	unit       *status.Unit
	led        *ledFanout
	panel      *panel.Panel
	window     fyne.Window
	connectBtn *widget.Button
	uidEntry   *widget.Entry
	useMock    bool
	chain      *sensorChain // Current sensor chain (nil if not connected)
}

// createToolbar creates the toolbar with Connect and Settings buttons and a
// manual badge entry.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	uidEntry := widget.NewEntry()
	uidEntry.SetPlaceHolder("Badge UID")
	uidEntry.OnSubmitted = func(string) {
		handleManualBadge(state)
	}
	state.uidEntry = uidEntry

	badgeBtn := widget.NewButtonWithIcon("", theme.ConfirmIcon(), func() {
		handleManualBadge(state)
	})

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		badgeBtn,
		uidEntry,
	)
}

// handleManualBadge feeds the entered UID to the status unit as if a reader
// had broadcast it.
func handleManualBadge(state *appState) {
	uid := state.uidEntry.Text
	if uid == "" {
		return
	}
	state.unit.HandleUID(uid)
	state.uidEntry.SetText("")
}

// closeSensorChain gracefully closes the sensor chain. It waits until the
// converters have drained and the status unit has stopped reading samples.
func closeSensorChain(chain *sensorChain) {
	if chain == nil {
		return
	}

	// Closing the device closes the raw samples channel
	if chain.device != nil {
		chain.device.Close()
	}

	if chain.unitDone != nil {
		<-chain.unitDone
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil {
		// A chain whose device dropped out is torn down and reconnected
		wasConnected := state.chain.device.IsConnected()
		disconnect(state)
		if wasConnected {
			return
		}
	}

	var device sensor.Device
	if state.useMock {
		device = sensor.NewMock(&state.cfg.Mock, state.cfg.Thermistor.Params())
		log.Println("Using mocked sensor")
	} else {
		device = sensor.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, sensor.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked sensor: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	if state.useMock {
		log.Println("Connected to mocked sensor")
	} else {
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
	}

	if err := state.led.Attach(device); err != nil {
		log.Printf("Failed to sync sensor LED: %v", err)
	}

	state.unit.ResetShutdown()

	samplesStream := buildPipeline(state.cfg, device.Samples())

	unitDone := make(chan struct{})
	go func() {
		defer close(unitDone)
		// The chain ends when the device closes, not on a context
		state.unit.ProcessSamples(context.Background(), samplesStream)
	}()

	state.chain = &sensorChain{
		device:        device,
		samplesStream: samplesStream,
		unitDone:      unitDone,
	}
}

// disconnect closes the current chain and detaches the sensor LED.
func disconnect(state *appState) {
	closeSensorChain(state.chain)
	state.chain = nil
	_ = state.led.Attach(nil)
	// Badge frames keep updating the display while the sensor is disconnected
	state.unit.ResetShutdown()
	if state.useMock {
		log.Println("Disconnected from mocked sensor")
	} else {
		log.Println("Disconnected from serial port")
	}
}

// buildPipeline chains the converters: raw samples are averaged in blocks of
// AverageSamples, or converted one by one when averaging is disabled.
func buildPipeline(cfg *config.Config, raw <-chan sensor.RawSample) <-chan sample.Sample {
	if cfg.Sampling.AverageSamples > 0 {
		return sample.NewAveragingConverter(cfg, cfg.Sampling.AverageSamples, 500)(raw)
	}
	return sample.NewConverter(cfg, 500)(raw)
}
