package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/decor"
	"github.com/itohio/badgelab/pkg/hal"
)

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		gpioFlag     = flag.Bool("gpio", false, "Drive the backlight from the host GPIO dimmer pin")
		intervalFlag = flag.Duration("interval", decor.DefaultToggleInterval, "Time each scene stays on screen")
		potFlag      = flag.Int("pot", decor.MaxPot/2, "Initial potentiometer reading (0-4095)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pin, err := openDimmer(cfg.GPIO, *gpioFlag)
	if err != nil {
		log.Fatalf("Failed to open backlight: %v", err)
	}

	application := app.NewWithID("com.itohio.badgelab.decor")
	window := application.NewWindow("Decor")

	screen := canvas.NewImageFromImage(decor.NewFramebuffer(decor.Width, decor.Height))
	screen.FillMode = canvas.ImageFillContain
	screen.ScaleMode = canvas.ImageScalePixels
	screen.SetMinSize(fyne.NewSize(2*decor.Width, 2*decor.Height))

	shade := canvas.NewRectangle(color.NRGBA{})
	level := widget.NewLabel("")

	var pot atomic.Int64
	pot.Store(int64(*potFlag))

	slider := widget.NewSlider(0, decor.MaxPot)
	slider.Step = 1
	slider.SetValue(float64(*potFlag))
	slider.OnChanged = func(v float64) {
		pot.Store(int64(v))
	}

	backlight := &backlight{pin: pin, shade: shade, label: level}
	display := decor.NewDisplay(
		func() int { return int(pot.Load()) },
		backlight,
		decor.WithToggleInterval(*intervalFlag),
		decor.OnFrame(func(fb *decor.Framebuffer, scene decor.Scene) {
			fyne.Do(func() {
				screen.Image = fb
				screen.Refresh()
				window.SetTitle(fmt.Sprintf("Decor - %s", scene))
			})
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := display.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Display stopped: %v", err)
		}
	}()

	controls := container.NewBorder(nil, nil, widget.NewLabel("Pot"), level, slider)
	window.SetContent(container.NewBorder(nil, controls, nil, nil, container.NewStack(screen, shade)))
	window.ShowAndRun()

	cancel()
	wg.Wait()
	if err := pin.SetBrightness(0); err != nil {
		log.Printf("Failed to switch backlight off: %v", err)
	}
}

// openDimmer opens the GPIO backlight when useGPIO is set and a pin is
// configured. Otherwise level changes are logged.
func openDimmer(cfg config.GPIOConfig, useGPIO bool) (decor.Dimmer, error) {
	if !useGPIO || cfg.Dimmer == "" {
		return &hal.LogDimmer{}, nil
	}
	d, err := hal.OpenDimmer(cfg.Dimmer)
	if err != nil {
		return nil, fmt.Errorf("dimmer: %w", err)
	}
	return d, nil
}

// backlight drives the dimmer pin and darkens the on-screen preview to match.
type backlight struct {
	pin   decor.Dimmer
	shade *canvas.Rectangle
	label *widget.Label
}

// SetBrightness sets the pin, then the preview. A rejected level leaves the
// preview unchanged.
func (b *backlight) SetBrightness(v uint8) error {
	if err := b.pin.SetBrightness(v); err != nil {
		return err
	}
	fyne.Do(func() {
		b.shade.FillColor = shadeColor(v)
		b.shade.Refresh()
		b.label.SetText(fmt.Sprintf("%3d%%", int(v)*100/255))
	})
	return nil
}

// shadeColor is the translucent black overlay that dims the preview to v.
func shadeColor(v uint8) color.NRGBA {
	return color.NRGBA{A: 255 - v}
}
