// Package panel provides a Fyne widget that mirrors the status unit's
// 128x32 OLED and adds a temperature history and gauge.
package panel

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/badgelab/pkg/sample"
	"github.com/itohio/badgelab/pkg/status"
)

// Gauge range in degrees Celsius.
const (
	GaugeMinC = 0.0
	GaugeMaxC = 60.0
)

// Panel is a custom Fyne widget that displays the status unit state.
type Panel struct {
	widget.BaseWidget

	mu       sync.RWMutex
	snap     status.Snapshot
	alarmC   float64
	temps    []float64       // Valid temperatures of the displayed history
	display  []sample.Sample // Downsampled history (reused)
	maxPoint int
}

// New creates a new Panel. alarmC marks the alarm threshold on the gauge.
func New(alarmC float64) *Panel {
	p := &Panel{
		alarmC:   alarmC,
		temps:    make([]float64, 0, 256),
		display:  make([]sample.Sample, 0, 256),
		maxPoint: 256,
	}
	p.ExtendBaseWidget(p)
	p.Refresh()
	return p
}

// UpdateData updates the widget with a new snapshot. It must be called on
// the Fyne main thread, e.g. through fyne.Do.
func (p *Panel) UpdateData(snap status.Snapshot) {
	p.mu.Lock()
	p.display = sample.DownsampleSamples(p.display, snap.History, p.maxPoint)
	p.temps = sample.Temperatures(p.temps, p.display)
	p.snap = snap
	p.snap.History = nil
	p.mu.Unlock()

	p.Refresh()
}

// CreateRenderer creates the widget renderer.
func (p *Panel) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(oledBackground)
	r := &panelRenderer{
		panel:   p,
		bg:      bg,
		message: newText(14, true),
		rule:    canvas.NewLine(oledForeground),
		temp:    newText(12, false),
		light:   newText(12, false),
		uid:     newText(10, false),
		led:     canvas.NewCircle(ledOff),
		objects: []fyne.CanvasObject{bg},
	}
	r.rule.StrokeWidth = 1
	r.led.StrokeColor = oledForeground
	r.led.StrokeWidth = 1
	return r
}

func newText(size float32, bold bool) *canvas.Text {
	t := canvas.NewText("", oledForeground)
	t.TextSize = size
	t.TextStyle = fyne.TextStyle{Bold: bold, Monospace: true}
	return t
}

// TempText formats the temperature line the way the OLED shows it.
func TempText(s sample.Sample, ok bool) string {
	if !ok || !s.Valid {
		return "Temp: --"
	}
	return fmt.Sprintf("Temp: %.1f C", s.TempC)
}

// LightText formats the light line.
func LightText(s sample.Sample, ok bool) string {
	if !ok {
		return "Light: --"
	}
	return fmt.Sprintf("Light: %d", s.Light)
}
