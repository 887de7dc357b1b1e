package panel

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"
)

var (
	oledBackground = color.RGBA{R: 5, G: 5, B: 10, A: 255}
	oledForeground = color.RGBA{R: 160, G: 220, B: 255, A: 255}
	ledOn          = color.RGBA{R: 255, G: 200, B: 40, A: 255}
	ledOff         = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	alarmColor     = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	sparkColor     = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	gaugeTrack     = color.RGBA{R: 40, G: 40, B: 50, A: 255}
)

// gaugeSegments is the number of line segments of the full gauge arc.
const gaugeSegments = 48

// panelRenderer renders the panel widget.
type panelRenderer struct {
	panel *Panel

	bg      *canvas.Rectangle
	message *canvas.Text
	rule    *canvas.Line
	temp    *canvas.Text
	light   *canvas.Text
	uid     *canvas.Text
	led     *canvas.Circle

	objects []fyne.CanvasObject
}

// MinSize returns the minimum size of the widget.
func (r *panelRenderer) MinSize() fyne.Size {
	return fyne.NewSize(512, 240)
}

// Layout arranges the widget components.
func (r *panelRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.Refresh()
}

// Refresh rebuilds the display from the latest snapshot.
func (r *panelRenderer) Refresh() {
	r.panel.mu.RLock()
	snap := r.panel.snap
	temps := append([]float64(nil), r.panel.temps...)
	alarmC := r.panel.alarmC
	r.panel.mu.RUnlock()

	size := r.panel.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}

	// Left half is the OLED text area, right half the gauge
	textW := size.Width / 2
	pad := float32(8)

	r.message.Text = snap.Message
	r.message.Move(fyne.NewPos(pad, pad))

	r.rule.Position1 = fyne.NewPos(pad, pad+22)
	r.rule.Position2 = fyne.NewPos(textW-pad, pad+22)

	r.temp.Text = TempText(snap.Latest, snap.HasSample)
	r.temp.Color = oledForeground
	if snap.Alarm {
		r.temp.Color = alarmColor
	}
	r.temp.Move(fyne.NewPos(pad, pad+30))

	r.light.Text = LightText(snap.Latest, snap.HasSample)
	r.light.Move(fyne.NewPos(pad, pad+50))

	r.uid.Text = ""
	if snap.LastUID != "" {
		r.uid.Text = "UID " + snap.LastUID + " " + snap.Level.String()
	}
	r.uid.Move(fyne.NewPos(pad, pad+72))

	r.led.FillColor = ledOff
	if snap.LED {
		r.led.FillColor = ledOn
	}
	r.led.Move(fyne.NewPos(textW-pad-16, pad+34))
	r.led.Resize(fyne.NewSize(16, 16))

	r.objects = append(r.objects, r.message, r.rule, r.temp, r.light, r.uid, r.led)

	// Sparkline under the text
	sparkTop := pad + 96
	r.drawPolyline(sparkPoints(temps, pad, sparkTop, textW-2*pad, size.Height-sparkTop-pad), sparkColor, 1.5)

	// Gauge on the right
	cx := textW + (size.Width-textW)/2
	cy := size.Height * 0.6
	radius := math32.Min((size.Width-textW)/2, size.Height*0.5) - pad
	if radius <= 0 {
		return
	}
	r.drawPolyline(gaugePoints(cx, cy, radius, 1, gaugeSegments), gaugeTrack, 6)

	if snap.HasSample && snap.Latest.Valid {
		frac := gaugeFraction(snap.Latest.TempC)
		c := sparkColor
		if snap.Alarm {
			c = alarmColor
		}
		segments := int(math32.Ceil(frac * gaugeSegments))
		r.drawPolyline(gaugePoints(cx, cy, radius, frac, segments), c, 6)
	}

	// Alarm threshold tick
	tick := gaugePoint(cx, cy, radius+6, gaugeFraction(alarmC))
	inner := gaugePoint(cx, cy, radius-6, gaugeFraction(alarmC))
	mark := canvas.NewLine(alarmColor)
	mark.Position1, mark.Position2 = inner, tick
	mark.StrokeWidth = 2
	r.objects = append(r.objects, mark)
}

func (r *panelRenderer) drawPolyline(points []fyne.Position, c color.Color, width float32) {
	for i := range len(points) - 1 {
		line := canvas.NewLine(c)
		line.Position1 = points[i]
		line.Position2 = points[i+1]
		line.StrokeWidth = width
		r.objects = append(r.objects, line)
	}
}

// Objects returns all canvas objects for rendering.
func (r *panelRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *panelRenderer) Destroy() {}

// gaugeFraction maps a temperature to [0, 1] of the gauge range.
func gaugeFraction(tempC float64) float32 {
	f := float32((tempC - GaugeMinC) / (GaugeMaxC - GaugeMinC))
	return math32.Max(0, math32.Min(1, f))
}

// gaugePoint returns the point at frac along a 240 degree arc that opens
// downwards, starting at the lower left.
func gaugePoint(cx, cy, radius, frac float32) fyne.Position {
	const start = 210 * math32.Pi / 180
	const sweep = 240 * math32.Pi / 180
	a := start - frac*sweep
	return fyne.NewPos(cx+radius*math32.Cos(a), cy-radius*math32.Sin(a))
}

// gaugePoints returns segments+1 points of the arc from 0 to frac.
func gaugePoints(cx, cy, radius, frac float32, segments int) []fyne.Position {
	if segments < 1 {
		return nil
	}
	points := make([]fyne.Position, 0, segments+1)
	for i := range segments + 1 {
		points = append(points, gaugePoint(cx, cy, radius, frac*float32(i)/float32(segments)))
	}
	return points
}

// sparkPoints scales values into the given box, newest on the right.
func sparkPoints(values []float64, x, y, w, h float32) []fyne.Position {
	if len(values) < 2 || w <= 0 || h <= 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := float32(hi - lo)
	if span == 0 {
		span = 1
	}

	points := make([]fyne.Position, len(values))
	step := w / float32(len(values)-1)
	for i, v := range values {
		py := y + h - float32(v-lo)/span*h
		points[i] = fyne.NewPos(x+float32(i)*step, py)
	}
	return points
}
