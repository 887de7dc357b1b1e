// Package status implements the status unit: it reacts to badge UIDs with a
// message and a tone, drives the LED from the light level, and sounds the
// alarm when the temperature gets too high.
package status

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/itohio/badgelab/pkg/access"
	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/link"
	"github.com/itohio/badgelab/pkg/message"
	"github.com/itohio/badgelab/pkg/sample"
	"github.com/itohio/badgelab/pkg/tone"
)

// Messages shown for access decisions.
const (
	MessageGranted = "ACCESS GRANTED"
	MessageLimited = "LIMITED ACCESS"
	MessageDenied  = "ACCESS DENIED"
)

// DefaultTickInterval is how often Run checks the message timer.
const DefaultTickInterval = 100 * time.Millisecond

// Indicator is the status LED.
type Indicator interface {
	SetLED(on bool) error
}

// Snapshot is the state shown on the display.
type Snapshot struct {
	Message   string
	LastUID   string
	Level     access.Level // Level of LastUID
	Latest    sample.Sample
	HasSample bool
	LED       bool
	Alarm     bool // Latest valid temperature is above the alarm threshold
	History   []sample.Sample
}

// Unit holds the status unit state. All outputs are injected; nil outputs
// are ignored.
type Unit struct {
	cfg    config.StatusConfig
	list   *access.List
	led    Indicator
	buzzer tone.Buzzer
	now    func() time.Time
	window time.Duration

	mu         sync.RWMutex
	message    string
	messageAt  time.Time
	granted    bool // Granted message is being shown
	lastUID    string
	level      access.Level
	latest     sample.Sample
	hasSample  bool
	ledOn      bool
	alarm      bool
	alarmArmed bool
	history    []sample.Sample
	shutdown   bool // Set when the samples input closes, prevents further callbacks

	ledMu      sync.Mutex // Serializes indicator writes
	ledApplied bool       // Last state written to the indicator

	sounds chan tone.Melody

	callbacks []func(Snapshot)
	cbMu      sync.RWMutex
}

// Option configures a Unit.
type Option func(*Unit)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(u *Unit) { u.now = now }
}

// WithIndicator sets the LED output.
func WithIndicator(led Indicator) Option {
	return func(u *Unit) { u.led = led }
}

// WithBuzzer sets the buzzer output.
func WithBuzzer(b tone.Buzzer) Option {
	return func(u *Unit) { u.buzzer = b }
}

// WithWindow sets how much temperature history is kept.
func WithWindow(d time.Duration) Option {
	return func(u *Unit) { u.window = d }
}

// New creates a status unit showing the idle message. The idle message is
// replaced by the default message once MessageDuration has elapsed.
func New(cfg config.StatusConfig, list *access.List, opts ...Option) *Unit {
	u := &Unit{
		cfg:        cfg,
		list:       list,
		now:        time.Now,
		window:     time.Minute,
		alarmArmed: true,
		sounds:     make(chan tone.Melody, 4),
		history:    make([]sample.Sample, 0),
		callbacks:  make([]func(Snapshot), 0),
	}
	for _, opt := range opts {
		opt(u)
	}

	u.message = cfg.IdleMessage
	u.messageAt = u.now()

	return u
}

// HandleUID shows the access decision for uid and queues its tone.
func (u *Unit) HandleUID(uid string) access.Level {
	uid = access.Normalize(uid)
	level := u.list.Lookup(uid)
	u.show(uid, level)
	return level
}

// HandleFrame handles a received frame. The local access list decides; the
// reader's decision is used only when no local list is configured.
func (u *Unit) HandleFrame(f message.Frame) access.Level {
	if u.list.Len() == 0 && f.HasLevel {
		uid := access.Normalize(f.UID)
		u.show(uid, f.Level)
		return f.Level
	}
	return u.HandleUID(f.UID)
}

func (u *Unit) show(uid string, level access.Level) {
	var beep tone.Melody

	u.mu.Lock()
	u.lastUID = uid
	u.level = level
	u.messageAt = u.now()
	u.granted = false
	switch level {
	case access.Granted:
		u.message = MessageGranted
		u.granted = true
		beep = tone.GrantedBeep
	case access.Limited:
		u.message = MessageLimited
		beep = tone.LimitedBeep
	default:
		u.message = MessageDenied
		beep = tone.DeniedBeep
	}
	log.Printf("Received UID: %s (%s)", uid, level)
	u.updateLED()
	shouldNotify := !u.shutdown
	u.mu.Unlock()

	u.play(beep)
	u.syncLED()
	if shouldNotify {
		u.notifyCallbacks()
	}
}

// HandleSample updates the temperature and light readings.
func (u *Unit) HandleSample(s sample.Sample) {
	var alarm bool

	u.mu.Lock()
	u.latest = s
	u.hasSample = true
	u.appendHistory(s)

	if s.Valid {
		u.alarm = s.TempC > u.cfg.AlarmTempC
		switch {
		case u.alarm && u.alarmArmed:
			u.alarmArmed = false
			alarm = true
			log.Printf("Temperature %.1f C above %.1f C", s.TempC, u.cfg.AlarmTempC)
		case !u.alarm:
			u.alarmArmed = true
		}
	}

	u.updateLED()
	shouldNotify := !u.shutdown
	u.mu.Unlock()

	if alarm {
		u.play(tone.Alarm)
	}
	u.syncLED()
	if shouldNotify {
		u.notifyCallbacks()
	}
}

// Tick reverts an expired message to the default message.
func (u *Unit) Tick(now time.Time) {
	u.mu.Lock()
	if u.message == u.cfg.DefaultMessage || now.Sub(u.messageAt) <= u.cfg.MessageDuration {
		u.mu.Unlock()
		return
	}
	u.message = u.cfg.DefaultMessage
	u.granted = false
	u.updateLED()
	shouldNotify := !u.shutdown
	u.mu.Unlock()

	u.syncLED()
	if shouldNotify {
		u.notifyCallbacks()
	}
}

// appendHistory adds s and drops samples older than the window.
func (u *Unit) appendHistory(s sample.Sample) {
	u.history = append(u.history, s)

	cutoff := s.Timestamp.Add(-u.window)
	cutoffIndex := 0
	for i, h := range u.history {
		if h.Timestamp.After(cutoff) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		u.history = append(u.history[:0], u.history[cutoffIndex:]...)
	}
}

// updateLED recomputes the LED state. The LED is on in the dark or while a
// granted message is shown.
func (u *Unit) updateLED() {
	u.ledOn = u.granted || (u.hasSample && u.latest.Light < u.cfg.LightThreshold)
}

// syncLED writes the current LED state to the indicator when it differs from
// the last written state. Writes are serialized and always use the latest
// state, so a slow write cannot leave the output behind the unit.
func (u *Unit) syncLED() {
	if u.led == nil {
		return
	}

	u.ledMu.Lock()
	defer u.ledMu.Unlock()

	u.mu.RLock()
	on := u.ledOn
	u.mu.RUnlock()

	if on == u.ledApplied {
		return
	}
	if err := u.led.SetLED(on); err != nil {
		log.Printf("Failed to set LED: %v", err)
		return
	}
	u.ledApplied = on
}

func (u *Unit) play(m tone.Melody) {
	select {
	case u.sounds <- m:
	default:
		log.Printf("Sound queue full, dropping melody")
	}
}

// Snapshot returns a copy of the current state.
func (u *Unit) Snapshot() Snapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()

	history := make([]sample.Sample, len(u.history))
	copy(history, u.history)

	return Snapshot{
		Message:   u.message,
		LastUID:   u.lastUID,
		Level:     u.level,
		Latest:    u.latest,
		HasSample: u.hasSample,
		LED:       u.ledOn,
		Alarm:     u.alarm,
		History:   history,
	}
}

// OnUpdate registers a callback function that will be called when the state
// changes. The callback should return quickly.
func (u *Unit) OnUpdate(callback func(Snapshot)) {
	u.cbMu.Lock()
	defer u.cbMu.Unlock()
	u.callbacks = append(u.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent again.
// This should be called before attaching a new sample source.
func (u *Unit) ResetShutdown() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.shutdown = false
}

func (u *Unit) notifyCallbacks() {
	snap := u.Snapshot()

	u.cbMu.RLock()
	callbacks := make([]func(Snapshot), len(u.callbacks))
	copy(callbacks, u.callbacks)
	u.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(snap)
		}
	}
}

// ProcessSamples consumes samples until ctx is done or input closes. When
// input closes the unit stops notifying callbacks.
func (u *Unit) ProcessSamples(ctx context.Context, input <-chan sample.Sample) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-input:
			if !ok {
				u.mu.Lock()
				u.shutdown = true
				u.mu.Unlock()
				return
			}
			u.HandleSample(s)
		}
	}
}

// ProcessPackets consumes link packets until ctx is done or input closes.
func (u *Unit) ProcessPackets(ctx context.Context, input <-chan link.Packet) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-input:
			if !ok {
				return
			}
			u.HandleFrame(p.Frame)
		}
	}
}

// Run plays queued tones and expires messages until ctx is done. It returns
// ctx.Err().
func (u *Unit) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		u.playSounds(ctx)
	}()
	defer wg.Wait()

	ticker := time.NewTicker(DefaultTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			u.Tick(u.now())
		}
	}
}

func (u *Unit) playSounds(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-u.sounds:
			if u.buzzer == nil {
				continue
			}
			if err := tone.Play(ctx, u.buzzer, m); err != nil && ctx.Err() == nil {
				log.Printf("Failed to play tone: %v", err)
			}
		}
	}
}
