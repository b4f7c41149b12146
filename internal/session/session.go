package session

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"runready/internal/analysis"
)

const (
	// TickInterval is the period of the session clock
	TickInterval = time.Second
	// DefaultPaceIncrement is km added per tick (~16.2 km/h)
	DefaultPaceIncrement = 0.0045
	// StartHeartRate is the simulated heart rate at session start
	StartHeartRate = 120

	MinHeartRate = 100
	MaxHeartRate = 180

	// heart rate moves by at most this much per tick in either direction
	heartRateStep = 2.0

	highHeartRate = 165
	lowHeartRate  = 120
)

// Alert messages shown alongside the live heart rate
const (
	AlertStart  = "Keep a steady pace!"
	AlertHigh   = "Heart rate is high! Slow down."
	AlertLow    = "Push a little harder!"
	AlertSteady = "Looking good!"
)

var (
	ErrNotStarted     = errors.New("session not started")
	ErrAlreadyStarted = errors.New("session already started")
	ErrEnded          = errors.New("session has ended")
)

// Status is the session's state machine position
type Status int

const (
	StatusIdle Status = iota
	StatusActive
	StatusPaused
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	default:
		return "idle"
	}
}

// State is a point-in-time copy of a live run
type State struct {
	Status         Status
	ElapsedSeconds int
	DistanceKm     float64
	HeartRateBPM   float64
	AlertMessage   string
}

// Summary is the terminal snapshot handed to the upload pipeline
type Summary struct {
	SessionID      string
	DurationText   string
	ElapsedSeconds int
	DistanceKm     float64
	HeartRateBPM   float64
}

// Rand supplies uniform values in [0, 1)
type Rand interface {
	Float64() float64
}

// NewRand returns a seeded generator so runs can be replayed in tests
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	Clock         Clock
	Rand          Rand
	PaceIncrement float64
	Logger        *slog.Logger

	// OnUpdate receives a copy of the state after every mutation, in
	// mutation order. Calls are serialized; a snapshot older than one already
	// delivered is dropped. OnUpdate may read Snapshot but must not call the
	// session's transition methods.
	OnUpdate func(State)
}

// Session simulates a run in progress, advancing once per tick while active
type Session struct {
	id     string
	clock  Clock
	rng    Rand
	pace   float64
	logger *slog.Logger
	notify func(State)

	mu     sync.Mutex
	state  State
	ticker Ticker
	stop   chan struct{}
	// gen identifies the current active period; pulses from older
	// periods are dropped
	gen uint64
	// seq numbers each mutation so publish can discard stale snapshots
	seq uint64

	pubMu     sync.Mutex
	published uint64
}

// New creates an idle session
func New(opts Options) *Session {
	s := &Session{
		id:     uuid.NewString(),
		clock:  opts.Clock,
		rng:    opts.Rand,
		pace:   opts.PaceIncrement,
		logger: opts.Logger,
		notify: opts.OnUpdate,
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.rng == nil {
		s.rng = NewRand(uint64(time.Now().UnixNano()))
	}
	if s.pace <= 0 {
		s.pace = DefaultPaceIncrement
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session_id", s.id)
	return s
}

// ID returns the session's unique identifier
func (s *Session) ID() string {
	return s.id
}

// Start enters Active with fresh state and arms the clock
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state.Status != StatusIdle {
		status := s.state.Status
		s.mu.Unlock()
		if status == StatusEnded {
			return ErrEnded
		}
		return ErrAlreadyStarted
	}
	s.state = State{
		Status:       StatusActive,
		HeartRateBPM: StartHeartRate,
		AlertMessage: AlertStart,
	}
	s.arm()
	snap, seq := s.mark()
	s.mu.Unlock()

	s.logger.Info("run started")
	s.publish(snap, seq)
	return nil
}

// TogglePause switches between Active and Paused. Pausing disarms the
// clock before returning; resuming arms a new one without catching up.
func (s *Session) TogglePause() (Status, error) {
	s.mu.Lock()
	switch s.state.Status {
	case StatusIdle:
		s.mu.Unlock()
		return StatusIdle, ErrNotStarted
	case StatusEnded:
		s.mu.Unlock()
		return StatusEnded, ErrEnded
	case StatusActive:
		s.disarm()
		s.state.Status = StatusPaused
	case StatusPaused:
		s.state.Status = StatusActive
		s.arm()
	}
	snap, seq := s.mark()
	s.mu.Unlock()

	s.logger.Info("run toggled", "status", snap.Status.String(), "elapsed_seconds", snap.ElapsedSeconds)
	s.publish(snap, seq)
	return snap.Status, nil
}

// End stops the session for good and returns its summary
func (s *Session) End() (Summary, error) {
	s.mu.Lock()
	switch s.state.Status {
	case StatusIdle:
		s.mu.Unlock()
		return Summary{}, ErrNotStarted
	case StatusEnded:
		s.mu.Unlock()
		return Summary{}, ErrEnded
	}
	s.disarm()
	s.state.Status = StatusEnded
	snap, seq := s.mark()
	s.mu.Unlock()

	summary := Summary{
		SessionID:      s.id,
		DurationText:   analysis.FormatDuration(snap.ElapsedSeconds),
		ElapsedSeconds: snap.ElapsedSeconds,
		DistanceKm:     analysis.RoundDistance(snap.DistanceKm),
		HeartRateBPM:   snap.HeartRateBPM,
	}
	s.logger.Info("run ended",
		"duration", summary.DurationText,
		"distance_km", summary.DistanceKm,
		"heart_rate", summary.HeartRateBPM,
	)
	s.publish(snap, seq)
	return summary, nil
}

// Tick applies one clock pulse. It is a no-op unless the session is Active.
func (s *Session) Tick() {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.tick(gen)
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	if s.state.Status != StatusActive || gen != s.gen {
		s.mu.Unlock()
		return
	}

	s.state.ElapsedSeconds++
	s.state.DistanceKm += s.pace

	delta := (s.rng.Float64()*2 - 1) * heartRateStep
	s.state.HeartRateBPM = clamp(s.state.HeartRateBPM+delta, MinHeartRate, MaxHeartRate)
	// alert follows the heart rate just computed, not the previous tick's
	s.state.AlertMessage = Alert(s.state.HeartRateBPM)

	snap, seq := s.mark()
	s.mu.Unlock()

	s.publish(snap, seq)
}

// arm starts a ticker goroutine for a new active period. Caller holds mu.
func (s *Session) arm() {
	s.gen++
	gen := s.gen
	ticker := s.clock.NewTicker(TickInterval)
	stop := make(chan struct{})
	s.ticker = ticker
	s.stop = stop

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				s.tick(gen)
			}
		}
	}()
}

// disarm stops the current ticker. Caller holds mu. Bumping gen makes any
// pulse already in flight a no-op once it acquires the lock.
func (s *Session) disarm() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker = nil
	s.stop = nil
	s.gen++
}

// mark numbers the current state as a new mutation. Caller holds mu.
func (s *Session) mark() (State, uint64) {
	s.seq++
	return s.state, s.seq
}

// publish delivers st unless a later mutation was already delivered
func (s *Session) publish(st State, seq uint64) {
	if s.notify == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if seq <= s.published {
		return
	}
	s.published = seq
	s.notify(st)
}

// Alert returns the coaching message for a heart rate
func Alert(bpm float64) string {
	switch {
	case bpm > highHeartRate:
		return AlertHigh
	case bpm < lowHeartRate:
		return AlertLow
	default:
		return AlertSteady
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
