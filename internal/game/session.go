package game

import (
	"math"
	"unicode"

	"github.com/FlyingPenguinGit/TypingRythm/internal/calibrate"
)

// Config is the session-scoped gameplay configuration. All times are ms.
type Config struct {
	HitWindow      float64
	TravelTime     float64
	MaxHealth      float64
	Practice       bool // disables health loss, misses still count
	CaseSensitive  bool
	MistakePenalty float64
	MissPenalty    float64
	HealthGains    []float64 // per judgement tier
}

func DefaultConfig() Config {
	return Config{
		HitWindow:      200,
		TravelTime:     3000,
		MaxHealth:      100,
		MistakePenalty: 2,
		MissPenalty:    5,
		HealthGains:    []float64{4, 2, 1},
	}
}

// Counters accumulates the session result. Only the session mutates it, and
// only in response to a resolved note or a mistake.
type Counters struct {
	Score    float64
	Combo    int
	MaxCombo int
	Hits     int
	Misses   int
	Health   float64
}

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeCleared
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCleared:
		return "cleared"
	case OutcomeFailed:
		return "failed"
	}
	return "pending"
}

const (
	// A resolved note is dropped from the active set once its presentation
	// would be gone, a moment after the hit window closes.
	retireGraceMs = 250

	// Early completion: the run ends before natural audio end when the track
	// has this much trailing silence and play has lingered past the last
	// note with nothing left active.
	trailingSilenceMs = 5000
	lingerMs          = 2000
)

// Session drives the note lifecycle and judges keystrokes against it. It has
// no timers of its own; Tick and Keystroke receive the raw media time and
// must be called from a single goroutine.
type Session struct {
	cfg      Config
	beatmap  *Beatmap
	cal      *calibrate.Tracker
	duration float64 // track length ms, 0 when unknown

	counters Counters
	outcome  Outcome
	paused   bool

	// Optional hooks, invoked synchronously from Tick/Keystroke.
	OnHit     func(n *Note, tier int, j Judgement, diff float64)
	OnMiss    func(n *Note)
	OnMistake func()
	OnEnd     func(o Outcome)
}

func NewSession(cfg Config, bm *Beatmap, cal *calibrate.Tracker, durationMs float64) *Session {
	s := &Session{
		cfg:      cfg,
		beatmap:  bm,
		cal:      cal,
		duration: durationMs,
	}
	s.counters.Health = cfg.MaxHealth
	return s
}

func (s *Session) Config() Config { return s.cfg }

func (s *Session) Counters() Counters { return s.counters }

func (s *Session) Outcome() Outcome { return s.outcome }

func (s *Session) Paused() bool { return s.paused }

func (s *Session) Beatmap() *Beatmap { return s.beatmap }

func (s *Session) Calibration() *calibrate.Tracker { return s.cal }

// SyncTime converts raw media time to calibrated sync time.
func (s *Session) SyncTime(raw float64) float64 {
	return s.cal.Corrected(raw)
}

// SetPaused is idempotent. While paused neither ticks nor keystrokes change
// any state, so no miss transitions can fire.
func (s *Session) SetPaused(paused bool) {
	s.paused = paused
}

// Accuracy is hits over attempted notes, 0 before any attempt.
func (s *Session) Accuracy() float64 {
	attempts := s.counters.Hits + s.counters.Misses
	if attempts == 0 {
		return 0
	}
	return float64(s.counters.Hits) / float64(attempts)
}

// Finish ends the session as cleared, for when the audio runs out
// naturally. No-op once a terminal outcome is set.
func (s *Session) Finish() {
	if s.outcome == OutcomePending {
		s.end(OutcomeCleared)
	}
}

// Tick advances the note lifecycle to the given raw media time: spawns notes
// entering the travel window, emits misses for notes past the hit window,
// retires resolved notes, and checks the early completion rule.
func (s *Session) Tick(raw float64) {
	if s.outcome != OutcomePending || s.paused {
		return
	}
	sync := s.cal.Corrected(raw)

	_, start, end := s.beatmap.Active()

	// Spawn everything whose target time entered the lookahead window. A note
	// whose hit window already closed before it had a chance to spawn, which
	// happens when play starts partway into the track, stays scheduled and is
	// never charged as a miss.
	for end < len(s.beatmap.Notes) && s.beatmap.Notes[end].Time <= sync+s.cfg.TravelTime {
		note := s.beatmap.Notes[end]
		if sync-note.Time <= s.cfg.HitWindow {
			note.Spawned = true
		}
		end++
	}

	// Miss notes the player let scroll past the hit window.
	for _, note := range s.beatmap.Notes[start:end] {
		if !note.Spawned || note.Resolved() {
			continue
		}
		if sync-note.Time > s.cfg.HitWindow {
			s.miss(note, sync)
			if s.outcome != OutcomePending {
				return
			}
		}
	}

	// Slide the window past notes whose grace delay is over: resolved ones,
	// and the never-spawned ones skipped above.
	for start < end {
		note := s.beatmap.Notes[start]
		if sync-note.Time <= s.cfg.HitWindow+retireGraceMs {
			break
		}
		if note.Spawned && !note.Resolved() {
			break
		}
		start++
	}
	s.beatmap.SetActive(start, end)

	s.checkEarlyCompletion(sync)
}

// checkEarlyCompletion ends the run ahead of the audio when only dead
// silence remains.
func (s *Session) checkEarlyCompletion(sync float64) {
	if len(s.beatmap.Notes) == 0 || s.duration <= 0 {
		return
	}
	last := s.beatmap.Last()
	if s.duration-last <= trailingSilenceMs || sync-last <= lingerMs {
		return
	}
	active, _, _ := s.beatmap.Active()
	for _, n := range active {
		if !n.Resolved() {
			return
		}
	}
	s.end(OutcomeCleared)
}

// Keystroke judges one input symbol at the given raw media time against the
// earliest unresolved spawned note.
func (s *Session) Keystroke(symbol rune, raw float64) {
	if s.outcome != OutcomePending || s.paused {
		return
	}
	sync := s.cal.Corrected(raw)

	var target *Note
	active, _, _ := s.beatmap.Active()
	for _, note := range active {
		if note.Spawned && !note.Resolved() {
			target = note
			break
		}
	}
	if target == nil {
		// Nothing pending at all; expected gameplay input, not an error.
		s.mistake()
		return
	}

	diff := math.Abs(target.Time - sync)
	if diff > s.cfg.HitWindow {
		// Pressed, but the closest note is out of range. It stays pending.
		s.mistake()
		return
	}

	input := symbol
	if !s.cfg.CaseSensitive {
		input = unicode.ToLower(symbol)
	}
	if input != target.Key {
		s.mistake()
		return
	}

	target.Hit = true
	target.HitAt = sync
	// Calibration learns from the uncorrected error, so it keeps measuring
	// the player's true latency even after correction kicks in.
	s.cal.Record(raw - target.Time)

	idx, j := judge(diff)
	s.counters.Score += j.Score * (1 + float64(s.counters.Combo)*0.1)
	s.counters.Combo++
	if s.counters.Combo > s.counters.MaxCombo {
		s.counters.MaxCombo = s.counters.Combo
	}
	s.counters.Hits++
	if idx < len(s.cfg.HealthGains) {
		s.adjustHealth(s.cfg.HealthGains[idx])
	}

	if nil != s.OnHit {
		s.OnHit(target, idx, j, diff)
	}
}

func (s *Session) mistake() {
	s.counters.Combo = 0
	s.counters.Misses++
	s.adjustHealth(-s.cfg.MistakePenalty)
	if nil != s.OnMistake {
		s.OnMistake()
	}
}

func (s *Session) miss(note *Note, sync float64) {
	note.Missed = true
	note.MissedAt = sync
	s.counters.Combo = 0
	s.counters.Misses++
	s.adjustHealth(-s.cfg.MissPenalty)
	if nil != s.OnMiss {
		s.OnMiss(note)
	}
}

func (s *Session) adjustHealth(delta float64) {
	if delta < 0 && s.cfg.Practice {
		return
	}
	s.counters.Health += delta
	if s.counters.Health > s.cfg.MaxHealth {
		s.counters.Health = s.cfg.MaxHealth
	}
	if s.counters.Health <= 0 {
		s.counters.Health = 0
		s.end(OutcomeFailed)
	}
}

func (s *Session) end(o Outcome) {
	s.outcome = o
	if nil != s.OnEnd {
		s.OnEnd(o)
	}
}
