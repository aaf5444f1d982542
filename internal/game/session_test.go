package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlyingPenguinGit/TypingRythm/internal/calibrate"
)

func newTestSession(cfg Config, notes []*Note) *Session {
	bm := NewBeatmap(notes, cfg.CaseSensitive)
	return NewSession(cfg, bm, calibrate.NewTracker(0), 60000)
}

func singleNote(t float64, key rune) []*Note {
	return []*Note{{Time: t, Key: key, Char: string(key)}}
}

func TestHitPerfect(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), singleNote(1000, 'a'))
	s.Tick(0)
	s.Keystroke('a', 1050)

	c := s.Counters()
	assert.Equal(t, 300.0, c.Score)
	assert.Equal(t, 1, c.Combo)
	assert.Equal(t, 1, c.Hits)
	assert.Equal(t, 0, c.Misses)
	require.True(t, s.Beatmap().Notes[0].Hit)
}

func TestResolutionIsTerminal(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), singleNote(1000, 'a'))
	s.Tick(0)
	s.Keystroke('a', 1050)
	note := s.Beatmap().Notes[0]
	hitAt := note.HitAt

	// A repeated keystroke has no pending note left to hit.
	s.Keystroke('a', 1060)

	c := s.Counters()
	assert.Equal(t, 300.0, c.Score, "score must not grow from a resolved note")
	assert.Equal(t, 1, c.Hits)
	assert.Equal(t, 1, c.Misses, "repeat press counts as a mistake")
	assert.Equal(t, 0, c.Combo)
	assert.Equal(t, hitAt, note.HitAt)
}

func TestOutOfWindowIsMistake(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), singleNote(1000, 'a'))
	s.Tick(900)
	s.Keystroke('a', 1300)

	c := s.Counters()
	assert.Equal(t, 0.0, c.Score)
	assert.Equal(t, 0, c.Combo)
	assert.Equal(t, 1, c.Misses)
	assert.False(t, s.Beatmap().Notes[0].Resolved(), "note stays pending")
}

func TestWrongSymbolLeavesNotePending(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), singleNote(1000, 'a'))
	s.Tick(0)
	s.Keystroke('b', 1050)
	require.Equal(t, 1, s.Counters().Misses)
	require.False(t, s.Beatmap().Notes[0].Resolved())

	// The note can still be hit afterwards.
	s.Keystroke('a', 1080)
	assert.Equal(t, 1, s.Counters().Hits)
	assert.True(t, s.Beatmap().Notes[0].Hit)
}

func TestTierBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		diff  float64
		name  string
		score float64
	}{
		{0, "perfect", 300},
		{69, "perfect", 300},
		{70, "good", 100},
		{149, "good", 100},
		{150, "ok", 50},
		{200, "ok", 50},
	}
	for _, test := range tests {
		s := newTestSession(DefaultConfig(), singleNote(1000, 'a'))
		s.Tick(800)
		s.Keystroke('a', 1000+test.diff)

		c := s.Counters()
		require.Equal(t, 1, c.Hits, "diff %v should land", test.diff)
		assert.Equal(t, test.score, c.Score, "diff %v should judge %v", test.diff, test.name)
	}
}

func TestComboMultiplier(t *testing.T) {
	t.Parallel()

	notes := []*Note{
		{Time: 1000, Key: 'a'},
		{Time: 2000, Key: 'b'},
		{Time: 3000, Key: 'c'},
	}
	s := newTestSession(DefaultConfig(), notes)
	s.Tick(0)
	s.Keystroke('a', 1000)
	s.Tick(0)
	s.Keystroke('b', 2000)
	s.Tick(100)
	s.Keystroke('c', 3000)

	// 300, then 300*1.1, then 300*1.2.
	c := s.Counters()
	assert.InDelta(t, 990.0, c.Score, 1e-9)
	assert.Equal(t, 3, c.Combo)
	assert.Equal(t, 3, c.MaxCombo)
}

func TestTimedOutMiss(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), singleNote(1000, 'a'))
	missed := 0
	s.OnMiss = func(n *Note) { missed++ }

	s.Tick(0)
	s.Tick(1201)

	c := s.Counters()
	require.True(t, s.Beatmap().Notes[0].Missed)
	assert.Equal(t, 1, c.Misses)
	assert.Equal(t, 95.0, c.Health)

	// Further ticks never re-emit the miss.
	s.Tick(1300)
	s.Tick(2000)
	assert.Equal(t, 1, missed)
	assert.Equal(t, 1, s.Counters().Misses)
}

func TestSpawnWindow(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), singleNote(5000, 'a'))
	s.Tick(0)
	assert.False(t, s.Beatmap().Notes[0].Spawned)

	// Nothing is interactable yet, so this press is a mistake.
	s.Keystroke('a', 0)
	assert.Equal(t, 1, s.Counters().Misses)

	s.Tick(2100)
	assert.True(t, s.Beatmap().Notes[0].Spawned)
}

func TestStaleNoteNeverSpawns(t *testing.T) {
	t.Parallel()

	// Play starts well past the note, as after seeking into the track. Its
	// whole hit window is gone, so it stays scheduled and costs nothing.
	s := newTestSession(DefaultConfig(), singleNote(1000, 'a'))
	s.Tick(10000)

	note := s.Beatmap().Notes[0]
	assert.False(t, note.Spawned)
	assert.False(t, note.Resolved())

	c := s.Counters()
	assert.Equal(t, 0, c.Misses)
	assert.Equal(t, 100.0, c.Health)
}

func TestSeekSkipsElapsedNotes(t *testing.T) {
	t.Parallel()

	notes := []*Note{
		{Time: 1000, Key: 'a', Char: "a"},
		{Time: 12000, Key: 'b', Char: "b"},
	}
	s := newTestSession(DefaultConfig(), notes)
	s.Tick(10000)

	require.False(t, notes[0].Spawned, "elapsed note must not spawn")
	require.True(t, notes[1].Spawned)
	c := s.Counters()
	assert.Equal(t, 0, c.Misses)
	assert.Equal(t, 100.0, c.Health)

	// A press aimed at the skipped note finds nothing pending there.
	s.Keystroke('a', 10000)
	assert.False(t, notes[0].Resolved())
	assert.Equal(t, 1, s.Counters().Misses)

	// Play resumes normally on the reachable note.
	s.Keystroke('b', 12000)
	assert.Equal(t, 1, s.Counters().Hits)
	assert.True(t, notes[1].Hit)
}

func TestPauseFreezesState(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), singleNote(1000, 'a'))
	s.Tick(0)
	s.SetPaused(true)
	s.SetPaused(true) // idempotent

	s.Tick(5000)
	s.Keystroke('a', 1000)
	c := s.Counters()
	assert.Equal(t, 0, c.Hits)
	assert.Equal(t, 0, c.Misses)
	assert.False(t, s.Beatmap().Notes[0].Resolved())

	s.SetPaused(false)
	s.Tick(5000)
	assert.True(t, s.Beatmap().Notes[0].Missed)
}

func TestPracticeModeKeepsHealth(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Practice = true
	s := newTestSession(cfg, singleNote(1000, 'a'))
	s.Tick(0)
	s.Tick(2000)

	c := s.Counters()
	assert.Equal(t, cfg.MaxHealth, c.Health)
	assert.Equal(t, 1, c.Misses, "misses still count toward accuracy")
	assert.Equal(t, OutcomePending, s.Outcome())
}

func TestHealthFloorFailsSession(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxHealth = 4
	s := newTestSession(cfg, nil)
	var ended []Outcome
	s.OnEnd = func(o Outcome) { ended = append(ended, o) }

	s.Keystroke('x', 100)
	require.Equal(t, OutcomePending, s.Outcome())
	s.Keystroke('x', 200)

	require.Equal(t, OutcomeFailed, s.Outcome())
	assert.Equal(t, 0.0, s.Counters().Health)
	assert.Equal(t, []Outcome{OutcomeFailed}, ended)

	// Terminal: everything afterwards is a no-op.
	s.Keystroke('x', 300)
	s.Tick(400)
	s.Finish()
	assert.Equal(t, 2, s.Counters().Misses)
	assert.Equal(t, OutcomeFailed, s.Outcome())
}

func TestEarlyCompletion(t *testing.T) {
	t.Parallel()

	notes := singleNote(1000, 'a')
	bm := NewBeatmap(notes, false)
	s := NewSession(DefaultConfig(), bm, calibrate.NewTracker(0), 30000)
	ends := 0
	s.OnEnd = func(o Outcome) {
		ends++
		assert.Equal(t, OutcomeCleared, o)
	}

	s.Tick(0)
	s.Keystroke('a', 1000)
	s.Tick(2500)
	require.Equal(t, OutcomePending, s.Outcome(), "still within the linger window")

	s.Tick(3100)
	assert.Equal(t, OutcomeCleared, s.Outcome())
	assert.Equal(t, 1, ends)
}

func TestNoEarlyCompletionWithoutTrailingSilence(t *testing.T) {
	t.Parallel()

	bm := NewBeatmap(singleNote(1000, 'a'), false)
	// Track ends 4s after the last note, under the 5s silence threshold.
	s := NewSession(DefaultConfig(), bm, calibrate.NewTracker(0), 5000)
	s.Tick(0)
	s.Keystroke('a', 1000)
	s.Tick(4000)
	assert.Equal(t, OutcomePending, s.Outcome())
}

func TestCaseSensitivity(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), []*Note{{Time: 1000, Key: 'A', Char: "A"}})
	s.Tick(0)
	s.Keystroke('A', 1000)
	assert.Equal(t, 1, s.Counters().Hits, "case folds by default")

	cfg := DefaultConfig()
	cfg.CaseSensitive = true
	s = newTestSession(cfg, []*Note{{Time: 1000, Key: 'A', Char: "A"}})
	s.Tick(0)
	s.Keystroke('a', 1000)
	assert.Equal(t, 1, s.Counters().Misses)
	s.Keystroke('A', 1020)
	assert.Equal(t, 1, s.Counters().Hits)
}

func TestEarliestNoteIsJudged(t *testing.T) {
	t.Parallel()

	notes := []*Note{
		{Time: 1200, Key: 'b'},
		{Time: 1000, Key: 'a'},
	}
	s := newTestSession(DefaultConfig(), notes)
	s.Tick(900)

	// Both notes are spawned; the press matches the later note's symbol but
	// is judged against the earlier one.
	s.Keystroke('b', 1100)
	c := s.Counters()
	assert.Equal(t, 1, c.Misses)
	assert.False(t, s.Beatmap().Notes[0].Resolved())
	assert.False(t, s.Beatmap().Notes[1].Resolved())
}

func TestEmptyScheduleDegrades(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), nil)
	s.Tick(1000)
	s.Tick(20000)
	assert.Equal(t, OutcomePending, s.Outcome())
	s.Finish()
	assert.Equal(t, OutcomeCleared, s.Outcome())
}

func TestHitFeedsCalibration(t *testing.T) {
	t.Parallel()

	cal := calibrate.NewTracker(0)
	bm := NewBeatmap(singleNote(1000, 'a'), false)
	s := NewSession(DefaultConfig(), bm, cal, 60000)
	s.Tick(0)
	s.Keystroke('a', 1060)

	// First sample 60, |0-60| > 1, so offset converges to 6.
	assert.InDelta(t, 6.0, cal.Offset(), 1e-9)
}

func TestAccuracy(t *testing.T) {
	t.Parallel()

	s := newTestSession(DefaultConfig(), nil)
	assert.Equal(t, 0.0, s.Accuracy())

	s = newTestSession(DefaultConfig(), []*Note{
		{Time: 1000, Key: 'a'},
		{Time: 2000, Key: 'b'},
	})
	s.Tick(0)
	s.Keystroke('a', 1000)
	s.Tick(2300)
	assert.InDelta(t, 0.5, s.Accuracy(), 1e-9)
}
