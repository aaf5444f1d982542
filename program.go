package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/FlyingPenguinGit/TypingRythm/internal/audio"
	"github.com/FlyingPenguinGit/TypingRythm/internal/calibrate"
	"github.com/FlyingPenguinGit/TypingRythm/internal/config"
	"github.com/FlyingPenguinGit/TypingRythm/internal/game"
	"github.com/FlyingPenguinGit/TypingRythm/internal/generator"
	"github.com/FlyingPenguinGit/TypingRythm/internal/grade"
	"github.com/FlyingPenguinGit/TypingRythm/internal/parser"
	"github.com/FlyingPenguinGit/TypingRythm/internal/render"
	"github.com/FlyingPenguinGit/TypingRythm/internal/score"
	"github.com/FlyingPenguinGit/TypingRythm/internal/theme"
	"github.com/FlyingPenguinGit/TypingRythm/internal/zen"
	"github.com/eiannone/keyboard"
	"github.com/sirupsen/logrus"
)

type Program struct {
	Parser   parser.Parser
	Renderer render.Renderer
	Theme    theme.Theme

	store  *score.Store
	player *audio.Player
	track  *parser.Track
	cal    *calibrate.Tracker

	// Exactly one of these is set, depending on the mode.
	session *game.Session
	zenRun  *zen.Session

	rows, cols int
	laneRow    int
	targetCol  int
	sideCol    int

	audioFile, trackFile, lyricsFile string

	paused bool
	quit   bool

	best     grade.Result
	improved bool
	letter   grade.Letter
	graded   bool
}

func (p *Program) Init() error {
	// Ensure our Default implementations are used as interfaces
	p.Parser = &parser.DefaultParser{}
	p.Renderer = &render.DefaultRenderer{}
	p.Theme = &theme.DefaultTheme{}

	if err := filepath.Walk(*config.Directory, func(pth string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch path.Ext(info.Name()) {
		case ".mp3", ".ogg":
			p.audioFile = pth
		case ".json":
			p.trackFile = pth
		case ".txt":
			p.lyricsFile = pth
		}
		return nil
	}); nil != err {
		return fmt.Errorf("unable to walk track directory: %w", err)
	}
	if p.audioFile == "" {
		return errors.New("unable to find an .mp3/.ogg file in given directory")
	}

	p.track = &parser.Track{}
	if p.trackFile == "" {
		logrus.Warn("no track record found, generating a schedule")
	} else if t, err := p.Parser.Parse(p.trackFile); nil != err {
		logrus.WithError(err).Warn("unreadable track record, generating a schedule")
	} else {
		p.track = t
	}

	store, err := score.Open(*config.Database)
	if nil != err {
		return err
	}
	p.store = store

	player, err := audio.Open(p.audioFile, *config.Rate)
	if nil != err {
		return err
	}
	p.player = player
	if *config.StartOffset > 0 {
		if err := p.player.Seek(*config.StartOffset); nil != err {
			logrus.WithError(err).Warn("unable to seek into track")
		}
	}

	p.cal = calibrate.NewTracker(p.store.CalibrationOffset())

	if *config.Zen {
		p.initZen()
	} else {
		p.initKeyMatch()
	}
	return nil
}

func (p *Program) initKeyMatch() {
	notes := p.track.GameNotes()
	if len(notes) == 0 {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		generated, stars := generator.Generate(p.track.Analysis, p.lyrics(), rng)
		logrus.WithFields(logrus.Fields{
			"notes":      len(generated),
			"difficulty": stars,
		}).Info("generated a schedule from the track analysis")
		t := parser.Track{BeatMap: parser.BeatMap{Notes: generated}}
		notes = t.GameNotes()
	}

	cfg := game.Config{
		HitWindow:      float64((*config.HitWindow).Milliseconds()),
		TravelTime:     float64((*config.TravelTime).Milliseconds()),
		MaxHealth:      100,
		Practice:       *config.Practice,
		CaseSensitive:  *config.CaseSensitive || p.track.IsCaseSensitive(),
		MistakePenalty: config.Tuning.MistakePenalty,
		MissPenalty:    config.Tuning.MissPenalty,
		HealthGains: []float64{
			config.Tuning.PerfectGain,
			config.Tuning.GoodGain,
			config.Tuning.OkGain,
		},
	}
	durationMs := p.player.Duration().Seconds() * 1000.0
	p.session = game.NewSession(cfg, game.NewBeatmap(notes, cfg.CaseSensitive), p.cal, durationMs)
}

func (p *Program) initZen() {
	points := zen.MergePoints(p.track.Analysis.BeatTimes, p.track.Analysis.OnsetTimes)
	firstBeat := 2.0
	if len(points) > 0 {
		firstBeat = points[0]
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	p.zenRun = zen.NewSession(zen.NewScorer(points), zen.Words, rng, firstBeat)
}

func (p *Program) lyrics() string {
	if p.lyricsFile == "" {
		return ""
	}
	data, err := os.ReadFile(p.lyricsFile)
	if nil != err {
		logrus.WithError(err).Warn("unable to read lyrics file")
		return ""
	}
	return string(data)
}

func (p *Program) Resize() {
	p.rows, p.cols = p.Renderer.Size()
	p.laneRow = p.rows >> 1
	p.targetCol = 12
	p.sideCol = p.cols - 30
	if p.sideCol < 40 {
		p.sideCol = 40
	}
}

func (p *Program) Run() error {
	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			logrus.WithError(err).Warn("unable to close keyboard")
		}
	}()

	if err := p.Renderer.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		if err := p.Renderer.Deinit(); nil != err {
			logrus.WithError(err).Warn("unable to restore terminal")
		}
	}()
	p.Resize()
	p.bindFeedback()

	go func() {
		time.Sleep(*config.Delay)
		p.player.Play()
	}()

	p.Renderer.RenderLoop(*config.Delay, *config.FramePeriod, func(now time.Time, elapsed time.Duration) bool {
		raw := p.player.Position().Seconds() * 1000.0

		// get the key inputs that occured so far
		for i := 0; i < len(keyChannel); i++ {
			if !p.handleKey(<-keyChannel, raw, elapsed) {
				return false
			}
		}

		if elapsed < 0 {
			p.renderCountdown(elapsed)
			return true
		}

		if !p.paused {
			if nil != p.session {
				p.session.Tick(raw)
			} else {
				p.zenRun.Tick(raw)
			}
		}

		if p.player.Ended() {
			if nil != p.session {
				p.session.Finish()
			} else {
				p.zenRun.Finish()
			}
		}
		if nil != p.session && p.session.Outcome() != game.OutcomePending {
			return false
		}
		if nil != p.zenRun && p.zenRun.Finished() {
			return false
		}

		p.render(raw)
		return true
	})

	p.persist()
	return nil
}

// handleKey routes one key event. Returns false when the run should stop.
// Gameplay input before playback has started is discarded, not charged.
func (p *Program) handleKey(key keyboard.KeyEvent, raw float64, elapsed time.Duration) bool {
	switch {
	case key.Key == keyboard.KeyCtrlC:
		p.quit = true
		return false
	case key.Key == keyboard.KeyEsc:
		p.togglePause()
	case elapsed < 0:
		// Still counting down.
	case key.Key == keyboard.KeyBackspace || key.Key == keyboard.KeyBackspace2:
		if nil != p.zenRun && !p.paused {
			p.zenRun.Backspace()
		}
	case key.Key == keyboard.KeySpace:
		p.keystroke(' ', raw)
	case key.Rune != 0:
		p.keystroke(key.Rune, raw)
	}
	return true
}

func (p *Program) togglePause() {
	p.paused = !p.paused
	p.player.SetPaused(p.paused)
	if nil != p.session {
		p.session.SetPaused(p.paused)
	}
}

func (p *Program) keystroke(symbol rune, raw float64) {
	if p.paused {
		return
	}
	if nil != p.session {
		p.session.Keystroke(symbol, raw)
	} else {
		p.zenRun.Keystroke(symbol, raw)
	}
}

func (p *Program) bindFeedback() {
	if nil != p.session {
		p.session.OnHit = func(n *game.Note, tier int, j game.Judgement, diff float64) {
			label := strings.ToUpper(j.Name) + "!"
			p.Renderer.AddDecoration(p.targetCol+3, p.laneRow-2, label, p.Theme.JudgementColor(tier), 30)
		}
		p.session.OnMiss = func(n *game.Note) {
			p.Renderer.AddDecoration(p.targetCol+3, p.laneRow-2, "MISS!", p.Theme.MissColor(), 30)
		}
		p.session.OnMistake = func() {
			p.Renderer.AddDecoration(p.targetCol+3, p.laneRow+2, "x", p.Theme.MissColor(), 20)
		}
		return
	}
	p.zenRun.OnWord = func(word string, points int) {
		c := p.Theme.TypedColor()
		if points < 50 {
			c = p.Theme.MissColor()
		}
		p.Renderer.AddDecoration(p.cols>>1, p.laneRow-2, fmt.Sprintf("+%d", points), c, 45)
	}
	p.zenRun.OnMistype = func() {
		p.Renderer.AddDecoration(p.cols>>1, p.laneRow+2, "x", p.Theme.MissColor(), 20)
	}
}

func (p *Program) render(raw float64) {
	p.renderProgress(raw)
	if nil != p.session {
		p.renderKeyMatch(raw)
	} else {
		p.renderZen()
	}
}

func (p *Program) renderCountdown(elapsed time.Duration) {
	remaining := int(-elapsed.Seconds()) + 1
	p.Renderer.FillColor(p.laneRow, p.cols>>1, p.Theme.PendingColor(), fmt.Sprintf("%d", remaining))
}

func (p *Program) renderProgress(raw float64) {
	durationMs := p.player.Duration().Seconds() * 1000.0
	if durationMs <= 0 {
		return
	}
	frac := raw / durationMs
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(p.cols))
	p.Renderer.FillColor(1, 1, p.Theme.PendingColor(), strings.Repeat("━", filled))
}

func (p *Program) renderKeyMatch(raw float64) {
	sync := p.session.SyncTime(raw)
	travel := p.session.Config().TravelTime

	// Clear the lane and redraw the target marker
	p.Renderer.Fill(p.laneRow, 1, strings.Repeat(" ", p.cols))
	p.Renderer.FillColor(p.laneRow-1, p.targetCol, p.Theme.PendingColor(), "╻")
	p.Renderer.FillColor(p.laneRow+1, p.targetCol, p.Theme.PendingColor(), "╹")

	active, _, _ := p.session.Beatmap().Active()
	span := float64(p.cols - p.targetCol)
	for _, n := range active {
		if n.Resolved() {
			continue
		}
		// Notes travel right to left, arriving at the target on time
		progress := 1.0 - (n.Time-sync)/travel
		col := p.cols - int(progress*span)
		if col <= 1 || col >= p.cols {
			continue
		}
		char := n.Char
		if char == "" {
			char = string(n.Key)
		}
		if char == " " {
			char = "␣"
		}
		p.Renderer.FillColor(p.laneRow, col, p.Theme.NoteColor(), char)
	}

	c := p.session.Counters()
	p.Renderer.Fill(3, p.sideCol, fmt.Sprintf("   Score:  %8.0f", c.Score))
	p.Renderer.Fill(4, p.sideCol, fmt.Sprintf("   Combo:  %8v", c.Combo))
	p.Renderer.Fill(5, p.sideCol, fmt.Sprintf("Accuracy:  %7.1f%%", p.session.Accuracy()*100))
	p.Renderer.Fill(6, p.sideCol, fmt.Sprintf("  Offset:  %6.1fms", p.cal.Offset()))

	p.renderHealth(c.Health / p.session.Config().MaxHealth)

	if p.paused {
		p.Renderer.FillColor(p.laneRow-3, p.cols>>1-3, p.Theme.MissColor(), "PAUSED")
	}
}

func (p *Program) renderHealth(frac float64) {
	if frac < 0 {
		frac = 0
	}
	width := p.cols - 2
	filled := int(frac * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("─", width-filled)
	p.Renderer.FillColor(p.rows-1, 2, p.Theme.HealthColor(frac), bar)
}

func (p *Program) renderZen() {
	word, typed := p.zenRun.Word()
	p.Renderer.Fill(p.laneRow, 1, strings.Repeat(" ", p.cols))
	if word != "" {
		col := (p.cols - len(word)) >> 1
		if col < 1 {
			col = 1
		}
		if typed != "" {
			p.Renderer.FillColor(p.laneRow, col, p.Theme.TypedColor(), typed)
		}
		if len(typed) < len(word) {
			p.Renderer.FillColor(p.laneRow, col+len(typed), p.Theme.PendingColor(), word[len(typed):])
		}
	}

	p.Renderer.Fill(3, p.sideCol, fmt.Sprintf(" Score:  %8v", p.zenRun.Score()))
	p.Renderer.Fill(4, p.sideCol, fmt.Sprintf("Rhythm:  %7.1f%%", p.zenRun.Scorer().RhythmAccuracy()*100))

	if p.paused {
		p.Renderer.FillColor(p.laneRow-3, p.cols>>1-3, p.Theme.MissColor(), "PAUSED")
	}
}

// persist records the learned calibration offset and, for cleared runs, the
// graded result. Abandoned and failed runs never touch the best scores.
func (p *Program) persist() {
	if nil != p.session {
		p.store.SaveCalibrationOffset(p.cal.Offset())
		if p.quit || p.session.Outcome() != game.OutcomeCleared {
			return
		}
		p.letter = grade.KeyMatch.Grade(p.session.Accuracy())
		p.graded = true
		next := grade.Result{Score: int(p.session.Counters().Score), Grade: p.letter}
		before, had := p.store.Best(p.trackID(), score.ModeKeyMatch)
		p.best = p.store.SaveBest(p.trackID(), score.ModeKeyMatch, next, 0)
		p.improved = !had || p.best != before
		return
	}

	if p.quit || !p.zenRun.Finished() {
		return
	}
	p.letter = grade.ZenRhythm.Grade(p.zenRun.Scorer().RhythmAccuracy())
	p.graded = true
	next := grade.Result{Score: p.zenRun.Score(), Grade: p.letter}
	before, had := p.store.Best(p.trackID(), score.ModeZen)
	p.best = p.store.SaveBest(p.trackID(), score.ModeZen, next, score.ZenVersion)
	p.improved = !had || p.best != before
}

func (p *Program) trackID() string {
	if p.track.ID != "" {
		return p.track.ID
	}
	return filepath.Base(*config.Directory)
}

func (p *Program) Summary() string {
	var b strings.Builder
	if nil != p.session {
		c := p.session.Counters()
		fmt.Fprintf(&b, "%v\n", p.session.Outcome())
		if p.graded {
			fmt.Fprintf(&b, "    Grade:  %v\n", p.letter)
		} else if p.session.Outcome() == game.OutcomeFailed {
			// A failed run is not graded on accuracy and is never recorded.
			fmt.Fprintf(&b, "    Grade:  %v\n", grade.F)
		}
		fmt.Fprintf(&b, "    Score:  %.0f\n", c.Score)
		fmt.Fprintf(&b, " Accuracy:  %.1f%%\n", p.session.Accuracy()*100)
		fmt.Fprintf(&b, "Max Combo:  %v\n", c.MaxCombo)
		fmt.Fprintf(&b, "   Offset:  %.1fms\n", p.cal.Offset())
	} else {
		fmt.Fprintf(&b, "    Score:  %v\n", p.zenRun.Score())
		fmt.Fprintf(&b, "   Rhythm:  %.1f%%\n", p.zenRun.Scorer().RhythmAccuracy()*100)
		if p.graded {
			fmt.Fprintf(&b, "    Grade:  %v\n", p.letter)
		}
	}
	if p.graded {
		star := ""
		if p.improved {
			star = "  (new best)"
		}
		fmt.Fprintf(&b, "     Best:  %v %v%v\n", p.best.Score, p.best.Grade, star)
	}
	return b.String()
}

func (p *Program) Close() {
	if nil != p.player {
		p.player.Close()
	}
	if nil != p.store {
		p.store.Close()
	}
}
