package zen

import (
	"math/rand"
	"unicode"
)

// Words is the built-in zen word pool.
var Words = []string{
	"time", "year", "people", "way", "day", "man", "thing", "woman", "life", "child",
	"world", "school", "state", "family", "student", "group", "country", "problem",
	"hand", "part", "place", "case", "week", "company", "system", "program", "question",
	"work", "government", "number", "night", "point", "home", "water", "room", "mother",
	"area", "money", "story", "fact", "month", "lot", "right", "study", "book", "eye",
	"job", "word", "business", "issue", "side", "kind", "head", "house", "service",
	"friend", "father", "power", "hour", "game", "line", "end", "member", "law",
	"car", "city", "community", "name", "president", "team", "minute", "idea", "kid",
	"body", "information", "back", "parent", "face", "others", "level", "office",
	"door", "health", "person", "art", "war", "history", "party", "result", "change",
	"morning", "reason", "research", "girl", "guy", "moment", "air", "teacher", "force",
	"education", "music", "light", "voice", "paper", "space", "street", "view", "choice",
}

// firstWordLeadSec is how long before the first beat the opening word
// appears.
const firstWordLeadSec = 0.5

// Session runs the free typing mode: one target word at a time, advancing
// only on the expected character, scored per completed word by the Scorer.
type Session struct {
	words     []string
	rng       *rand.Rand
	scorer    *Scorer
	firstBeat float64 // seconds

	current string
	typed   []rune
	timings []float64 // ms
	score   int
	started bool
	over    bool

	OnWord    func(word string, points int)
	OnMistype func()
}

// NewSession picks words from the given pool with rng. firstBeat is the time
// of the track's first beat in seconds, used to delay the opening word.
func NewSession(scorer *Scorer, words []string, rng *rand.Rand, firstBeat float64) *Session {
	return &Session{
		words:     words,
		rng:       rng,
		scorer:    scorer,
		firstBeat: firstBeat,
	}
}

func (s *Session) Scorer() *Scorer { return s.scorer }

func (s *Session) Score() int { return s.score }

// Word returns the current target and the typed prefix.
func (s *Session) Word() (string, string) {
	return s.current, string(s.typed)
}

func (s *Session) Started() bool { return s.started }

func (s *Session) Finished() bool { return s.over }

// Finish makes further input a no-op.
func (s *Session) Finish() {
	s.over = true
}

// Tick reveals the first word shortly before the first beat. raw is media
// time in ms.
func (s *Session) Tick(raw float64) {
	if s.started || s.over {
		return
	}
	if raw/1000 >= s.firstBeat-firstWordLeadSec {
		s.nextWord()
		s.started = true
	}
}

// Keystroke handles one typed letter at raw media time ms. Only the expected
// character advances the word; anything else is flagged and ignored.
func (s *Session) Keystroke(symbol rune, raw float64) {
	if !s.started || s.over || !unicode.IsLetter(symbol) {
		return
	}
	expected := []rune(s.current)[len(s.typed)]
	if unicode.ToLower(symbol) != unicode.ToLower(expected) {
		if nil != s.OnMistype {
			s.OnMistype()
		}
		return
	}

	s.typed = append(s.typed, expected)
	s.timings = append(s.timings, raw)
	s.scorer.KeystrokeTyped()

	if len(s.typed) == len([]rune(s.current)) {
		points := s.scorer.ScoreWord(s.timings)
		s.score += points
		if nil != s.OnWord {
			s.OnWord(s.current, points)
		}
		s.nextWord()
	}
}

// Backspace removes the last typed character and its timestamp.
func (s *Session) Backspace() {
	if len(s.typed) == 0 {
		return
	}
	s.typed = s.typed[:len(s.typed)-1]
	s.timings = s.timings[:len(s.timings)-1]
}

func (s *Session) nextWord() {
	s.current = s.words[s.rng.Intn(len(s.words))]
	s.typed = s.typed[:0]
	s.timings = s.timings[:0]
}
