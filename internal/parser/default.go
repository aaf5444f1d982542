// Package parser reads track record files: metadata, the authored beat map,
// and the beat/onset analysis lists.
package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/FlyingPenguinGit/TypingRythm/internal/game"
)

type DefaultParser struct{}

// Track is one stored track record.
type Track struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Duration      float64  `json:"duration"` // seconds
	BPM           float64  `json:"bpm"`
	Difficulty    int      `json:"difficulty"`
	CaseSensitive bool     `json:"case_sensitive"`
	IncludeSpaces bool     `json:"include_spaces"`
	Version       int      `json:"version"`
	BeatMap       BeatMap  `json:"beat_map"`
	Analysis      Analysis `json:"analysis"`
}

// Note is one authored beat map entry (time in seconds).
type Note struct {
	Time    float64 `json:"time"`
	Key     string  `json:"key"`
	Char    string  `json:"char"`
	IsSpace bool    `json:"is_space"`
}

// BeatMap accepts both record shapes found in the wild: a bare note array,
// or an object wrapping one.
type BeatMap struct {
	Notes         []Note `json:"notes"`
	CaseSensitive bool   `json:"case_sensitive"`
}

func (b *BeatMap) UnmarshalJSON(data []byte) error {
	var notes []Note
	if err := json.Unmarshal(data, &notes); nil == err {
		b.Notes = notes
		return nil
	}
	type beatMap BeatMap
	var obj beatMap
	if err := json.Unmarshal(data, &obj); nil != err {
		return err
	}
	*b = BeatMap(obj)
	return nil
}

// Analysis is the track's audio analysis (all times in seconds).
type Analysis struct {
	BPM        float64   `json:"bpm"`
	Duration   float64   `json:"duration"`
	BeatTimes  []float64 `json:"beat_times"`
	OnsetTimes []float64 `json:"onset_times"`
}

// Parse reads a track record. On failure the caller should degrade to an
// empty schedule rather than abort the session.
func (p *DefaultParser) Parse(file string) (*Track, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read track file: %w", err)
	}
	var t Track
	if err := json.Unmarshal(data, &t); nil != err {
		return nil, fmt.Errorf("unable to parse track file: %w", err)
	}
	return &t, nil
}

// IsCaseSensitive folds the two places the flag can live.
func (t *Track) IsCaseSensitive() bool {
	return t.CaseSensitive || t.BeatMap.CaseSensitive
}

// GameNotes converts the authored beat map into engine notes (ms).
func (t *Track) GameNotes() []*game.Note {
	notes := make([]*game.Note, 0, len(t.BeatMap.Notes))
	for _, n := range t.BeatMap.Notes {
		key := []rune(n.Key)
		if len(key) == 0 {
			key = []rune(n.Char)
		}
		if len(key) == 0 {
			continue
		}
		notes = append(notes, &game.Note{
			Time: n.Time * 1000,
			Key:  key[0],
			Char: n.Char,
		})
	}
	return notes
}
