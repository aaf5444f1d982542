package game

import (
	"sort"
	"unicode"
)

// Beatmap is the ordered note schedule for a session. The note set is built
// once and never changes structurally afterwards; only note lifecycle state
// flips.
type Beatmap struct {
	Notes []*Note

	activeNotes    []*Note
	startNoteIndex int
	endNoteIndex   int
}

// NewBeatmap sorts the notes ascending by time (ties keep insertion order)
// and folds the expected symbols to lower case unless the track is case
// sensitive.
func NewBeatmap(notes []*Note, caseSensitive bool) *Beatmap {
	if !caseSensitive {
		for _, n := range notes {
			n.Key = unicode.ToLower(n.Key)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Time < notes[j].Time
	})
	return &Beatmap{Notes: notes}
}

func (b *Beatmap) Active() ([]*Note, int, int) {
	return b.activeNotes, b.startNoteIndex, b.endNoteIndex
}

func (b *Beatmap) SetActive(start int, end int) {
	b.activeNotes = b.Notes[start:end]
	b.startNoteIndex = start
	b.endNoteIndex = end
}

// Last returns the final scheduled time, or 0 for an empty map.
func (b *Beatmap) Last() float64 {
	if len(b.Notes) == 0 {
		return 0
	}
	return b.Notes[len(b.Notes)-1].Time
}
