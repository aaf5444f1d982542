package game

// Note is a single scheduled event in a beat map. Time and Key are fixed at
// session start; the remaining fields are lifecycle state owned by the
// Session until the note resolves.
type Note struct {
	Time float64 // target time in ms from track start
	Key  rune    // symbol that resolves this note
	Char string  // display form, may differ from Key in case

	Spawned  bool
	Hit      bool
	Missed   bool
	HitAt    float64 // sync time of the resolving keystroke
	MissedAt float64 // sync time the miss was detected
}

// Resolved reports whether the note reached a terminal state. A resolved
// note is never mutated again.
func (n *Note) Resolved() bool {
	return n.Hit || n.Missed
}
