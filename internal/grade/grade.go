// Package grade converts session accuracy into a letter grade and decides
// whether a finished run beats a stored best.
package grade

// Letter is ordered worst to best so grades compare by ordinal.
type Letter int

const (
	F Letter = iota
	D
	C
	B
	A
	S
)

func (l Letter) String() string {
	switch l {
	case S:
		return "S"
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	case D:
		return "D"
	}
	return "F"
}

// ParseLetter maps a stored grade string back to a Letter. Anything
// unrecognized reads as F, so malformed save data degrades to defaults.
func ParseLetter(s string) (Letter, bool) {
	switch s {
	case "S":
		return S, true
	case "A":
		return A, true
	case "B":
		return B, true
	case "C":
		return C, true
	case "D":
		return D, true
	case "F":
		return F, true
	}
	return F, false
}

type band struct {
	min    float64
	letter Letter
}

// Scale maps an accuracy in [0,1] to a letter.
type Scale []band

// KeyMatch grades note hit accuracy.
var KeyMatch = Scale{
	{0.95, S},
	{0.90, A},
	{0.80, B},
	{0.70, C},
	{0.60, D},
}

// ZenRhythm grades the looser zen rhythm accuracy.
var ZenRhythm = Scale{
	{0.90, S},
	{0.80, A},
	{0.70, B},
	{0.60, C},
	{0.50, D},
}

func (sc Scale) Grade(accuracy float64) Letter {
	for _, b := range sc {
		if accuracy >= b.min {
			return b.letter
		}
	}
	return F
}

// Result is a run outcome as persisted per track and mode.
type Result struct {
	Score int
	Grade Letter
}

// Merge folds a new result into the stored best. The record is written when
// the score is strictly higher or the grade strictly better; score and grade
// upgrade independently, so a run can raise one without the other.
func Merge(best, next Result) (Result, bool) {
	if next.Score <= best.Score && next.Grade <= best.Grade {
		return best, false
	}
	merged := best
	if next.Score > best.Score {
		merged.Score = next.Score
	}
	if next.Grade > best.Grade {
		merged.Grade = next.Grade
	}
	return merged, true
}
