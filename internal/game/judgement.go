package game

// Judgement is one timing tier for a hit. Tiers are checked in order; a hit
// lands in the first tier whose Ms bound exceeds its absolute error. The
// last tier is open ended and capped by the session's hit window.
type Judgement struct {
	Ms    float64 // exclusive upper bound on |error|
	Name  string
	Score float64
}

var Judgements = []Judgement{
	{Ms: 70, Name: "perfect", Score: 300},
	{Ms: 150, Name: "good", Score: 100},
	{Ms: -1, Name: "ok", Score: 50},
}

func judge(diff float64) (int, Judgement) {
	for i := 0; i < len(Judgements)-1; i++ {
		if diff < Judgements[i].Ms {
			return i, Judgements[i]
		}
	}
	return len(Judgements) - 1, Judgements[len(Judgements)-1]
}
