package config

import (
	"fmt"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

var (
	Directory     = kingpin.Arg("directory", "Track directory").Required().ExistingDir()
	Rate          = kingpin.Flag("rate", "Playback speed").Default("1.0").Short('r').Float64()
	StartOffset   = kingpin.Flag("offset", "Skip into the track before play").Default("0s").Short('o').Duration()
	Delay         = kingpin.Flag("delay", "Countdown before playback").Default("1.5s").Short('d').Duration()
	HitWindow     = kingpin.Flag("hit-window", "Maximum timing error that can resolve a note").Default("200ms").Duration()
	TravelTime    = kingpin.Flag("travel-time", "How early a note becomes visible").Default("3s").Duration()
	FramePeriod   = kingpin.Flag("frame-period", "Render frame period").Default("16ms").Short('p').Duration()
	Practice      = kingpin.Flag("practice", "Disable health loss").Bool()
	CaseSensitive = kingpin.Flag("case-sensitive", "Match note characters exactly").Bool()
	Zen           = kingpin.Flag("zen", "Free typing mode, scored on rhythm only").Short('z').Bool()
	TuningFile    = kingpin.Flag("tuning", "Gameplay tuning file").String()
	Database      = kingpin.Flag("database", "Score database file").Default("scores.db").String()

	Tuning = DefaultTuning()
)

// GameplayTuning holds the health deltas applied on hits, mistakes, and
// timed-out misses. The penalty values vary between game variants, so they
// are file-tunable rather than fixed.
type GameplayTuning struct {
	MistakePenalty float64 `yaml:"mistake_penalty"`
	MissPenalty    float64 `yaml:"miss_penalty"`
	PerfectGain    float64 `yaml:"perfect_gain"`
	GoodGain       float64 `yaml:"good_gain"`
	OkGain         float64 `yaml:"ok_gain"`
}

func DefaultTuning() GameplayTuning {
	return GameplayTuning{
		MistakePenalty: 2,
		MissPenalty:    5,
		PerfectGain:    4,
		GoodGain:       2,
		OkGain:         1,
	}
}

// Parse reads the command line and, if given, the tuning file.
func Parse() error {
	kingpin.Version("0.3.0")
	kingpin.Parse()

	if *TuningFile == "" {
		return nil
	}
	data, err := os.ReadFile(*TuningFile)
	if nil != err {
		return fmt.Errorf("unable to read tuning file: %w", err)
	}
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); nil != err {
		return fmt.Errorf("unable to parse tuning file: %w", err)
	}
	Tuning = t
	return nil
}
