// Package score handles SQLite persistence: best results per track and
// mode, and the global calibration offset.
package score

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/FlyingPenguinGit/TypingRythm/internal/grade"
	_ "github.com/mattn/go-sqlite3"
)

// Mode namespaces keep key-match and zen bests separate per track.
const (
	ModeKeyMatch = "keymatch"
	ModeZen      = "zen"
)

// ZenVersion is stored alongside zen records so scores from older scoring
// formulas can be told apart.
const ZenVersion = 1

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return nil, fmt.Errorf("unable to open score database: %w", err)
	}

	initStatement := `
	create table if not exists bests
	  (
		  track text not null,
		  mode text not null,
		  score integer not null,
		  grade text not null,
		  version integer not null,
		  primary key (track, mode)
	  );
	create table if not exists settings
	  (
		  key text not null primary key,
		  value real not null
	  );
	`
	if _, err := db.Exec(initStatement); nil != err {
		db.Close()
		return nil, fmt.Errorf("unable to initialize score database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if nil != s.db {
		s.db.Close()
	}
}

// Best loads the stored best for a track and mode. Missing or malformed
// rows read as absent.
func (s *Store) Best(track, mode string) (grade.Result, bool) {
	var score int
	var letter string
	err := s.db.QueryRow(
		"select score, grade from bests where track = ? and mode = ?",
		track, mode,
	).Scan(&score, &letter)
	if err == sql.ErrNoRows {
		return grade.Result{}, false
	}
	if nil != err {
		logrus.WithError(err).Warn("unable to load best result")
		return grade.Result{}, false
	}
	l, ok := grade.ParseLetter(letter)
	if !ok {
		logrus.WithField("grade", letter).Warn("discarding malformed best result")
		return grade.Result{}, false
	}
	return grade.Result{Score: score, Grade: l}, true
}

// SaveBest merges a finished run into the stored best and writes the row
// when it improved. A first result is always written, whatever its score.
// Returns the record now on disk.
func (s *Store) SaveBest(track, mode string, next grade.Result, version int) grade.Result {
	merged := next
	if best, ok := s.Best(track, mode); ok {
		var changed bool
		merged, changed = grade.Merge(best, next)
		if !changed {
			return best
		}
	}
	_, err := s.db.Exec(
		"insert into bests(track, mode, score, grade, version) values(?, ?, ?, ?, ?) "+
			"on conflict(track, mode) do update set score = excluded.score, grade = excluded.grade, version = excluded.version",
		track, mode, merged.Score, merged.Grade.String(), version,
	)
	if nil != err {
		logrus.WithError(err).Warn("unable to save best result")
	}
	return merged
}

// CalibrationOffset returns the persisted global latency offset in ms, or 0.
func (s *Store) CalibrationOffset() float64 {
	var offset float64
	err := s.db.QueryRow("select value from settings where key = 'calibration_offset'").Scan(&offset)
	if err == sql.ErrNoRows {
		return 0
	}
	if nil != err {
		logrus.WithError(err).Warn("unable to load calibration offset")
		return 0
	}
	return offset
}

// SaveCalibrationOffset persists the latency offset at session end.
func (s *Store) SaveCalibrationOffset(ms float64) {
	_, err := s.db.Exec(
		"insert into settings(key, value) values('calibration_offset', ?) "+
			"on conflict(key) do update set value = excluded.value",
		ms,
	)
	if nil != err {
		logrus.WithError(err).Warn("unable to save calibration offset")
	}
}
