// Package audio plays a track through the speaker and exposes the media
// clock the engine judges against. The engine only ever reads position and
// duration; it never owns playback.
package audio

import (
	"fmt"
	"math"
	"os"
	"path"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
)

// Player wraps a decoded stream behind a pause control. Positions are media
// time: unaffected by the playback rate, clamped to the stream bounds.
type Player struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	done     chan struct{}
}

// Open decodes an mp3 or ogg file and initializes the speaker. rate scales
// playback speed by resampling the output clock, so note times stay in
// media time.
func Open(file string, rate float64) (*Player, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, fmt.Errorf("unable to open audio file: %w", err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch path.Ext(file) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		streamer, format, err = mp3.Decode(f)
	}
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode audio file: %w", err)
	}

	sr := beep.SampleRate(math.Round(float64(format.SampleRate) * rate))
	if err := speaker.Init(sr, format.SampleRate.N(time.Second/60)); nil != err {
		streamer.Close()
		return nil, fmt.Errorf("unable to initialize speaker: %w", err)
	}

	return &Player{
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: streamer},
		done:     make(chan struct{}),
	}, nil
}

// Seek jumps to an offset in media time before playback starts.
func (p *Player) Seek(offset time.Duration) error {
	n := p.format.SampleRate.N(offset)
	if n < 0 {
		n = 0
	}
	if n > p.streamer.Len() {
		n = p.streamer.Len()
	}
	return p.streamer.Seek(n)
}

// Play starts playback. The done channel closes when the stream drains.
func (p *Player) Play() {
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		close(p.done)
	})))
}

// SetPaused pauses or resumes playback. Idempotent.
func (p *Player) SetPaused(paused bool) {
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

func (p *Player) Paused() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return p.ctrl.Paused
}

// Position is the current media time. 0 before playback starts.
func (p *Player) Position() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	return p.format.SampleRate.D(p.streamer.Position())
}

// Duration is the total media length of the track.
func (p *Player) Duration() time.Duration {
	return p.format.SampleRate.D(p.streamer.Len())
}

// Ended reports whether the stream has drained.
func (p *Player) Ended() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Player) Close() {
	p.streamer.Close()
}
