package render

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fogleman/ease"
	"golang.org/x/term"
)

type DefaultRenderer struct {
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
}

type decoration struct {
	X, Y    int
	Content string
	Color   color.RGBA
	Total   int
	Frames  int // remaining frames until removed
}

func (r *DefaultRenderer) Init() error {
	state, err := term.MakeRaw(int(os.Stdout.Fd()))
	if nil != err {
		return err
	}
	r.restoreState = state

	fmt.Printf("%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Printf("%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	return term.Restore(int(os.Stdout.Fd()), r.restoreState)
}

func (r *DefaultRenderer) Size() (int, int) {
	columns, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if nil != err {
		return 24, 80
	}
	return rows, columns
}

func (r *DefaultRenderer) AddDecoration(col, row int, content string, c color.RGBA, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Color:   c,
		Total:   frames,
		Frames:  frames,
	})
}

// tickDecorations redraws every live decoration with an eased fade toward
// black, then clears the ones that ran out.
func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, strings.Repeat(" ", len([]rune(d.Content))))
			continue
		}
		f := ease.OutQuad(float64(d.Frames) / float64(d.Total))
		faded := color.RGBA{
			R: uint8(float64(d.Color.R) * f),
			G: uint8(float64(d.Color.G) * f),
			B: uint8(float64(d.Color.B) * f),
			A: d.Color.A,
		}
		r.FillColor(d.Y, d.X, faded, d.Content)
		d.Frames--
		nd = append(nd, d)
	}
	r.decorations = nd
}

func (r *DefaultRenderer) RenderLoop(
	delay, framePeriod time.Duration,
	render func(now time.Time, elapsed time.Duration) bool,
) {
	cont := true
	startTime := time.Now().Add(delay)
	for cont {
		now := time.Now()
		elapsed := now.Sub(startTime)
		deadline := now.Add(framePeriod)

		cont = render(now, elapsed)

		r.tickDecorations()
		r.flush()

		time.Sleep(time.Until(deadline))
	}
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column int, c color.RGBA, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H\033[38;2;")
	r.buffer.WriteString(strconv.Itoa(int(c.R)))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(int(c.G)))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(int(c.B)))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) flush() {
	os.Stdout.WriteString(r.buffer.String())
	r.buffer.Reset()
}
