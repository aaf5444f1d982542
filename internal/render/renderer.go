package render

import (
	"image/color"
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	Size() (rows, columns int)
	AddDecoration(col, row int, content string, c color.RGBA, frames int)
	RenderLoop(delay, framePeriod time.Duration, render func(now time.Time, elapsed time.Duration) bool)
	Fill(row, column int, message string)
	FillColor(row, column int, c color.RGBA, message string)
}
