package theme

import "image/color"

type Theme interface {
	NoteColor() color.RGBA
	JudgementColor(tier int) color.RGBA
	MissColor() color.RGBA
	HealthColor(fraction float64) color.RGBA
	TypedColor() color.RGBA
	PendingColor() color.RGBA
}
