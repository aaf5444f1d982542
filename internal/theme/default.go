package theme

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

type DefaultTheme struct{}

var tierColors = []color.RGBA{
	{R: 102, G: 217, B: 239, A: 255}, // perfect
	{R: 166, G: 226, B: 46, A: 255},  // good
	{R: 230, G: 219, B: 116, A: 255}, // ok
}

func (t *DefaultTheme) NoteColor() color.RGBA {
	return color.RGBA{R: 248, G: 248, B: 242, A: 255}
}

func (t *DefaultTheme) JudgementColor(tier int) color.RGBA {
	if tier < 0 || tier >= len(tierColors) {
		return t.MissColor()
	}
	return tierColors[tier]
}

func (t *DefaultTheme) MissColor() color.RGBA {
	return color.RGBA{R: 249, G: 38, B: 114, A: 255}
}

// HealthColor blends red through green as health fills.
func (t *DefaultTheme) HealthColor(fraction float64) color.RGBA {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	low := colorful.Color{R: 0.92, G: 0.25, B: 0.2}
	high := colorful.Color{R: 0.3, G: 0.85, B: 0.35}
	r, g, b := low.BlendLuv(high, fraction).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func (t *DefaultTheme) TypedColor() color.RGBA {
	return color.RGBA{R: 166, G: 226, B: 46, A: 255}
}

func (t *DefaultTheme) PendingColor() color.RGBA {
	return color.RGBA{R: 140, G: 140, B: 140, A: 255}
}
