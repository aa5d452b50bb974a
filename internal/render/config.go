package render

import "image/color"

var (
	Foreground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	// Background fills everything outside the sprite; the framebuffer has no alpha.
	Background = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}

	FontSizePt = 18.0
	FontDPI    = 96.0
)
