package screens

import (
	"image"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/render"
	"github.com/rook-computer/bongocat/internal/render/layout"
	"github.com/rook-computer/bongocat/internal/state"
)

const labelGap = 4

// OverlayScreen draws the current frame in the bottom-right corner with the
// counter label stacked above it.
type OverlayScreen struct {
	Frames       map[animation.Frame]image.Image
	MarginRight  int
	MarginBottom int
}

func NewOverlayScreen(frames map[animation.Frame]image.Image, marginRight, marginBottom int) *OverlayScreen {
	return &OverlayScreen{Frames: frames, MarginRight: marginRight, MarginBottom: marginBottom}
}

// SpriteRect is where the sprite goes on a width x height canvas.
func (s *OverlayScreen) SpriteRect(width, height int) image.Rectangle {
	var size image.Point
	for _, img := range s.Frames {
		b := img.Bounds().Size()
		size.X = max(size.X, b.X)
		size.Y = max(size.Y, b.Y)
	}
	return layout.AnchorBottomRight(image.Rect(0, 0, width, height), size.X, size.Y, s.MarginRight, s.MarginBottom)
}

func (s *OverlayScreen) Draw(r render.Drawer, st state.State) {
	width, height := r.Size()
	canvas := image.Rect(0, 0, width, height)
	sprite := s.SpriteRect(width, height)

	if img, ok := s.Frames[st.Frame]; ok {
		r.DrawImageInRect(img, sprite, render.ScaleModeFit)
	} else if img, ok := s.Frames[animation.FrameIdle]; ok {
		r.DrawImageInRect(img, sprite, render.ScaleModeFit)
	}

	style := render.TextStyle{Color: render.Foreground, Align: render.TextAlignCenter}
	metrics := r.MeasureText(st.CounterText, style)
	label := layout.Above(sprite, metrics.Height, labelGap, canvas)
	if label.Empty() {
		return
	}
	r.DrawText(st.CounterText, label.Min.X+label.Dx()/2, label.Min.Y, style)
}
