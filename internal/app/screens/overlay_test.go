package screens

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/render"
	"github.com/rook-computer/bongocat/internal/state"
)

type drawCall struct {
	what string
	rect image.Rectangle
	img  image.Image
	text string
	x, y int
}

type fakeDrawer struct {
	w, h  int
	calls []drawCall
}

func (d *fakeDrawer) Size() (int, int) { return d.w, d.h }
func (d *fakeDrawer) Clear()           {}

func (d *fakeDrawer) MeasureText(text string, style render.TextStyle) render.TextMetrics {
	return render.TextMetrics{Width: 7 * len(text), Height: 13, Ascent: 11, Descent: 2}
}

func (d *fakeDrawer) DrawText(text string, x, y int, style render.TextStyle) render.TextMetrics {
	d.calls = append(d.calls, drawCall{what: "text", text: text, x: x, y: y})
	return d.MeasureText(text, style)
}

func (d *fakeDrawer) DrawImageInRect(img image.Image, rect image.Rectangle, mode render.ScaleMode) {
	d.calls = append(d.calls, drawCall{what: "image", rect: rect, img: img})
}

func testFrames() map[animation.Frame]image.Image {
	return map[animation.Frame]image.Image{
		animation.FrameIdle:     image.NewRGBA(image.Rect(0, 0, 100, 80)),
		animation.FrameHitLeft:  image.NewRGBA(image.Rect(0, 0, 100, 80)),
		animation.FrameHitRight: image.NewRGBA(image.Rect(0, 0, 100, 80)),
	}
}

func TestOverlayAnchorsSpriteAndLabel(t *testing.T) {
	frames := testFrames()
	screen := NewOverlayScreen(frames, 7, 93)
	d := &fakeDrawer{w: 1920, h: 1080}

	screen.Draw(d, state.State{Frame: animation.FrameHitRight, CounterText: "12"})

	require.Len(t, d.calls, 2)
	require.Equal(t, image.Rect(1813, 907, 1913, 987), d.calls[0].rect)
	require.Same(t, frames[animation.FrameHitRight], d.calls[0].img)
	require.Equal(t, "12", d.calls[1].text)
	require.Equal(t, 1863, d.calls[1].x)
	require.Equal(t, 907-4-13, d.calls[1].y)
}

func TestOverlayFallsBackToIdleFrame(t *testing.T) {
	frames := testFrames()
	d := &fakeDrawer{w: 400, h: 300}
	NewOverlayScreen(frames, 0, 0).Draw(d, state.State{Frame: "unknown", CounterText: "0"})
	require.Same(t, frames[animation.FrameIdle], d.calls[0].img)
}

func TestOverlaySkipsLabelWithoutRoom(t *testing.T) {
	d := &fakeDrawer{w: 100, h: 80}
	NewOverlayScreen(testFrames(), 0, 0).Draw(d, state.State{CounterText: "9"})
	require.Len(t, d.calls, 1)
}
