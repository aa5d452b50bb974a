package render

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/state"
)

type boxScreen struct {
	rect image.Rectangle
	img  image.Image
}

func (s boxScreen) Draw(r Drawer, st state.State) {
	r.DrawImageInRect(s.img, s.rect, ScaleModeStretch)
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestFB(w, h int) *FBRenderer {
	r := NewFBRenderer("", nil, nil)
	r.canvas = image.NewRGBA(image.Rect(0, 0, w, h))
	r.fontFace = loadFace(nil, r.Logger)
	return r
}

func TestPaintDamagesWholeCanvasFirstThenOnlyChangedArea(t *testing.T) {
	r := newTestFB(64, 48)
	red := color.RGBA{R: 0xff, A: 0xff}
	r.SetScreen(boxScreen{rect: image.Rect(40, 30, 60, 44), img: solid(20, 14, red)})

	require.Equal(t, image.Rect(0, 0, 64, 48), r.paint(state.State{Version: 1}))
	require.Equal(t, red, r.canvas.RGBAAt(50, 40))

	r.SetScreen(boxScreen{rect: image.Rect(10, 10, 20, 20), img: solid(10, 10, red)})
	damage := r.paint(state.State{Version: 2})
	require.Equal(t, image.Rect(10, 10, 60, 44), damage)
	require.Equal(t, Background, r.canvas.RGBAAt(50, 40))
	require.Equal(t, red, r.canvas.RGBAAt(15, 15))
}

func TestBlitRectCopiesOnlyRect(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 8, 8))
	canvas.Set(2, 2, color.RGBA{G: 0xff, A: 0xff})
	canvas.Set(6, 6, color.RGBA{G: 0xff, A: 0xff})
	dev := image.NewRGBA(image.Rect(0, 0, 8, 8))

	blitRect(dev, canvas, image.Rect(0, 0, 4, 4))
	require.Equal(t, uint8(0xff), dev.RGBAAt(2, 2).G)
	require.Zero(t, dev.RGBAAt(6, 6).G)
}

func TestDrawTextAlignsAndMarks(t *testing.T) {
	r := newTestFB(200, 100)
	r.drewOnce = true
	m := r.DrawText("1234", 100, 10, TextStyle{Align: TextAlignCenter})
	require.Positive(t, m.Width)
	require.Equal(t, 100-m.Width/2, r.drawn.Min.X)
	require.Equal(t, 10, r.drawn.Min.Y)
}

func TestFitRectKeepsAspectAnchoredBottomRight(t *testing.T) {
	require.Equal(t, image.Rect(90, 80, 100, 100), fitRect(image.Rect(0, 0, 100, 100), 10, 20))
	require.Equal(t, image.Rect(0, 50, 100, 100), fitRect(image.Rect(0, 0, 100, 100), 200, 100))
}

func TestRenderTUIShowsLabelAndFrame(t *testing.T) {
	out := renderTUI(state.State{Frame: animation.FrameHitLeft, CounterText: "1180591620717411303427"}, 0, 0)
	require.Contains(t, out, "1180591620717411303427")
	require.Contains(t, out, ">.o")

	out = renderTUI(state.State{Frame: animation.FrameIdle, WriterDown: true}, 0, 0)
	require.Contains(t, out, "o.o")
	require.Contains(t, out, "not saving")
	require.True(t, strings.Contains(out, "0"))
}

func TestTUIModelPicksUpSnapshotsOnTick(t *testing.T) {
	store := state.NewStore("7")
	m := tuiModel{store: store, snap: store.Snapshot()}
	store.Show(animation.FrameHitRight)
	store.SetCounterText("8")

	next, cmd := m.Update(tuiTickMsg{})
	require.NotNil(t, cmd)
	view := next.View()
	require.Contains(t, view, "8")
	require.Contains(t, view, "o.<")
}
