package render

import (
	"context"
	"image"
	"image/color"

	"github.com/rook-computer/bongocat/internal/state"
)

// Renderer turns state snapshots into pixels or text. RunLoop owns all
// drawing so the consumer loop never waits on it.
type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	SetScreen(screen Screen)
	RunLoop(ctx context.Context, store *state.Store)
	RedrawWithState(snap state.State)
}

type Screen interface {
	Draw(r Drawer, s state.State)
}

type NoopRenderer struct{}

func (n *NoopRenderer) Start(ctx context.Context) error { return nil }
func (n *NoopRenderer) Stop() error                     { return nil }
func (n *NoopRenderer) SetScreen(screen Screen)         {}
func (n *NoopRenderer) RunLoop(ctx context.Context, store *state.Store) {
	<-ctx.Done()
}
func (n *NoopRenderer) RedrawWithState(snap state.State) {}

// Drawer is what screens draw with, without touching the device.
type Drawer interface {
	// Size returns the canvas size in pixels.
	Size() (width int, height int)

	Clear()

	MeasureText(text string, style TextStyle) TextMetrics
	// DrawText draws with a top-left anchor for y; Align decides how x is read.
	DrawText(text string, x, y int, style TextStyle) TextMetrics

	DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

type TextStyle struct {
	Color color.Color
	Align TextAlign
}

type TextMetrics struct {
	Width   int
	Height  int
	Ascent  int
	Descent int
}

type ScaleMode int

const (
	ScaleModeFit ScaleMode = iota
	ScaleModeStretch
)
