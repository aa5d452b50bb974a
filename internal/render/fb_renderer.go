package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
	"time"

	"github.com/golang/freetype/truetype"
	fb "github.com/gonutz/framebuffer"
	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/bongocat/internal/state"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// FBRenderer draws the overlay into an offscreen canvas the size of the
// framebuffer and copies only the damaged region to the device.
type FBRenderer struct {
	Path   string
	Font   []byte
	Logger Logger

	fbDev    *fb.Device
	canvas   *image.RGBA
	fontFace font.Face
	running  atomic.Bool
	current  Screen

	drawn       image.Rectangle
	lastDrawn   image.Rectangle
	lastVersion uint64
	drewOnce    bool
}

func NewFBRenderer(path string, fontData []byte, logger Logger) *FBRenderer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &FBRenderer{Path: path, Font: fontData, Logger: logger}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.Path)
	if err != nil {
		return errors.Wrapf(err, "open framebuffer %s", r.Path)
	}
	r.fbDev = dev
	bounds := dev.Bounds()
	r.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())

	r.canvas = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	r.fontFace = loadFace(r.Font, r.Logger)
	r.running.Store(true)
	return nil
}

// loadFace tries OpenType, then FreeType's TrueType parser, then the
// built-in bitmap font.
func loadFace(data []byte, logger Logger) font.Face {
	if len(data) == 0 {
		return basicfont.Face7x13
	}
	if fnt, err := opentype.Parse(data); err == nil {
		face, ferr := opentype.NewFace(fnt, &opentype.FaceOptions{Size: FontSizePt, DPI: FontDPI, Hinting: font.HintingFull})
		if ferr == nil {
			logger.Infof("fb", "loaded OTF font at %.0fpt", FontSizePt)
			return face
		}
		logger.Errorf("fb", "font face create failed: %v", ferr)
	} else {
		logger.Errorf("fb", "opentype parse failed: %v", err)
	}
	tt, err := truetype.Parse(data)
	if err != nil {
		logger.Errorf("fb", "truetype parse failed, using basicfont: %v", err)
		return basicfont.Face7x13
	}
	logger.Infof("fb", "loaded TrueType font via freetype")
	return truetype.NewFace(tt, &truetype.Options{Size: FontSizePt, DPI: FontDPI, Hinting: font.HintingFull})
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	if r.fbDev != nil {
		r.fbDev.Close()
	}
	return nil
}

func (r *FBRenderer) SetScreen(screen Screen) { r.current = screen }

func (r *FBRenderer) RedrawWithState(snap state.State) {
	if !r.running.Load() || r.current == nil || r.fbDev == nil {
		return
	}
	blitRect(r.fbDev, r.canvas, r.paint(snap))
}

// paint draws snap into the canvas and returns the damaged region: what was
// drawn now or last frame. The first frame damages the whole canvas so the
// console underneath gets covered.
func (r *FBRenderer) paint(snap state.State) image.Rectangle {
	first := !r.drewOnce
	r.lastDrawn = r.drawn
	r.drawn = image.Rectangle{}
	r.Clear()
	r.current.Draw(r, snap)
	r.lastVersion = snap.Version
	r.drewOnce = true
	if first {
		return r.canvas.Bounds()
	}
	return r.drawn.Union(r.lastDrawn)
}

// RunLoop redraws at ~30 FPS, skipping ticks where nothing changed.
func (r *FBRenderer) RunLoop(ctx context.Context, store *state.Store) {
	ticker := time.NewTicker(time.Second / 30)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.drewOnce && store.Version() == r.lastVersion {
				continue
			}
			r.RedrawWithState(store.Snapshot())
		}
	}
}

func (r *FBRenderer) Size() (int, int) {
	b := r.canvas.Bounds()
	return b.Dx(), b.Dy()
}

// Clear resets the region drawn last frame.
func (r *FBRenderer) Clear() {
	area := r.lastDrawn
	if !r.drewOnce {
		area = r.canvas.Bounds()
	}
	draw.Draw(r.canvas, area, &image.Uniform{C: Background}, image.Point{}, draw.Src)
}

func (r *FBRenderer) MeasureText(text string, style TextStyle) TextMetrics {
	face := r.face()
	metrics := face.Metrics()
	width := font.MeasureString(face, text).Ceil()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	return TextMetrics{Width: width, Height: ascent + descent, Ascent: ascent, Descent: descent}
}

func (r *FBRenderer) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	m := r.MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= m.Width / 2
	case TextAlignRight:
		x -= m.Width
	}
	var src color.Color = Foreground
	if style.Color != nil {
		src = style.Color
	}
	drawer := &font.Drawer{Dst: r.canvas, Src: image.NewUniform(src), Face: r.face()}
	drawer.Dot = fixed.P(x, y+m.Ascent)
	drawer.DrawString(text)
	r.mark(image.Rect(x, y, x+m.Width, y+m.Height))
	return m
}

func (r *FBRenderer) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() {
		return
	}
	dst := rect
	if mode == ScaleModeFit {
		dst = fitRect(rect, img.Bounds().Dx(), img.Bounds().Dy())
	}
	if dst.Size() == img.Bounds().Size() {
		draw.Draw(r.canvas, dst, img, img.Bounds().Min, draw.Over)
	} else {
		xdraw.ApproxBiLinear.Scale(r.canvas, dst, img, img.Bounds(), xdraw.Over, nil)
	}
	r.mark(dst)
}

func (r *FBRenderer) face() font.Face {
	if r.fontFace == nil {
		r.fontFace = basicfont.Face7x13
	}
	return r.fontFace
}

func (r *FBRenderer) mark(rect image.Rectangle) {
	r.drawn = r.drawn.Union(rect.Intersect(r.canvas.Bounds()))
}

func fitRect(rect image.Rectangle, w, h int) image.Rectangle {
	if w <= rect.Dx() && h <= rect.Dy() {
		return image.Rect(rect.Max.X-w, rect.Max.Y-h, rect.Max.X, rect.Max.Y)
	}
	if w*rect.Dy() > h*rect.Dx() {
		outH := rect.Dx() * h / w
		return image.Rect(rect.Min.X, rect.Max.Y-outH, rect.Max.X, rect.Max.Y)
	}
	outW := rect.Dy() * w / h
	return image.Rect(rect.Max.X-outW, rect.Min.Y, rect.Max.X, rect.Max.Y)
}

// blitRect copies rect of the canvas onto the device.
func blitRect(dev draw.Image, canvas *image.RGBA, rect image.Rectangle) {
	if dev == nil {
		return
	}
	rect = rect.Intersect(canvas.Bounds())
	origin := dev.Bounds().Min
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			pixel := canvas.RGBAAt(x, y)
			dev.Set(origin.X+x, origin.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
