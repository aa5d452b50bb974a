// Package assets locates and decodes the overlay's frame images and the
// optional label font.
package assets

import (
	"image"
	_ "image/png" // frame decoder
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // frame decoder
	_ "golang.org/x/image/webp" // frame decoder

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/config"
)

// ErrMissing is wrapped by NewPaths when a frame file is absent.
var ErrMissing = errors.New("asset missing")

// Paths are the three frame files inside the asset directory.
type Paths struct {
	Idle     string
	HitLeft  string
	HitRight string
}

// NewPaths checks that every frame exists under dir.
func NewPaths(dir string) (Paths, error) {
	p := Paths{
		Idle:     filepath.Join(dir, config.IdleAsset),
		HitLeft:  filepath.Join(dir, config.HitLeftAsset),
		HitRight: filepath.Join(dir, config.HitRightAsset),
	}
	for _, path := range []string{p.Idle, p.HitLeft, p.HitRight} {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return Paths{}, errors.Wrapf(ErrMissing, "%s", path)
		}
	}
	return p, nil
}

// For returns the file backing frame.
func (p Paths) For(frame animation.Frame) string {
	switch frame {
	case animation.FrameHitLeft:
		return p.HitLeft
	case animation.FrameHitRight:
		return p.HitRight
	default:
		return p.Idle
	}
}

// Frames holds decoded images keyed by frame.
type Frames map[animation.Frame]image.Image

// LoadFrames decodes the three frames. All of them must decode.
func LoadFrames(p Paths) (Frames, error) {
	frames := make(Frames, 3)
	for _, frame := range []animation.Frame{animation.FrameIdle, animation.FrameHitLeft, animation.FrameHitRight} {
		img, err := decodeFile(p.For(frame))
		if err != nil {
			return nil, errors.Wrapf(err, "frame %s", frame)
		}
		frames[frame] = img
	}
	return frames, nil
}

// Bounds is the union of all frame sizes anchored at the origin.
func (f Frames) Bounds() image.Rectangle {
	var out image.Rectangle
	for _, img := range f {
		b := img.Bounds()
		out = out.Union(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	return out
}

// LoadFont reads a font file. An empty path yields no data and no error.
func LoadFont(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read font")
	}
	return data, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return img, nil
}
