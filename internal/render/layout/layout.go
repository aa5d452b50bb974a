package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// AnchorBottomRight places a (widthPx,heightPx) box in the bottom-right of
// rect, marginRight from the right edge and marginBottom from the bottom.
// The box is clamped to rect.
func AnchorBottomRight(rect image.Rectangle, widthPx, heightPx, marginRight, marginBottom int) image.Rectangle {
	rect = Normalize(rect)
	widthPx = clamp(widthPx, 0, rect.Dx())
	heightPx = clamp(heightPx, 0, rect.Dy())
	maxX := clamp(rect.Max.X-marginRight, rect.Min.X+widthPx, rect.Max.X)
	maxY := clamp(rect.Max.Y-marginBottom, rect.Min.Y+heightPx, rect.Max.Y)
	return image.Rect(maxX-widthPx, maxY-heightPx, maxX, maxY)
}

// Above returns a box of heightPx directly above rect with the same width,
// separated by gapPx and clipped at bounds' top.
func Above(rect image.Rectangle, heightPx, gapPx int, bounds image.Rectangle) image.Rectangle {
	maxY := rect.Min.Y - gapPx
	minY := maxY - heightPx
	out := image.Rect(rect.Min.X, minY, rect.Max.X, maxY)
	return out.Intersect(Normalize(bounds))
}

// FitInside scales a (w,h) box to fit rect keeping aspect ratio, centred.
func FitInside(rect image.Rectangle, w, h int) image.Rectangle {
	rect = Normalize(rect)
	if w <= 0 || h <= 0 || rect.Empty() {
		return image.Rectangle{Min: rect.Min, Max: rect.Min}
	}
	outW, outH := rect.Dx(), rect.Dx()*h/w
	if outH > rect.Dy() {
		outH = rect.Dy()
		outW = rect.Dy() * w / h
	}
	x := rect.Min.X + (rect.Dx()-outW)/2
	y := rect.Min.Y + (rect.Dy()-outH)/2
	return image.Rect(x, y, x+outW, y+outH)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
