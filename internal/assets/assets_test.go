package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/config"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeFrames(t *testing.T, dir string) {
	t.Helper()
	writePNG(t, filepath.Join(dir, config.IdleAsset), 40, 30)
	writePNG(t, filepath.Join(dir, config.HitLeftAsset), 40, 32)
	writePNG(t, filepath.Join(dir, config.HitRightAsset), 42, 30)
}

func TestNewPathsReportsMissingFrame(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, config.IdleAsset), 4, 4)

	_, err := NewPaths(dir)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissing))
	require.Contains(t, err.Error(), config.HitLeftAsset)
}

func TestLoadFrames(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir)

	paths, err := NewPaths(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, config.HitRightAsset), paths.For(animation.FrameHitRight))

	frames, err := LoadFrames(paths)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	require.Equal(t, 40, frames[animation.FrameIdle].Bounds().Dx())
	require.Equal(t, image.Rect(0, 0, 42, 32), frames.Bounds())
}

func TestLoadFramesRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.HitLeftAsset), []byte("not an image"), 0o644))

	paths, err := NewPaths(dir)
	require.NoError(t, err)
	_, err = LoadFrames(paths)
	require.ErrorContains(t, err, "hit_left")
}

func TestLoadFont(t *testing.T) {
	data, err := LoadFont("")
	require.NoError(t, err)
	require.Nil(t, data)

	_, err = LoadFont(filepath.Join(t.TempDir(), "absent.ttf"))
	require.Error(t, err)
}
