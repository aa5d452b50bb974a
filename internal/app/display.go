package app

import (
	"os"

	"github.com/pkg/errors"

	"github.com/rook-computer/bongocat/internal/app/screens"
	"github.com/rook-computer/bongocat/internal/assets"
	"github.com/rook-computer/bongocat/internal/config"
	"github.com/rook-computer/bongocat/internal/render"
)

// NewRenderer builds the display backend named in cfg. The framebuffer
// backend needs all three frames; a missing one is fatal.
func NewRenderer(cfg config.Config, logger Logger) (render.Renderer, render.Screen, error) {
	switch cfg.Display.Backend {
	case config.BackendNone:
		return &render.NoopRenderer{}, nil, nil
	case config.BackendTUI:
		return render.NewTUIRenderer(os.Stdout, logger), nil, nil
	case config.BackendFramebuffer:
		paths, err := assets.NewPaths(cfg.AssetDir)
		if err != nil {
			return nil, nil, err
		}
		frames, err := assets.LoadFrames(paths)
		if err != nil {
			return nil, nil, err
		}
		fontData, err := assets.LoadFont(cfg.Display.Font)
		if err != nil {
			logger.Errorf("app", "label font unavailable, using built-in: %v", err)
		}
		screen := screens.NewOverlayScreen(frames, cfg.Window.MarginRight, cfg.Window.MarginBottom)
		return render.NewFBRenderer(cfg.Display.Framebuffer, fontData, logger), screen, nil
	default:
		return nil, nil, errors.Errorf("unknown display backend %q", cfg.Display.Backend)
	}
}
