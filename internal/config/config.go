// Package config resolves the asset directory and loads the optional
// config.yaml that lives next to the frames and the counter database.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvAssetDir = "BONGO_ASSETS"

	AppName        = "bongo-cat"
	DBFilename     = "sqlite.db"
	ConfigFileName = "config.yaml"

	IdleAsset     = "idle.png"
	HitLeftAsset  = "hit_left.png"
	HitRightAsset = "hit_right.png"

	DefaultDurationMS   = 150
	DefaultMarginBottom = 93
	DefaultMarginRight  = 7
	DefaultInputDir     = "/dev/input"
	DefaultFramebuffer  = "/dev/fb0"
)

// Display backends.
const (
	BackendFramebuffer = "framebuffer"
	BackendTUI         = "tui"
	BackendNone        = "none"
)

type Config struct {
	DBPath    string          `yaml:"db_path"`
	InputDir  string          `yaml:"input_dir"`
	Animation AnimationConfig `yaml:"animation"`
	Window    WindowConfig    `yaml:"window"`
	Queue     QueueConfig     `yaml:"queue"`
	Display   DisplayConfig   `yaml:"display"`
	Logging   LoggingConfig   `yaml:"logging"`
	Status    StatusConfig    `yaml:"status"`

	// AssetDir is where frames, config.yaml and the database default to.
	AssetDir string `yaml:"-"`
	// Source is the config file path, or empty when only defaults apply.
	Source string `yaml:"-"`
}

type AnimationConfig struct {
	DurationMS   int  `yaml:"duration_ms"`
	RestartOnHit bool `yaml:"restart_on_hit"`
}

// WindowConfig holds the overlay margins from the bottom-right screen corner.
type WindowConfig struct {
	MarginBottom int `yaml:"margin_bottom"`
	MarginRight  int `yaml:"margin_right"`
}

// QueueConfig caps the activity queue; 0 keeps it unbounded.
type QueueConfig struct {
	ActivityLimit int `yaml:"activity_limit"`
}

type DisplayConfig struct {
	Backend     string `yaml:"backend"`
	Framebuffer string `yaml:"framebuffer"`
	Font        string `yaml:"font"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type StatusConfig struct {
	Listen  string `yaml:"listen"`
	DevMode bool   `yaml:"dev_mode"`
}

// ResolveAssetDir returns $BONGO_ASSETS, or bongo-cat under the user config
// directory. Failing to find either is fatal for the caller.
func ResolveAssetDir() (string, error) {
	if dir := os.Getenv(EnvAssetDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "could not find a config directory")
	}
	return filepath.Join(base, AppName), nil
}

// Default returns the built-in configuration rooted at assetDir.
func Default(assetDir string) Config {
	return Config{
		DBPath:   filepath.Join(assetDir, DBFilename),
		InputDir: DefaultInputDir,
		Animation: AnimationConfig{
			DurationMS: DefaultDurationMS,
		},
		Window: WindowConfig{
			MarginBottom: DefaultMarginBottom,
			MarginRight:  DefaultMarginRight,
		},
		Display: DisplayConfig{
			Backend:     BackendFramebuffer,
			Framebuffer: DefaultFramebuffer,
		},
		Logging:  LoggingConfig{Level: "info"},
		AssetDir: assetDir,
	}
}

// Load reads config.yaml from assetDir on top of the defaults. A missing file
// is not an error.
func Load(assetDir string) (Config, error) {
	cfg := Default(assetDir)
	path := filepath.Join(assetDir, ConfigFileName)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(err, "parse %s", path)
	}
	cfg.AssetDir = assetDir
	cfg.Source = path
	if err := cfg.Finalize(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid %s", path)
	}
	return cfg, nil
}

// Finalize fills derived defaults and validates. Call it again after applying
// command line overrides.
func (c *Config) Finalize() error {
	c.normalize()
	return c.Validate()
}

func (c *Config) normalize() {
	c.Display.Backend = strings.ToLower(strings.TrimSpace(c.Display.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.AssetDir, DBFilename)
	} else if !filepath.IsAbs(c.DBPath) && c.AssetDir != "" {
		c.DBPath = filepath.Join(c.AssetDir, c.DBPath)
	}
	if c.InputDir == "" {
		c.InputDir = DefaultInputDir
	}
	if c.Display.Backend == "" {
		c.Display.Backend = BackendFramebuffer
	}
	if c.Display.Framebuffer == "" {
		c.Display.Framebuffer = DefaultFramebuffer
	}
	if c.Display.Font != "" && !filepath.IsAbs(c.Display.Font) && c.AssetDir != "" {
		c.Display.Font = filepath.Join(c.AssetDir, c.Display.Font)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Animation.DurationMS <= 0 {
		return errors.Errorf("animation.duration_ms must be positive (got %d)", c.Animation.DurationMS)
	}
	if c.Window.MarginBottom < 0 || c.Window.MarginRight < 0 {
		return errors.New("window margins must not be negative")
	}
	if c.Queue.ActivityLimit < 0 {
		return errors.Errorf("queue.activity_limit must not be negative (got %d)", c.Queue.ActivityLimit)
	}
	switch c.Display.Backend {
	case BackendFramebuffer, BackendTUI, BackendNone:
	default:
		return errors.Errorf("display.backend must be one of framebuffer, tui, none (got %q)", c.Display.Backend)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}

// AnimationDuration is the hit frame display time.
func (c Config) AnimationDuration() time.Duration {
	return time.Duration(c.Animation.DurationMS) * time.Millisecond
}

// UsesBitmaps reports whether the display backend draws the frame images.
func (c Config) UsesBitmaps() bool {
	return c.Display.Backend == BackendFramebuffer
}
