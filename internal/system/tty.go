// Package system switches the Linux console out of the way of the
// framebuffer overlay.
package system

import (
	"os"

	"github.com/pkg/errors"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// DefaultConsolePaths are tried in order: the active VT, then tty0.
var DefaultConsolePaths = []string{"/dev/tty", "/dev/tty0"}

// Console puts the virtual terminal in graphics mode while the framebuffer
// overlay is up so the text cursor does not blink through it.
type Console struct {
	Paths  []string
	Logger Logger
}

func NewConsole(logger Logger) *Console {
	return &Console{Paths: DefaultConsolePaths, Logger: logger}
}

// Enter switches to KD_GRAPHICS and hides the cursor. Failures are logged
// and returned; the overlay still works with a visible cursor.
func (c *Console) Enter() error {
	err := c.eachConsole("KD_GRAPHICS", func(fd int) error { return setKDMode(fd, kdGraphics) })
	c.log("KD_GRAPHICS set", "KD_GRAPHICS failed", err)
	if cerr := c.writeVT("\x1b[?25l"); cerr != nil {
		c.log("", "hide cursor failed", cerr)
		if err == nil {
			err = cerr
		}
	}
	return err
}

// Restore returns the console to text mode and shows the cursor.
func (c *Console) Restore() error {
	_ = c.writeVT("\x1b[?25h")
	err := c.eachConsole("KD_TEXT", func(fd int) error { return setKDMode(fd, kdText) })
	c.log("KD_TEXT set", "KD_TEXT failed", err)
	return err
}

func (c *Console) log(ok, failed string, err error) {
	if c.Logger == nil {
		return
	}
	if err != nil {
		c.Logger.Errorf("tty", "%s: %v", failed, err)
	} else if ok != "" {
		c.Logger.Infof("tty", "%s", ok)
	}
}

func (c *Console) eachConsole(op string, fn func(fd int) error) error {
	var lastErr error
	for _, p := range c.Paths {
		f, err := os.OpenFile(p, os.O_RDONLY, 0)
		if err != nil {
			lastErr = errors.Wrapf(err, "open %s", p)
			continue
		}
		err = fn(int(f.Fd()))
		_ = f.Close()
		if err != nil {
			lastErr = errors.Wrapf(err, "%s on %s", op, p)
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.Errorf("%s: no console paths", op)
	}
	return lastErr
}

func (c *Console) writeVT(s string) error {
	var lastErr error
	for _, p := range c.Paths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no console paths")
	}
	return errors.Wrap(lastErr, "write VT")
}
