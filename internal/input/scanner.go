package input

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DefaultDir is where Linux exposes evdev nodes.
const DefaultDir = "/dev/input"

const devicePrefix = "event"

// DeviceInfo describes a keyboard-capable device found by Scan.
type DeviceInfo struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Scanner enumerates the raw-input directory.
type Scanner struct {
	Dir    string
	Open   Opener
	Logger Logger
}

func NewScanner(dir string, open Opener, logger Logger) *Scanner {
	if dir == "" {
		dir = DefaultDir
	}
	if open == nil {
		open = OpenDevice
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Scanner{Dir: dir, Open: open, Logger: logger}
}

// Scan returns the keyboard-capable devices, sorted by path. A device counts
// as a keyboard when it advertises KEY_A, which rules out mice and touchpads
// exposing only a few buttons. Entries that cannot be opened or queried are
// skipped.
func (s *Scanner) Scan() ([]DeviceInfo, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read input dir %s", s.Dir)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), devicePrefix) {
			continue
		}
		paths = append(paths, filepath.Join(s.Dir, entry.Name()))
	}
	sort.Strings(paths)

	var found []DeviceInfo
	for _, path := range paths {
		dev, err := s.Open(path)
		if err != nil {
			continue
		}
		ok, err := dev.HasKey(KeyA)
		name := dev.Name()
		_ = dev.Close()
		if err != nil || !ok {
			continue
		}
		found = append(found, DeviceInfo{Path: path, Name: name})
	}
	return found, nil
}

// Start scans and spawns one listener goroutine per keyboard. The returned
// listeners are for bookkeeping; callers need not wait on them.
func (s *Scanner) Start(ctx context.Context, sink Sink) ([]*Listener, []DeviceInfo, error) {
	devices, err := s.Scan()
	if err != nil {
		return nil, nil, err
	}
	listeners := make([]*Listener, 0, len(devices))
	for _, info := range devices {
		l := NewListener(info.Path, s.Open, sink, s.Logger)
		listeners = append(listeners, l)
		go func() {
			_ = l.Run(ctx)
		}()
	}
	if len(devices) == 0 {
		s.Logger.Infof("input", "no keyboard devices found under %s", s.Dir)
	}
	return listeners, devices, nil
}
