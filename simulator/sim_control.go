package main

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/rook-computer/bongocat/internal/input"
	"github.com/rook-computer/bongocat/internal/storage"
	"github.com/rook-computer/bongocat/internal/web"
)

var errUnplugged = errors.New("no such device")

type SimFaults struct {
	// WriteFail makes every database write fail.
	WriteFail bool `json:"writeFail"`
	// ConnectFail makes the writer's connection fail; only read at startup.
	ConnectFail bool `json:"connectFail"`
}

// virtualKeyboard is an input.Device fed from HTTP instead of the kernel.
type virtualKeyboard struct {
	name     string
	keyboard bool
	presses  chan int
	unplug   chan struct{}
	once     sync.Once
}

func newVirtualKeyboard(name string, keyboard bool) *virtualKeyboard {
	return &virtualKeyboard{name: name, keyboard: keyboard, presses: make(chan int, 64), unplug: make(chan struct{})}
}

func (k *virtualKeyboard) Name() string { return k.name }

func (k *virtualKeyboard) HasKey(code uint16) (bool, error) {
	return k.keyboard && code == input.KeyA, nil
}

func (k *virtualKeyboard) ReadEvents(ctx context.Context) ([]input.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-k.unplug:
		return nil, errUnplugged
	case n := <-k.presses:
		events := make([]input.Event, 0, 3*n)
		for i := 0; i < n; i++ {
			events = append(events,
				input.Event{Type: input.EvKey, Code: input.KeyA, Value: input.ValuePress},
				input.Event{Type: input.EvKey, Code: input.KeyA, Value: input.ValueRelease},
				input.Event{Type: input.EvSyn},
			)
		}
		return events, nil
	}
}

// Close is a no-op: the scanner opens every device once before its listener
// does, and only /sim/unplug takes a keyboard away.
func (k *virtualKeyboard) Close() error { return nil }

func (k *virtualKeyboard) pull() { k.once.Do(func() { close(k.unplug) }) }

type SimControl struct {
	dir     string
	devices map[string]*virtualKeyboard

	mu     sync.RWMutex
	faults SimFaults
}

// NewSimControl creates keyboards event0..event<n-1> plus one pointer device
// in dir, so the scanner sees a realistic mix.
func NewSimControl(dir string, keyboards int) (*SimControl, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create simulated input dir")
	}
	c := &SimControl{dir: dir, devices: make(map[string]*virtualKeyboard)}
	for i := 0; i <= keyboards; i++ {
		name := "event" + strconv.Itoa(i)
		dev := newVirtualKeyboard("Simulated keyboard "+strconv.Itoa(i), i < keyboards)
		if i == keyboards {
			dev.name = "Simulated mouse"
		}
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			return nil, errors.Wrap(err, "create simulated device node")
		}
		c.devices[name] = dev
	}
	return c, nil
}


// Open is the input.Opener backed by the virtual devices.
func (c *SimControl) Open(path string) (input.Device, error) {
	dev, ok := c.devices[filepath.Base(path)]
	if !ok {
		return nil, errors.Errorf("permission denied: %s", path)
	}
	return dev, nil
}

func (c *SimControl) Faults() SimFaults {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.faults
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.mu.Lock()
	c.faults = v
	c.mu.Unlock()
}

// Press queues n key-downs on device.
func (c *SimControl) Press(device string, n int) error {
	dev, ok := c.devices[device]
	if !ok || !dev.keyboard {
		return errors.Errorf("no keyboard %q", device)
	}
	if n <= 0 {
		n = 1
	}
	select {
	case <-dev.unplug:
		return errors.Errorf("%s is unplugged", device)
	default:
	}
	select {
	case dev.presses <- n:
		return nil
	default:
		return errors.Errorf("%s press buffer full", device)
	}
}

// Unplug makes the device's next read fail.
func (c *SimControl) Unplug(device string) error {
	dev, ok := c.devices[device]
	if !ok {
		return errors.Errorf("no device %q", device)
	}
	dev.pull()
	return nil
}

func (c *SimControl) Keyboards() []string {
	var names []string
	for name, dev := range c.devices {
		if dev.keyboard {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// OpenWriter is the storage.Opener used by the simulator. It wraps the real
// store so faults can be switched on while running.
func (c *SimControl) OpenWriter(ctx context.Context, path string) (storage.CounterWriter, error) {
	if c.Faults().ConnectFail {
		return nil, errors.New("simulated connect failure")
	}
	inner, err := storage.OpenWriter(ctx, path)
	if err != nil {
		return nil, err
	}
	return faultyWriter{inner: inner, control: c}, nil
}

type faultyWriter struct {
	inner   storage.CounterWriter
	control *SimControl
}

func (w faultyWriter) WriteCounter(ctx context.Context, value *big.Int) error {
	if w.control.Faults().WriteFail {
		return errors.New("simulated write failure")
	}
	return w.inner.WriteCounter(ctx, value)
}

func (w faultyWriter) Close() error { return w.inner.Close() }

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/press", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req struct {
			Device string `json:"device"`
			Count  int    `json:"count"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
		}
		if req.Device == "" {
			if names := control.Keyboards(); len(names) > 0 {
				req.Device = names[0]
			}
		}
		if err := control.Press(req.Device, req.Count); err != nil {
			writeSimError(w, http.StatusConflict, err.Error())
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "device": req.Device})
	})

	mux.HandleFunc("/sim/unplug", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req struct {
			Device string `json:"device"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeSimError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := control.Unplug(req.Device); err != nil {
			writeSimError(w, http.StatusNotFound, err.Error())
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "device": req.Device})
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			web.WriteJSON(w, http.StatusOK, control.Faults())
		case http.MethodPost:
			var patch struct {
				WriteFail   *bool `json:"writeFail"`
				ConnectFail *bool `json:"connectFail"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.WriteFail != nil {
				current.WriteFail = *patch.WriteFail
			}
			if patch.ConnectFail != nil {
				current.ConnectFail = *patch.ConnectFail
			}
			control.SetFaults(current)
			web.WriteJSON(w, http.StatusOK, current)
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	web.WriteAPIError(w, status, "sim_error", message)
}
