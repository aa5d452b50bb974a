// Package counter holds the lifetime keystroke count.
package counter

import (
	"math/big"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Counter is an unbounded, monotonically increasing keystroke count.
// Increment is called only from the consumer loop; Value may be called from
// any goroutine.
type Counter struct {
	mu    sync.Mutex
	value *big.Int
}

var one = big.NewInt(1)

// New returns a counter starting at initial. A nil or negative initial value
// starts at zero.
func New(initial *big.Int) *Counter {
	v := new(big.Int)
	if initial != nil && initial.Sign() > 0 {
		v.Set(initial)
	}
	return &Counter{value: v}
}

// Increment adds one and returns a copy of the new value.
func (c *Counter) Increment() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value.Add(c.value, one)
	return new(big.Int).Set(c.value)
}

// Value returns a copy of the current value.
func (c *Counter) Value() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.value)
}

func (c *Counter) String() string {
	return Format(c.Value())
}

// Format renders v as a base-10 string; nil formats as "0".
func Format(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// Parse reads a persisted base-10 count.
func Parse(s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, errors.New("empty counter value")
	}
	v, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, errors.Errorf("invalid counter value %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.Errorf("negative counter value %q", s)
	}
	return v, nil
}
