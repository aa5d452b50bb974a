//go:build !linux

package input

// OpenDevice always fails outside Linux.
func OpenDevice(path string) (Device, error) {
	return nil, ErrUnsupported
}
