//go:build linux

package input

import (
	"context"
	"encoding/binary"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	keyMax       = 0x2ff
	pollInterval = 250 // ms
)

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
	iocRead      = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

// EVIOCGNAME(len) = _IOC(_IOC_READ, 'E', 0x06, len)
func eviocGName(size int) uintptr { return ioc(iocRead, 'E', 0x06, uint32(size)) }

// EVIOCGBIT(ev, len) = _IOC(_IOC_READ, 'E', 0x20 + ev, len)
func eviocGBit(ev uint32, size int) uintptr { return ioc(iocRead, 'E', 0x20+ev, uint32(size)) }

type evdevDevice struct {
	path    string
	fd      int
	tvSize  int
	buf     []byte
	pending []byte
}

// OpenDevice opens an evdev node for non-blocking reads.
func OpenDevice(path string) (Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	// input_event = timeval + u16 type + u16 code + s32 value; timeval width
	// depends on the architecture.
	tvSize := binary.Size(unix.Timeval{})
	if tvSize <= 0 {
		tvSize = 16
	}
	return &evdevDevice{path: path, fd: fd, tvSize: tvSize, buf: make([]byte, 4096)}, nil
}

func (d *evdevDevice) Name() string {
	name := make([]byte, 256)
	if err := d.ioctl(eviocGName(len(name)), unsafe.Pointer(&name[0])); err != nil {
		return d.path
	}
	if idx := strings.IndexByte(string(name), 0); idx >= 0 {
		name = name[:idx]
	}
	if len(name) == 0 {
		return d.path
	}
	return string(name)
}

func (d *evdevDevice) HasKey(code uint16) (bool, error) {
	if code > keyMax {
		return false, nil
	}
	bits := make([]byte, keyMax/8+1)
	if err := d.ioctl(eviocGBit(EvKey, len(bits)), unsafe.Pointer(&bits[0])); err != nil {
		return false, errors.Wrapf(err, "query key bits of %s", d.path)
	}
	return bits[code/8]&(1<<(code%8)) != 0, nil
}

func (d *evdevDevice) ReadEvents(ctx context.Context) ([]Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pollFds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, pollInterval); err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, errors.Wrapf(err, "poll %s", d.path)
		}
		revents := pollFds[0].Revents
		if revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return nil, errors.Errorf("device %s went away (revents=%#x)", d.path, revents)
		}
		if revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(d.fd, d.buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return nil, errors.Wrapf(err, "read %s", d.path)
		}
		if n == 0 {
			return nil, errors.Errorf("read %s: end of stream", d.path)
		}

		d.pending = append(d.pending, d.buf[:n]...)
		events, rest := decodeEvents(d.pending, d.tvSize)
		d.pending = append(d.pending[:0], rest...)
		if len(events) > 0 {
			return events, nil
		}
	}
}

func (d *evdevDevice) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

func (d *evdevDevice) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
