//go:build linux

package system

import "golang.org/x/sys/unix"

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE
)

func setKDMode(fd int, mode int) error {
	return unix.IoctlSetInt(fd, kdSetMode, mode)
}
