//go:build !linux

package system

import "github.com/pkg/errors"

const (
	kdText     = 0x00
	kdGraphics = 0x01
)

func setKDMode(fd int, mode int) error {
	return errors.New("console modes are only supported on linux")
}
