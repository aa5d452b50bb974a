//go:build !unix

package main

import (
	"os"

	"github.com/pkg/errors"
)

// redirectStdIO swaps os.Stdout and os.Stderr. Runtime panics still go to
// the original stderr on these platforms.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open stdio log")
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
