package system

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct{ errors []string }

func (l *recordingLogger) Infof(string, string, ...interface{}) {}
func (l *recordingLogger) Errorf(component, format string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func TestEnterFailsWithoutConsole(t *testing.T) {
	logger := &recordingLogger{}
	c := &Console{Paths: []string{filepath.Join(t.TempDir(), "tty-missing")}, Logger: logger}
	require.Error(t, c.Enter())
	require.NotEmpty(t, logger.errors)
}

func TestModeChangeOnRegularFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-tty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	c := &Console{Paths: []string{path}}

	require.Error(t, c.Restore())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "\x1b[?25h", string(data))
}

func TestNoPaths(t *testing.T) {
	c := &Console{}
	require.ErrorContains(t, c.Enter(), "no console paths")
}
