package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tile-clean/internal/config"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		SetDebug(false)
	})
	SetDebug(true)

	tests := []struct {
		name     string
		fn       func()
		expected string
	}{
		{
			name:     "Print",
			fn:       func() { Print("test print") },
			expected: "test print",
		},
		{
			name:     "Printf",
			fn:       func() { Printf("test printf %d", 123) },
			expected: "test printf 123",
		},
		{
			name:     "Println",
			fn:       func() { Println("test println") },
			expected: "test println",
		},
		{
			name:     "Debug",
			fn:       func() { Debug("test debug") },
			expected: "[DEBUG] test debug",
		},
		{
			name:     "Debugf",
			fn:       func() { Debugf("test debugf %s", "foo") },
			expected: "[DEBUG] test debugf foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn()
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected log to contain %q, but got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestDebugSuppressed(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	SetDebug(false)
	Debug("hidden")
	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())
}

func TestConfigure_Level(t *testing.T) {
	t.Setenv(EnvLevel, "")
	t.Cleanup(func() { SetDebug(false) })

	c := Configure(config.Logging{Level: "debug"})
	require.NoError(t, c.Close())
	assert.True(t, DebugEnabled())

	c = Configure(config.Logging{Level: "info"})
	require.NoError(t, c.Close())
	assert.False(t, DebugEnabled())

	t.Setenv(EnvLevel, "debug")
	c = Configure(config.Logging{Level: "info"})
	require.NoError(t, c.Close())
	assert.True(t, DebugEnabled())
}

func TestConfigure_File(t *testing.T) {
	t.Setenv(EnvLevel, "")
	path := filepath.Join(t.TempDir(), "tile-clean.log")
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	c := Configure(config.Logging{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	Printf("written to %s", "file")
	require.NoError(t, c.Close())
	log.SetOutput(os.Stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
