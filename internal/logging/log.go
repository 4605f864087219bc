// Package logging wraps the standard logger with a debug level and an
// optional rotating log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ironsheep/tile-clean/internal/config"
)

// EnvLevel overrides the configured level when set to "debug".
const EnvLevel = "TILE_CLEAN_LOG_LEVEL"

var debug atomic.Bool

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Configure sets up the standard logger from cfg. Logs go to stderr, or to a
// rotating file when cfg.File is set. The returned closer releases the file.
func Configure(cfg config.Logging) io.Closer {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	SetDebug(cfg.Level == "debug" || os.Getenv(EnvLevel) == "debug")

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   cfg.Compress,
	}
	log.SetOutput(lj)
	return lj
}

// SetDebug enables or disables debug output.
func SetDebug(on bool) { debug.Store(on) }

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool { return debug.Load() }

// Print calls the standard log.Print()
func Print(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
}

// Printf calls the standard log.Printf()
func Printf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
}

// Println calls the standard log.Println()
func Println(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
}

// Debug logs with a [DEBUG] prefix when debug output is on
func Debug(v ...interface{}) {
	if debug.Load() {
		log.Output(2, "[DEBUG] "+fmt.Sprint(v...))
	}
}

// Debugf logs with a [DEBUG] prefix when debug output is on
func Debugf(format string, v ...interface{}) {
	if debug.Load() {
		log.Output(2, "[DEBUG] "+fmt.Sprintf(format, v...))
	}
}
