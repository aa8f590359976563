package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	verbose atomic.Bool

	mu          sync.Mutex
	base        io.Writer = os.Stdout
	output      io.Writer = os.Stdout
	outputFile  *os.File
	outputPath  string
	beforeWrite func()
)

// SetVerbose enables or disables debug logging for the current process.
func SetVerbose(enabled bool) {
	verbose.Store(enabled)
}

// Verbose reports whether debug logging is enabled.
func Verbose() bool {
	return verbose.Load()
}

// SetOutput replaces the console writer. A configured log file keeps
// receiving a copy of every line.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	mu.Lock()
	defer mu.Unlock()
	base = w
	if outputFile != nil {
		output = io.MultiWriter(base, outputFile)
		return
	}
	output = base
}

// SetBeforeWrite registers a hook run before every line is written, used to
// clear a progress bar that shares the terminal. Pass nil to remove it.
func SetBeforeWrite(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	beforeWrite = fn
}

// SetOutputFile configures optional file logging while preserving console output.
// Passing an empty path disables file logging.
func SetOutputFile(path string) error {
	path = strings.TrimSpace(path)

	mu.Lock()
	defer mu.Unlock()

	if path == outputPath {
		return nil
	}

	if outputFile != nil {
		err := outputFile.Close()
		outputFile = nil
		outputPath = ""
		output = base
		if err != nil {
			return err
		}
	}

	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	outputFile = f
	outputPath = path
	output = io.MultiWriter(base, f)
	return nil
}

// Close closes the log file if one is configured.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if outputFile == nil {
		return nil
	}
	err := outputFile.Close()
	outputFile = nil
	outputPath = ""
	output = base
	return err
}

func write(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if beforeWrite != nil {
		beforeWrite()
	}
	fmt.Fprintf(output, format, args...)
}

// Infof prints formatted output regardless of verbosity level.
func Infof(format string, args ...any) {
	write(format, args...)
}

// Infoln prints output regardless of verbosity level.
func Infoln(args ...any) {
	write("%s", fmt.Sprintln(args...))
}

// Warnf prints a formatted warning regardless of verbosity level.
func Warnf(format string, args ...any) {
	write("Warning: "+format, args...)
}

// Debugf prints formatted output only when verbose mode is enabled.
func Debugf(format string, args ...any) {
	if !Verbose() {
		return
	}
	write(format, args...)
}
