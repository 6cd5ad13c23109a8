// Package log provides leveled debug logging for vendor calls and workflows.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level controls how much debug output is emitted.
type Level int

const (
	Off Level = iota
	Basic
	Detailed
	Trace
	Wire
)

var (
	mu      sync.Mutex
	current = Off
	output  io.Writer = os.Stderr
)

// LevelFromInt clamps an integer (typically from a -d flag count) to a Level.
func LevelFromInt(n int) Level {
	switch {
	case n <= 0:
		return Off
	case n >= int(Wire):
		return Wire
	default:
		return Level(n)
	}
}

func (l Level) String() string {
	switch l {
	case Off:
		return "off"
	case Basic:
		return "basic"
	case Detailed:
		return "detailed"
	case Trace:
		return "trace"
	case Wire:
		return "wire"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// SetLevel sets the global debug level.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// SetOutput redirects debug output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug writes a formatted message when the global level is at or above l.
func Debug(l Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l == Off || current < l {
		return
	}
	fmt.Fprintf(output, format, args...)
}
