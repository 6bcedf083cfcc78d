// Package observability provides the structured progress logger used across
// the pipeline, plus TTY detection for choosing its default output format.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

// Level defines the logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

// Format defines the log output format.
type Format int

const (
	FormatHuman Format = iota
	FormatJSON
)

// ParseLevel maps a config string to a Level; unknown values default to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	default:
		return LevelInfo
	}
}

// ParseFormat maps a config string to a Format. An empty or unknown value
// falls back to TTY detection: human-readable on a terminal, JSON otherwise
// (CI, piped output).
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "human":
		return FormatHuman
	case "json":
		return FormatJSON
	default:
		return DefaultFormat()
	}
}

// DefaultFormat picks the format from whether stderr is a terminal.
func DefaultFormat() Format {
	if IsTTY(os.Stderr.Fd()) {
		return FormatHuman
	}
	return FormatJSON
}

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// Logger writes structured progress messages. It satisfies the pipeline's
// Logger interface.
type Logger struct {
	level  Level
	format Format
}

// NewLogger creates a logger with the given verbosity and format.
func NewLogger(level Level, format Format) *Logger {
	return &Logger{level: level, format: format}
}

// LogInfo logs an informational message with structured fields.
func (l *Logger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LevelInfo {
		return
	}
	l.write("info", message, fields)
}

// LogWarning logs a warning message with structured fields.
func (l *Logger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.write("warn", message, fields)
}

func (l *Logger) write(level, message string, fields map[string]interface{}) {
	if l.format == FormatJSON {
		record := map[string]interface{}{"level": level, "message": message}
		for k, v := range fields {
			record[k] = v
		}
		data, err := json.Marshal(record)
		if err != nil {
			log.Printf(`{"level":"error","message":"marshal log record: %s"}`, err)
			return
		}
		log.Print(string(data))
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(level), message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	log.Print(b.String())
}
