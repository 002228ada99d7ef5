package config

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger builds the leveled logger shared by the server packages.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "tasktracker",
	})
}
