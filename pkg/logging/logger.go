package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// LinePrefix marks featurecat text log lines
const LinePrefix = "🚩 "

// Options controls logger construction
type Options struct {
	Name       string
	Level      string
	JSONFormat bool
	Output     io.Writer
}

// New creates a logger from explicit options
func New(o Options) hclog.Logger {
	output := o.Output
	if output == nil {
		output = os.Stderr
	}

	// Add prefix for non-JSON output
	if !o.JSONFormat {
		output = NewPrefixWriter(LinePrefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       o.Name,
		Level:      hclog.LevelFromString(o.Level),
		JSONFormat: o.JSONFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// DefaultLevel applies when neither a flag nor the environment sets a level
const DefaultLevel = "warn"

// GetLogLevel picks the log level, preferring an explicit override such as
// a CLI flag over the configured level
func GetLogLevel(override, configured string) string {
	if override != "" {
		return override
	}
	if configured != "" {
		return configured
	}
	return DefaultLevel
}
