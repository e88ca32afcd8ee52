package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var zlog = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the process-wide structured logger.
// Development environments get a console writer, everything else JSON.
func Init(env, level string) {
	var w io.Writer
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local":
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	default:
		w = os.Stdout
	}

	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zlog = zerolog.New(w).Level(parsed).With().
		Timestamp().
		Str("service", "blog-engine").
		Logger()
}

// Get returns the process-wide logger.
func Get() *zerolog.Logger {
	return &zlog
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w io.Writer) {
	zlog = zlog.Output(w)
}
