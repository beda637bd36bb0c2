package logging

import (
	"log/slog"
	"os"
)

// New initializes the process-wide slog logger and sets it as the default.
// The LOG_FORMAT environment variable selects the output format: "json" for
// production, anything else falls back to a human-readable text handler.
func New() {
	logFormat := os.Getenv("LOG_FORMAT")

	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	}

	slog.SetDefault(slog.New(handler))
}
