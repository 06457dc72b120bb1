package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var Log *slog.Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	Log = slog.New(handler)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zlog.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// SetDebug lowers both loggers to debug level.
func SetDebug(enabled bool) {
	level := slog.LevelInfo
	zlevel := zerolog.InfoLevel
	if enabled {
		level = slog.LevelDebug
		zlevel = zerolog.DebugLevel
	}
	Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	zerolog.SetGlobalLevel(zlevel)
}
