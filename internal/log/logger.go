// README: zerolog base logger shared by every component of the service.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level   string    // "debug", "info", ...; empty means info
	Output  io.Writer // defaults to os.Stdout
	Service string    // defaults to "supportcarr"
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure sets up the base logger. Only the first call has an effect.
func Configure(cfg Config) {
	once.Do(func() {
		level := zerolog.InfoLevel
		if cfg.Level != "" {
			if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		writer := cfg.Output
		if writer == nil {
			writer = os.Stdout
		}
		service := cfg.Service
		if service == "" {
			service = "supportcarr"
		}

		base = zerolog.New(writer).With().
			Timestamp().
			Str("service", service).
			Logger()
	})
}

func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child logger tagged with component=name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
