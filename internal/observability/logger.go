package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger returns the process logger tagged with the app name.
func Logger(app string) zerolog.Logger {
	return log.With().Str("app", app).Logger()
}
