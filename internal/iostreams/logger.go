package iostreams

import "github.com/rs/zerolog"

// Logger is the diagnostic logger commands write to.
// *zerolog.Logger satisfies it directly; tests use loggertest.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}
