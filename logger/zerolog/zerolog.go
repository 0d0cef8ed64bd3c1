// Package zerolog adapts rs/zerolog to the core.Logger contract
package zerolog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// ZerologLogger wraps a configured zerolog instance
type ZerologLogger struct {
	*zerolog.Logger
}

// NewZerolog creates a logger writing to stdout with the given level and
// timestamp layout. Console formatting is used unless jsonFormat is set.
func NewZerolog(level, dateTimeLayout string, colored, jsonFormat bool) (*ZerologLogger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logMode, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(logMode)

	var output io.Writer = os.Stdout
	if !jsonFormat {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			NoColor:    !colored,
			TimeFormat: dateTimeLayout,
		}
	}

	logger := log.
		Output(output).
		With().
		Timestamp().
		Logger()

	return &ZerologLogger{&logger}, nil
}
