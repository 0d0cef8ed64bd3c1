package signalrun

import (
	"os"
	"strconv"

	"github.com/jmoneylabs/signalrun/core"
	"github.com/jmoneylabs/signalrun/logger/zerolog"
)

// DefaultLog is the package-level logger, configured from the environment
var DefaultLog core.Logger

const (
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
)

// Environment variable names
const (
	envLogLevel      = "SIGNALRUN_LOG_LEVEL"
	envLogTimeFormat = "SIGNALRUN_LOG_TIME_FORMAT"
	envLogColor      = "SIGNALRUN_LOG_COLOR"
	envLogJSON       = "SIGNALRUN_LOG_JSON"
)

func init() {
	log, err := initDefaultLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = zerolog.NewAdapter(log.Logger)
}

func initDefaultLogger() (*zerolog.ZerologLogger, error) {
	logLevel := getEnvWithDefault(envLogLevel, defaultLogLevel)
	logTimeFormat := getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat)

	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}

	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	return zerolog.NewZerolog(logLevel, logTimeFormat, logColored, logJSON)
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolEnv(key, defaultValue string) (bool, error) {
	value := getEnvWithDefault(key, defaultValue)
	return strconv.ParseBool(value)
}
