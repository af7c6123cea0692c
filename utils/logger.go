package utils

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
)

// InitLogger sets up the global zerolog logger. Development gets a
// colored console writer, everything else stays structured JSON.
func InitLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// ColorStatus renders an HTTP status code with its terminal color.
func ColorStatus(statusCode int) string {
	var color string
	switch {
	case statusCode < 300:
		color = Green
	case statusCode < 500:
		color = Yellow
	default:
		color = Red
	}
	return fmt.Sprintf("%s%d%s", color, statusCode, Reset)
}

// PrintLogInfo writes one request-outcome line. The subject is the
// identifier being acted on (email or mobile), never a secret.
func PrintLogInfo(subject *string, statusCode int, functionName string, err *error) {
	who := "Unknown"
	if subject != nil {
		who = *subject
	}

	evt := log.Info()
	if statusCode >= http.StatusInternalServerError {
		evt = log.Error()
	} else if statusCode >= http.StatusBadRequest {
		evt = log.Warn()
	}
	if err != nil && *err != nil {
		evt = evt.Err(*err)
	}

	evt.Int("status", statusCode).Str("function", functionName).Msg("Subject: " + who)
	fmt.Printf("Subject: %s | Status: %s | Function: %s\n", who, ColorStatus(statusCode), functionName)
}
