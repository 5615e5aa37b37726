package logger

import (
	"io"
	"os"
	"strings"

	"cosmo-agent/internal/config"

	"github.com/labstack/gommon/log"
)

const textHeader = "${time_rfc3339} ${level} ${prefix}"

// New builds the agent logger. The json format keeps gommon's default header so
// every line is a single JSON object.
func New(prefix string, cfg config.Log, debug bool) *log.Logger {
	return NewWithOutput(prefix, cfg, debug, os.Stdout)
}

func NewWithOutput(prefix string, cfg config.Log, debug bool, out io.Writer) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(out)
	l.SetLevel(ParseLevel(cfg.Level))
	if debug {
		l.SetLevel(log.DEBUG)
	}
	if strings.EqualFold(cfg.Format, "text") {
		l.SetHeader(textHeader)
	}
	return l
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return NewWithOutput("test", config.Log{Level: "off"}, false, io.Discard)
}

func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}
