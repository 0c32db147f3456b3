package logger

import (
	"io"
	"os"
	"storefront/internal/config"
	"strings"

	"github.com/labstack/gommon/log"
)

const (
	jsonHeader = `{"time":"${time_rfc3339_nano}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`
	textHeader = `${time_rfc3339} ${level} ${prefix} ${short_file}:${line}`
)

// Logger is the subset of the echo/gommon logger the services write to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// New builds the process logger. The same value is installed as echo's logger.
func New(prefix string, cfg config.Log) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(os.Stdout)
	l.SetLevel(ParseLevel(cfg.Level))
	if strings.EqualFold(cfg.Format, "json") {
		l.SetHeader(jsonHeader)
	} else {
		l.SetHeader(textHeader)
	}
	return l
}

// Discard returns a logger that writes nowhere, for tests.
func Discard() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
