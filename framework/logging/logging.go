// Package logging builds the application logger from configuration.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-ioc/framework/config"
)

// New returns a logrus logger configured from cfg.Log, writing to stderr.
// Unknown levels fall back to info; "json" selects the JSON formatter.
func New(cfg *config.Config) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit writer.
func NewWithOutput(cfg *config.Config, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, format := "info", "text"
	if cfg != nil {
		level, format = cfg.Log.Level, cfg.Log.Format
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if err != nil {
		log.WithField("level", level).Warn("logging: unknown level, using info")
	}
	return log
}
