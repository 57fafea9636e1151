package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger from the log settings.
// An unknown level falls back to info.
func NewLogger(cfg LogConfig) *logrus.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg LogConfig, out io.Writer) *logrus.Logger {
	logg := logrus.New()
	if cfg.Format == "text" {
		logg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logg.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logg.SetLevel(level)
	logg.SetOutput(out)
	return logg
}

// LogError logs err with the location it happened in and optional payload data.
func LogError(logger logrus.FieldLogger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
