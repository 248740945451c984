// Package logging wraps logrus with the level/format switch and optional
// lumberjack file rotation the core's ambient logging needs, independent
// of any particular scan component.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"scanforge/internal/config"
	"scanforge/internal/errs"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// New builds a *logrus.Logger from a LoggingConfig. It always writes to
// stderr; when FilePath is set, output fans out to the file too (rotated
// via lumberjack) so a foreground run still shows console output.
func New(cfg config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errs.Wrap(errs.Config, "parse logging.level", err)
	}
	logger.SetLevel(level)

	if err := setFormatter(logger, cfg.Format); err != nil {
		return nil, err
	}

	out := io.Writer(os.Stderr)
	if cfg.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stderr, rotator)
	}
	logger.SetOutput(out)

	return logger, nil
}

func setFormatter(logger *logrus.Logger, format string) error {
	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	default:
		return errs.New(errs.Config, "unsupported logging.format: "+format)
	}
	return nil
}

// WithError attaches an *errs.Error's kind/severity as structured fields,
// so a single log call carries the taxonomy alongside the message.
func WithError(logger *logrus.Logger, err error) *logrus.Entry {
	if e, ok := err.(*errs.Error); ok {
		return logger.WithFields(logrus.Fields{
			"error_kind":     e.Kind.String(),
			"error_severity": e.Severity.String(),
			"retryable":      e.Retryable,
		})
	}
	return logger.WithField("error", err.Error())
}
