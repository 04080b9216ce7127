package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Option настраивает логгер
type Option func(*logrus.Logger)

// WithOutput направляет вывод в w
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// WithTextFormat - человекочитаемый формат для консольных утилит
func WithTextFormat() Option {
	return func(l *logrus.Logger) {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// New создает логгер сервиса: JSON в stdout, неизвестный уровень понижается до info
func New(logLevel string, opts ...Option) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	for _, opt := range opts {
		opt(log)
	}
	return log
}
