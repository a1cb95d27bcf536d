package logger

import (
	"io"
	"os"

	"github.com/IanyTech/iany-gaming/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger оборачивает logrus с настройками из конфигурации
type Logger struct {
	*logrus.Logger
}

// New создает новый логгер по конфигурации
func New(cfg *config.LoggerConfig) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = f
		} else {
			log.WithError(err).Warn("Failed to open log file, falling back to stdout")
		}
	}
	log.SetOutput(out)

	return &Logger{Logger: log}
}
