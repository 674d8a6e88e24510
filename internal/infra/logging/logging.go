// Package logging настраивает структурированное логирование приложения.
package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const serviceName = "approval-bot"

var baseLogger *logrus.Entry

// Fields сокращение для структурированных полей лога.
type Fields = logrus.Fields

// Setup настраивает глобальный логгер: уровень и формат (json или text).
func Setup(level, format string) (*logrus.Entry, error) {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.SetLevel(parsed)
	logger.SetFormatter(formatterFor(format))

	baseLogger = logger.WithField("service", serviceName)
	return baseLogger, nil
}

// Logger возвращает настроенный логгер. Если Setup ещё не вызывался,
// инициализирует логгер по умолчанию (полезно для ошибок при старте).
func Logger() *logrus.Entry {
	if baseLogger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(formatterFor("text"))
		baseLogger = logger.WithField("service", serviceName)
	}
	return baseLogger
}

func formatterFor(format string) logrus.Formatter {
	fieldMap := logrus.FieldMap{
		logrus.FieldKeyTime:  "ts",
		logrus.FieldKeyMsg:   "msg",
		logrus.FieldKeyLevel: "level",
	}

	if format == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap:        fieldMap,
		}
	}

	return &logrus.TextFormatter{
		FullTimestamp:          true,
		TimestampFormat:        time.RFC3339Nano,
		FieldMap:               fieldMap,
		DisableLevelTruncation: true,
	}
}
