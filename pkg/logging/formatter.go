package logging

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// FormatText selects human-readable key=value output
	FormatText = "text"
	// FormatJSON selects one JSON object per line
	FormatJSON = "json"
)

// NewTextFormatter creates the default human-readable formatter
func NewTextFormatter() *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		DisableColors:   true,
	}
}

// NewJSONFormatter creates a formatter emitting one JSON object per entry
func NewJSONFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	}
}

// FormatterFor returns the formatter for a format name
func FormatterFor(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewTextFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
