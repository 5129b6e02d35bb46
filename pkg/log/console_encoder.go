package log

import (
	"strconv"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// categoryTags maps the "type" field of a log line to the short tag the
// console encoder prefixes its message with.
var categoryTags = map[string]string{
	"request":      "http",
	"slow_request": "slow",
	"database":     "db",
	"redis":        "cache",
	"event":        "event",
	"breaker":      "breaker",
	"analytics":    "stats",
	"rate_limit":   "limit",
	"security":     "sec",
	"cron":         "cron",
	"startup":      "boot",
}

// statusTag returns the status class of an HTTP status code, e.g. "4xx".
func statusTag(status int) string {
	if status < 100 || status > 599 {
		return "???"
	}
	return strconv.Itoa(status/100) + "xx"
}

// ConsoleEncoder wraps zap's console encoder and prefixes each message with
// a bracketed tag derived from the "status" or "type" field.
type ConsoleEncoder struct {
	zapcore.Encoder
}

// NewConsoleEncoder creates a tagging console encoder.
func NewConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &ConsoleEncoder{Encoder: zapcore.NewConsoleEncoder(cfg)}
}

// EncodeEntry implements zapcore.Encoder.
func (enc *ConsoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	if tag := messageTag(fields); tag != "" {
		entry.Message = "[" + tag + "] " + entry.Message
	}
	return enc.Encoder.EncodeEntry(entry, fields)
}

// Clone implements zapcore.Encoder.
func (enc *ConsoleEncoder) Clone() zapcore.Encoder {
	return &ConsoleEncoder{Encoder: enc.Encoder.Clone()}
}

// messageTag picks the status class first, then the category of the line.
func messageTag(fields []zapcore.Field) string {
	var category string
	for _, field := range fields {
		switch {
		case field.Key == "status" && (field.Type == zapcore.Int64Type || field.Type == zapcore.Int32Type):
			return statusTag(int(field.Integer))
		case field.Key == "type" && field.Type == zapcore.StringType:
			category = categoryTags[field.String]
		}
	}
	return category
}
