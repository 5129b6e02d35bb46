// Package log provides logging utilities for the ServiceDesk service.
// It includes a Zap logger wrapper with Kratos adapter and automatic field sanitization.
package log

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
)

// KratosAdapter adapts Zap logger to Kratos log.Logger interface
type KratosAdapter struct {
	zapLogger *zap.Logger
}

// NewKratosAdapter creates a new Kratos adapter for Zap logger
func NewKratosAdapter(zapLogger *zap.Logger) log.Logger {
	return &KratosAdapter{
		zapLogger: zapLogger.WithOptions(zap.AddCallerSkip(2)),
	}
}

// Log implements Kratos log.Logger interface.
//
// The value of the "msg" key becomes the zap message. String values under
// sensitive keys are masked and map values are passed through RedactPayload.
func (a *KratosAdapter) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)

	for i := 0; i+1 < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		switch value := keyvals[i+1].(type) {
		case string:
			if key == log.DefaultMessageKey {
				msg = value
				continue
			}
			fields = append(fields, zap.String(key, SanitizeField(key, value)))
		case map[string]any:
			fields = append(fields, zap.Any(key, RedactPayload(value)))
		default:
			if IsSensitiveKey(key) && value != nil {
				fields = append(fields, zap.String(key, RedactedValue))
				continue
			}
			fields = append(fields, zap.Any(key, value))
		}
	}

	switch level {
	case log.LevelDebug:
		a.zapLogger.Debug(msg, fields...)
	case log.LevelInfo:
		a.zapLogger.Info(msg, fields...)
	case log.LevelWarn:
		a.zapLogger.Warn(msg, fields...)
	case log.LevelError:
		a.zapLogger.Error(msg, fields...)
	case log.LevelFatal:
		a.zapLogger.Fatal(msg, fields...)
	default:
		a.zapLogger.Info(msg, fields...)
	}

	return nil
}
