package logger

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewFileLogger returns a JSON zap logger writing to a rotated file. It backs
// the outbound HTTP audit log.
func NewFileLogger(filePath string) *zap.Logger {
	writer := zapcore.AddSync(newRotator(filepath.Clean(filePath)))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		writer,
		zap.InfoLevel,
	)
	return zap.New(core)
}
