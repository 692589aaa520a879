package logger

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a no-op until Init runs, which keeps library packages quiet in tests.
var Logger = zap.NewNop()

// Level controls the logger built by Init and can be changed at runtime.
var Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func buildConfig(development bool) zap.Config {
	cfg := zap.NewProductionConfig()
	Level.SetLevel(zapcore.InfoLevel)
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		Level.SetLevel(zapcore.DebugLevel)
	}
	cfg.Level = Level
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	return cfg
}

func Init(development bool) error {
	l, err := buildConfig(development).Build()
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

func Sync() {
	_ = Logger.Sync()
}

func Info(msg string, fields ...zap.Field) { Logger.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { Logger.Warn(msg, fields...) }

func Log(lvl zapcore.Level, msg string, fields ...zap.Field) {
	Logger.Log(lvl, msg, fields...)
}

// Error attaches err under the "error" key when it is not nil.
func Error(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Logger.Error(msg, fields...)
}

// HttpRequestInfo logs at info level with the request line in front of fields.
func HttpRequestInfo(r *http.Request, msg string, fields ...zap.Field) {
	if ce := Logger.Check(zapcore.InfoLevel, msg); ce != nil {
		ce.Write(append(requestFields(r), fields...)...)
	}
}

func requestFields(r *http.Request) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
		zap.String("client_ip", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()),
	}
}
