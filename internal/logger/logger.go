// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The enquiry service writes lifecycle, submission, and error events to one
// JSON log per day under `<root>/logs/YYYY-MM-DD.log`.  When running in an
// interactive TTY we tee the same events to stdout in console format.
// Rotation, compression, and retention are handled by Lumberjack; no external
// log-rotate job is required.
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Paths.Root, runningInTTY(), cfg.Log.Level)
//	if err != nil { … }
//	log.Infow("booking stored", "reference", ref)
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Errors are written to the same sink via `ErrorOutput`.
// • An empty or unknown level falls back to info.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every line so shared log shippers can route it.
const Service = "enquiry"

// New returns a *zap.SugaredLogger that writes JSON to <root>/logs.  When
// tee == true, a console core is also attached.  The logger is installed as
// the process-wide default via zap.ReplaceGlobals.
func New(rootDir string, tee bool, level string) (*zap.SugaredLogger, error) {
	sink, err := fileSink(rootDir, time.Now())
	if err != nil {
		return nil, err
	}
	lvl := parseLevel(level)
	enc := encoderConfig()

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(sink), lvl)
	if tee {
		core = zapcore.NewTee(core,
			zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stdout), lvl))
	}

	z := zap.New(core,
		zap.ErrorOutput(zapcore.AddSync(sink)),
		zap.AddCaller(),
		zap.Fields(zap.String("service", Service)),
	)
	zap.ReplaceGlobals(z)

	s := z.Sugar()
	s.Infow("logger online", "tee", tee, "level", lvl.String())
	return s, nil
}

// fileSink opens <root>/logs/YYYY-MM-DD.log for day.
func fileSink(rootDir string, day time.Time) (*lumberjack.Logger, error) {
	logDir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, day.Format("2006-01-02")+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}, nil
}

// parseLevel maps "debug", "info", "warn", or "error" to a level; anything
// else is info.
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return lvl
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}
