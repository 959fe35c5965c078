package logctx

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/asynclog/config"
	"github.com/philipp01105/asynclog/formatter"
	"github.com/philipp01105/asynclog/handler"
	"github.com/philipp01105/asynclog/handler/consolehandler"
	"github.com/philipp01105/asynclog/handler/filehandler"
	"github.com/philipp01105/asynclog/handler/zaphandler"
)

// NewAppender builds the append pipeline described by cfg.
func NewAppender(cfg config.Config) (handler.Handler, error) {
	a := cfg.Appender
	f := newFormatter(a.Format, cfg.IncludeCaller)

	switch a.Type {
	case "", config.AppenderConsole:
		return consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
			Writer:    stream(a.Stream),
			Formatter: f,
		}), nil
	case config.AppenderFile:
		h, err := filehandler.NewFileHandler(filehandler.FileConfig{
			Filename:       a.Filename,
			Formatter:      f,
			BufferSize:     a.BufferSize,
			ImmediateFlush: a.ImmediateFlush,
			MaxSize:        a.MaxSize,
			MaxAge:         time.Duration(a.MaxAge),
			MaxBackups:     a.MaxBackups,
			RotateInterval: time.Duration(a.RotateInterval),
		})
		if err != nil {
			return nil, fmt.Errorf("logctx: file appender: %w", err)
		}
		return h, nil
	case config.AppenderZap:
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		var encoder zapcore.Encoder
		if a.Format == "text" {
			encoder = zapcore.NewConsoleEncoder(enc)
		} else {
			encoder = zapcore.NewJSONEncoder(enc)
		}
		c := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stream(a.Stream))), zapcore.DebugLevel)
		return zaphandler.New(c), nil
	default:
		return nil, fmt.Errorf("%w: appender type %q", config.ErrInvalid, a.Type)
	}
}

func newFormatter(format string, caller bool) formatter.Formatter {
	fc := formatter.Config{IncludeCaller: caller}
	if format == "json" {
		return formatter.NewJSONFormatter(fc)
	}
	return formatter.NewTextFormatter(fc)
}

func stream(name string) io.Writer {
	if name == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}
