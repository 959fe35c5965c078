package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/philipp01105/asynclog/async"
	"github.com/philipp01105/asynclog/core"
	"github.com/philipp01105/asynclog/ring"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Mode selects whether a logging context appends on the caller's goroutine
// or hands events to an async engine.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// Appender types understood by logctx.NewAppender.
const (
	AppenderConsole = "console"
	AppenderFile    = "file"
	AppenderZap     = "zap"
)

// Duration is a time.Duration that reads and writes Go duration strings
// such as "5s" or "250ms".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalid, text, err)
	}
	*d = Duration(v)
	return nil
}

// Config is the configuration of one logging context, loaded from file and
// environment.
type Config struct {
	Name  string     `yaml:"name" json:"name"`
	Mode  Mode       `yaml:"mode" json:"mode"`
	Level core.Level `yaml:"level" json:"level"`

	RingBufferSize   int                `yaml:"ringBufferSize" json:"ringBufferSize"`
	FullBufferPolicy async.Policy       `yaml:"fullBufferPolicy" json:"fullBufferPolicy"`
	DiscardThreshold core.Level         `yaml:"discardThreshold" json:"discardThreshold"`
	ShutdownTimeout  Duration           `yaml:"shutdownTimeout" json:"shutdownTimeout"`
	WaitStrategy     async.WaitStrategy `yaml:"waitStrategy" json:"waitStrategy"`
	BatchLimit       int                `yaml:"batchLimit" json:"batchLimit"`

	// CoarseClock is the timestamp resolution of the context's loggers.
	// Zero uses the system clock.
	CoarseClock Duration `yaml:"coarseClock" json:"coarseClock"`
	// IncludeCaller records the call site of every event.
	IncludeCaller bool `yaml:"includeCaller" json:"includeCaller"`

	Appender Appender `yaml:"appender" json:"appender"`
}

// Appender selects and configures the append pipeline.
type Appender struct {
	Type   string `yaml:"type" json:"type"`
	Format string `yaml:"format" json:"format"` // text or json

	// console
	Stream string `yaml:"stream" json:"stream"` // stdout or stderr

	// file
	Filename       string   `yaml:"filename" json:"filename"`
	BufferSize     int      `yaml:"bufferSize" json:"bufferSize"`
	ImmediateFlush bool     `yaml:"immediateFlush" json:"immediateFlush"`
	MaxSize        int64    `yaml:"maxSize" json:"maxSize"`
	MaxAge         Duration `yaml:"maxAge" json:"maxAge"`
	MaxBackups     int      `yaml:"maxBackups" json:"maxBackups"`
	RotateInterval Duration `yaml:"rotateInterval" json:"rotateInterval"`
}

// Default returns built-in defaults: an async context with an ENQUEUE
// policy writing text to stdout.
func Default() Config {
	return Config{
		Mode:             ModeAsync,
		Level:            core.InfoLevel,
		RingBufferSize:   async.DefaultRingBufferSize,
		FullBufferPolicy: async.PolicyEnqueue,
		DiscardThreshold: core.PanicLevel,
		ShutdownTimeout:  Duration(async.DefaultShutdownTimeout),
		WaitStrategy:     async.WaitProgressive,
		BatchLimit:       async.DefaultBatchLimit,
		Appender: Appender{
			Type:   AppenderConsole,
			Format: "text",
			Stream: "stdout",
		},
	}
}

// Load reads configuration from a YAML or JSON file, by extension, on top
// of Default. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first configuration error, wrapping ErrInvalid.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeSync, ModeAsync:
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalid, c.Mode)
	}
	if c.RingBufferSize != 0 && !ring.IsPowerOfTwo(c.RingBufferSize) {
		return fmt.Errorf("%w: ringBufferSize %d is not a power of two", ErrInvalid, c.RingBufferSize)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: negative shutdownTimeout", ErrInvalid)
	}
	if c.CoarseClock < 0 {
		return fmt.Errorf("%w: negative coarseClock", ErrInvalid)
	}
	if c.BatchLimit < 0 {
		return fmt.Errorf("%w: negative batchLimit", ErrInvalid)
	}
	switch c.Appender.Type {
	case "", AppenderConsole, AppenderZap:
	case AppenderFile:
		if c.Appender.Filename == "" {
			return fmt.Errorf("%w: file appender without filename", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: appender type %q", ErrInvalid, c.Appender.Type)
	}
	switch c.Appender.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: appender format %q", ErrInvalid, c.Appender.Format)
	}
	switch c.Appender.Stream {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("%w: console stream %q", ErrInvalid, c.Appender.Stream)
	}
	return nil
}

// EngineOptions returns the async engine options described by c.
func (c Config) EngineOptions() async.Options {
	return async.Options{
		Name:             c.Name,
		RingBufferSize:   c.RingBufferSize,
		Policy:           c.FullBufferPolicy,
		DiscardThreshold: c.DiscardThreshold,
		ShutdownTimeout:  time.Duration(c.ShutdownTimeout),
		WaitStrategy:     c.WaitStrategy,
		BatchLimit:       c.BatchLimit,
	}
}
