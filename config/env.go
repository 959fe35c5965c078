package config

import (
	"os"
	"strconv"
)

// FromEnv overlays ASYNCLOG_* environment variables onto cfg. Values that
// do not parse are ignored.
func FromEnv(cfg *Config) {
	if v := os.Getenv("ASYNCLOG_NAME"); v != "" {
		cfg.Name = v
	}
	if v := os.Getenv("ASYNCLOG_MODE"); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := os.Getenv("ASYNCLOG_LEVEL"); v != "" {
		_ = cfg.Level.UnmarshalText([]byte(v))
	}
	if v := os.Getenv("ASYNCLOG_RING_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RingBufferSize = n
		}
	}
	if v := os.Getenv("ASYNCLOG_FULL_BUFFER_POLICY"); v != "" {
		_ = cfg.FullBufferPolicy.UnmarshalText([]byte(v))
	}
	if v := os.Getenv("ASYNCLOG_DISCARD_THRESHOLD"); v != "" {
		_ = cfg.DiscardThreshold.UnmarshalText([]byte(v))
	}
	if v := os.Getenv("ASYNCLOG_SHUTDOWN_TIMEOUT"); v != "" {
		_ = cfg.ShutdownTimeout.UnmarshalText([]byte(v))
	}
	if v := os.Getenv("ASYNCLOG_WAIT_STRATEGY"); v != "" {
		_ = cfg.WaitStrategy.UnmarshalText([]byte(v))
	}
	if v := os.Getenv("ASYNCLOG_BATCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchLimit = n
		}
	}
	if v := os.Getenv("ASYNCLOG_COARSE_CLOCK"); v != "" {
		_ = cfg.CoarseClock.UnmarshalText([]byte(v))
	}
	if v := os.Getenv("ASYNCLOG_INCLUDE_CALLER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.IncludeCaller = b
		}
	}
	if v := os.Getenv("ASYNCLOG_APPENDER"); v != "" {
		cfg.Appender.Type = v
	}
	if v := os.Getenv("ASYNCLOG_FORMAT"); v != "" {
		cfg.Appender.Format = v
	}
	if v := os.Getenv("ASYNCLOG_FILE"); v != "" {
		cfg.Appender.Filename = v
	}
}
