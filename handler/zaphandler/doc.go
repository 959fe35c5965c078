// Package zaphandler bridges log entries into a zapcore.Core, so existing
// zap encoders and sinks can sit behind an async engine.
package zaphandler
