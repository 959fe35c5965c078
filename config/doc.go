// Package config loads the configuration of a logging context from YAML or
// JSON files and ASYNCLOG_* environment variables.
//
// A minimal YAML file:
//
//	name: api
//	mode: async
//	ringBufferSize: 65536
//	fullBufferPolicy: discard
//	discardThreshold: warn
//	shutdownTimeout: 2s
//	appender:
//	  type: file
//	  filename: /var/log/api.log
//	  format: json
package config
