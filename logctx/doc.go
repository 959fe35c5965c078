// Package logctx composes an append pipeline, an optional async engine and
// the loggers that write to them into a logging context.
//
// A context is created once, started, used through its loggers and
// stopped at shutdown:
//
//	cfg, _ := config.Load("log.yaml")
//	app, _ := logctx.NewAppender(cfg)
//	lc, _ := logctx.New("api", cfg, app)
//	_ = lc.Start()
//	log := lc.Logger("api.http")
//	log.Info("listening", logger.Int("port", 8080))
//	lost, err := lc.Stop(ctx)
//
// In async mode Stop drains the ring buffer before the appender is closed,
// bounded by ctx and the configured shutdown timeout. Events that could not
// be drained in time are reported through lost.
//
// A Registry returns one started context per name for programs that use
// several.
package logctx
