// Package logger builds *slog.Logger values for the client pipeline and the
// smoke-test service.
//
// New returns a logger configured by Option functions: JSON output for
// production, tint text output for development, a minimum level, static
// attributes, and ContextExtractor callbacks that pull request-scoped values
// (such as the request id) out of context.Context on every record.
//
//	log := logger.New(
//	    logger.WithTextFormatter(),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithContextExtractors(requestid.Extractor),
//	)
//	log.DebugContext(ctx, "dispatch", logger.Method(req.Method), logger.URL(req.URL.String()))
//
// ParseLevel and ParseFormat turn configuration strings into options values.
// Library components default to Discard so they stay silent unless a logger is
// supplied. Attribute helpers in attr.go keep key names consistent:
// Method, URL, Status, Attempt, Delay, Duration, Kind, RequestID, Error.
package logger
