// Package logger builds *slog.Logger instances from functional options and
// injects request-scoped attributes stored in context.Context.
//
// New picks slog.NewTextHandler or slog.NewJSONHandler and wraps it with
// LogHandlerDecorator, which runs every registered ContextExtractor when a
// record is handled. FromConfig does the same from environment variables
// (LOG_LEVEL, LOG_FORMAT, APP_ENV, APP_NAME).
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "twofactor"),
//	    logger.WithContextExtractors(httpguard.RequestIDExtractor()),
//	)
//	log.WarnContext(ctx, "two-factor code rejected",
//	    logger.Owner(owner),
//	    logger.Outcome("denied"),
//	    logger.Reason("replayed"),
//	)
//
// Attribute helpers in attr.go keep key names consistent. Error, Owner and IP
// return an empty Attr for zero input, so they can be passed unconditionally.
package logger
