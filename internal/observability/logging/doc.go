// Package logging provides structured logging utilities with context propagation.
//
// Loggers are plain *slog.Logger values. The HTTP middleware stores a
// request-scoped logger (carrying request_id) in the context; everything
// below the handler retrieves it with FromContext.
//
// Example usage:
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func (s *Service) work(ctx context.Context) {
//	    logging.FromContext(ctx).Info("ingest finished", slog.String("outcome", "extracted"))
//	}
package logging
