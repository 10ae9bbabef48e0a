// Package logger provides a small factory around log/slog plus attribute
// helpers that keep log keys consistent across the codebase.
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatText),
//		logger.WithAttrs(slog.String("service", "credkit")),
//	)
//
//	log.Info("account verified",
//		logger.AccountID(acc.ID),
//		logger.Component("auth"),
//	)
package logger
