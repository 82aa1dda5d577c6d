// Package logging provides structured logging configuration for visid.
//
// It wraps log/slog so every component logs the same way. Create a logger
// with the desired configuration:
//
//	log := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatJSON,
//	})
//
//	log.Info("server started", "listen", addr)
//
// Components accept a *slog.Logger; when logging is not wanted, pass
// logging.Nop(). ParseLevel and ParseFormat turn config-file strings into
// the corresponding values and fall back to info/text rather than failing.
package logging
