// Package log provides dupman's logging setup, built on top of the standard
// slog package.
//
// Every component receives a *slog.Logger through a WithLogger option. The
// CLI builds one with NewLogger, which writes text records to stderr at Warn
// level, or Debug level in verbose mode.
//
// # Path shortening
//
// The PathHandler rewrites string attributes that start with the user's home
// directory so that "/home/alice/Pictures/a.jpg" is logged as
// "~/Pictures/a.jpg". Logs pasted into bug reports then do not carry the
// account name. Nested groups are rewritten as well.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Warn("skipping unreadable file", "path", path, "error", err)
//	slog.SetDefault(logger)
package log
