// Package sl holds small helpers for building slog attributes.
package sl

import "log/slog"

// Err returns an "error" attribute carrying err's text.
//
//	log.Error("failed to save profile", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
