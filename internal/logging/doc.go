// Package logging provides the structured logging helpers used by labelsheet.
//
// Everything logs through log/slog. This package fixes the attribute names
// so that log lines from the Gmail reader, the Sheets writer and the export
// run can be filtered the same way, and it builds the process-wide handler
// from the configured level and format.
//
//	logger := logging.WithOperation(slog.Default(), "gmail.messages.get")
//	logger.Warn("skipping message",
//	    logging.MessageID(id),
//	    logging.Err(err))
//
// Sender addresses and OAuth tokens are never logged verbatim. Use UserHash
// and SanitizeToken when they have to appear at all.
package logging
