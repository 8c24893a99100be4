package google

import (
	gmail "google.golang.org/api/gmail/v1"
	sheets "google.golang.org/api/sheets/v4"
)

// Scopes are the OAuth scopes labelsheet requests: read-only mail access and
// read/write access to spreadsheets.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	sheets.SpreadsheetsScope,
}
