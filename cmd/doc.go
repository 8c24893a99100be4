// Package cmd implements the labelsheet command-line interface.
//
// Commands:
//   - export: copy the messages under a Gmail label into a Google Sheet (default)
//   - auth: run the OAuth consent flow and cache the token
//   - labels: list the account's Gmail labels
//   - version: print the version
package cmd
