// Package sheets appends rows to a Google Sheets range.
package sheets
