// Package export runs one label-to-spreadsheet pass.
//
// The run is strictly sequential: resolve the label, list its messages,
// extract the fields of each message in listing order, then append every
// extracted row with one write. A message that cannot be fetched or decoded
// is logged and skipped; only label resolution, listing and the final append
// abort the run.
package export
