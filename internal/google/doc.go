// Package google authenticates labelsheet against Google APIs.
//
// Credentials come from an OAuth client file downloaded from the Google
// Cloud console ("Desktop app" type). The first run opens a consent flow
// with a loopback redirect; the resulting token is cached per account under
// the user cache directory and refreshed transparently afterwards.
//
// Consumers depend on HTTPClientProvider only, so tests and alternative
// credential sources can hand in any *http.Client.
package google
