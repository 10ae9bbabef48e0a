// Package email defines the outbound notification contract used by the
// credential lifecycle and provides two implementations: a Postmark client
// for production and a filesystem DevSender for local development.
//
// The engine treats delivery as a black box: SendEmail either succeeds or
// returns an error wrapping ErrFailedToSendEmail. Retries, queues, and
// bounce handling are deliberately out of scope.
package email
