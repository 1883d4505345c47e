// Package gmail wraps the Gmail API for a single account. Clients
// obtain credentials through the account manager and never touch the
// credential store directly.
package gmail
