// Package calendar wraps the Google Calendar API for a single
// account. Clients obtain credentials through the account manager.
package calendar
