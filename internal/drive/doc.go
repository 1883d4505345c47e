// Package drive wraps the Google Drive API for a single account.
// Clients obtain credentials through the account manager.
package drive
