// Package auth manages the OAuth token lifecycle for multiple Google
// accounts. It owns credential persistence, expiry detection, and
// refresh orchestration, and exposes the contract the service wrappers
// use to obtain a guaranteed-valid token before making an API call.
//
// The package is organized leaf-first:
//   - Store persists one token record per account under a credential
//     directory (no network I/O)
//   - Client wraps the authorization-code and refresh-token exchanges
//     against Google's token endpoint
//   - TokenManager returns tokens guaranteed valid for immediate use,
//     refreshing and re-persisting transparently
//   - Manager is the process-wide account registry and the only
//     surface service wrappers may use
package auth
