package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// AccountStatus describes the best-known state of an account. It is
// derived from the persisted token record, never persisted itself.
type AccountStatus string

const (
	// StatusUnauthenticated means no token record exists for the account.
	StatusUnauthenticated AccountStatus = "UNAUTHENTICATED"

	// StatusValid means the stored access token is usable as-is.
	StatusValid AccountStatus = "VALID"

	// StatusRefreshed means the access token was expired and has just
	// been refreshed and re-persisted.
	StatusRefreshed AccountStatus = "REFRESHED"

	// StatusExpired means the access token is past its expiry and has
	// not been refreshed yet.
	StatusExpired AccountStatus = "EXPIRED"

	// StatusError means the account's token could not be validated or
	// refreshed.
	StatusError AccountStatus = "ERROR"
)

// ValidationStatus is the outcome of a single ValidateToken call.
type ValidationStatus string

const (
	// ValidationNoToken means the account was never authenticated.
	ValidationNoToken ValidationStatus = "NO_TOKEN"

	// ValidationValid means the stored token is usable without changes.
	ValidationValid ValidationStatus = "VALID"

	// ValidationRefreshed means an expired token was refreshed and the
	// new record has been persisted.
	ValidationRefreshed ValidationStatus = "REFRESHED"

	// ValidationRefreshFailed means the refresh token was rejected; the
	// record has been purged and the account must be re-authenticated.
	ValidationRefreshFailed ValidationStatus = "REFRESH_FAILED"
)

// TokenRecord is the persisted credential pair plus expiry metadata for
// one account. Records are mutated only by the TokenManager (on
// refresh) and the Manager (on removal).
type TokenRecord struct {
	// Email is the account this record belongs to. Stored inside the
	// record because the filename transform is lossy.
	Email string

	// AccessToken is the short-lived bearer credential.
	AccessToken string

	// RefreshToken is the long-lived credential used to mint new access
	// tokens. Google only issues it on the first consent, so its
	// absence after a code exchange is a hard failure.
	RefreshToken string

	// TokenType and Scope are provider metadata carried through
	// unmodified.
	TokenType string
	Scope     string

	// ExpiryDate is the absolute expiry of AccessToken in epoch
	// milliseconds.
	ExpiryDate int64
}

// Expiry returns the record's expiry as a time.Time.
func (r *TokenRecord) Expiry() time.Time {
	return time.UnixMilli(r.ExpiryDate)
}

// ExpiredAt reports whether the access token must not be used at the
// given instant, applying the safety margin so a token that would
// expire mid-request is treated as already expired.
func (r *TokenRecord) ExpiredAt(now time.Time, margin time.Duration) bool {
	return !now.Add(margin).Before(r.Expiry())
}

// OAuth2Token converts the record into an oauth2.Token for use with
// token sources and API clients.
func (r *TokenRecord) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		Expiry:       r.Expiry(),
	}
}

// NewTokenRecord builds a record for email from a token returned by the
// provider, carrying the scope metadata through when present.
func NewTokenRecord(email string, tok *oauth2.Token) *TokenRecord {
	rec := &TokenRecord{
		Email:        email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiryDate:   tok.Expiry.UnixMilli(),
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		rec.Scope = scope
	}
	return rec
}

// ValidationResult is the outcome of TokenManager.ValidateToken.
type ValidationResult struct {
	// Valid reports whether Token may be used for an API call right now.
	Valid bool

	// Status distinguishes the paths that led here.
	Status ValidationStatus

	// Token is set only when Valid is true.
	Token *TokenRecord

	// Reason explains a failed validation in human-readable form.
	Reason string
}

// AccountInfo is one entry of a Manager.ListAccounts result.
type AccountInfo struct {
	Email  string
	Status AccountStatus

	// Reason is set when Status is StatusError.
	Reason string
}
