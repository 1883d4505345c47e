package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound signals that no token record exists for an account. A
// missing record is not an I/O failure; it means "never authenticated".
var ErrNotFound = errors.New("token record not found")

// tokenFileSuffix identifies token record files in the credential
// directory.
const tokenFileSuffix = ".token"

// EnvCredentialsDir overrides the default credential directory.
const EnvCredentialsDir = "GOOGLE_WORKSPACE_CREDENTIALS_DIR"

// Store persists one token record per account as a plain key/value
// file under a single directory. Writes replace the whole file
// atomically via a temp file and rename, so a reader never observes a
// partially applied record. Directory permissions are the only
// protection; records are not encrypted.
type Store struct {
	dir    string
	logger *slog.Logger
}

// DefaultCredentialsDir returns the credential directory, honoring the
// environment override and falling back to the user cache directory.
func DefaultCredentialsDir() (string, error) {
	if dir := os.Getenv(EnvCredentialsDir); dir != "" {
		return dir, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "google-workspace-mcp"), nil
}

// NewStore creates a Store rooted at dir, creating the directory with
// 0700 permissions if absent.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("credential directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, NewError(CodeStoreIO, "failed to create credential directory", err)
	}
	return &Store{dir: dir, logger: slog.Default()}, nil
}

// SetLogger sets a custom logger for the store.
func (s *Store) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Dir returns the credential directory.
func (s *Store) Dir() string {
	return s.dir
}

// sanitizeEmail maps an email to a filesystem-safe filename stem by
// replacing every non-alphanumeric character with a hyphen. The
// transform is lossy, which is why the email is also stored inside the
// record.
func sanitizeEmail(email string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, email)
}

// tokenFilePath returns the record path for an account.
func (s *Store) tokenFilePath(email string) string {
	return filepath.Join(s.dir, sanitizeEmail(email)+tokenFileSuffix)
}

// Save writes the record for rec.Email, replacing any existing record.
// The write is all-or-nothing: the record lands in a temp file first
// and is renamed into place.
func (s *Store) Save(rec *TokenRecord) error {
	if rec == nil {
		return fmt.Errorf("token record cannot be nil")
	}
	if rec.Email == "" {
		return fmt.Errorf("token record email cannot be empty")
	}

	tmp, err := os.CreateTemp(s.dir, "*.tmp")
	if err != nil {
		return NewError(CodeStoreIO, "failed to create temp token file", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(encodeRecord(rec)); err != nil {
		_ = tmp.Close()
		return NewError(CodeStoreIO, "failed to write token record", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return NewError(CodeStoreIO, "failed to set token file permissions", err)
	}
	if err := tmp.Close(); err != nil {
		return NewError(CodeStoreIO, "failed to close temp token file", err)
	}

	final := s.tokenFilePath(rec.Email)
	if err := os.Rename(tmpName, final); err != nil {
		return NewError(CodeStoreIO, "failed to replace token record", err)
	}

	s.logger.Debug("saved token record",
		"email", rec.Email,
		"expiry", rec.Expiry())
	return nil
}

// Load returns the record for email, or ErrNotFound if the account was
// never authenticated. Any other failure is a store I/O error.
func (s *Store) Load(email string) (*TokenRecord, error) {
	data, err := os.ReadFile(s.tokenFilePath(email))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, NewError(CodeStoreIO, "failed to read token record", err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, NewError(CodeStoreIO, fmt.Sprintf("malformed token record for %s", email), err)
	}
	if rec.Email == "" {
		rec.Email = email
	}
	return rec, nil
}

// Delete removes the record for email. Deleting a non-existent record
// succeeds silently.
func (s *Store) Delete(email string) error {
	err := os.Remove(s.tokenFilePath(email))
	if err != nil && !os.IsNotExist(err) {
		return NewError(CodeStoreIO, "failed to delete token record", err)
	}
	if err == nil {
		s.logger.Info("deleted token record", "email", email)
	}
	return nil
}

// List enumerates the emails of all persisted accounts by scanning the
// credential directory for token records. Malformed records are
// skipped with a warning rather than failing the whole listing.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, NewError(CodeStoreIO, "failed to scan credential directory", err)
	}

	var emails []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), tokenFileSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, NewError(CodeStoreIO, "failed to read token record", err)
		}
		rec, err := decodeRecord(data)
		if err != nil || rec.Email == "" {
			s.logger.Warn("skipping malformed token record", "file", entry.Name())
			continue
		}
		emails = append(emails, rec.Email)
	}

	sort.Strings(emails)
	return emails, nil
}

// encodeRecord serializes a record as key=value lines. The format is
// human-readable on purpose: operators inspect these files.
func encodeRecord(rec *TokenRecord) []byte {
	var b strings.Builder
	writeField := func(key, value string) {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
		b.WriteByte('\n')
	}
	writeField("email", rec.Email)
	writeField("access_token", rec.AccessToken)
	writeField("refresh_token", rec.RefreshToken)
	writeField("token_type", rec.TokenType)
	writeField("scope", rec.Scope)
	writeField("expiry_date", strconv.FormatInt(rec.ExpiryDate, 10))
	return []byte(b.String())
}

// decodeRecord parses key=value lines back into a record. Unknown keys
// are ignored so the format can grow without breaking older readers.
func decodeRecord(data []byte) (*TokenRecord, error) {
	rec := &TokenRecord{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid record line %q", line)
		}
		switch key {
		case "email":
			rec.Email = value
		case "access_token":
			rec.AccessToken = value
		case "refresh_token":
			rec.RefreshToken = value
		case "token_type":
			rec.TokenType = value
		case "scope":
			rec.Scope = value
		case "expiry_date":
			ms, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid expiry_date %q: %w", value, err)
			}
			rec.ExpiryDate = ms
		}
	}
	if rec.AccessToken == "" {
		return nil, fmt.Errorf("record has no access_token")
	}
	return rec, nil
}
