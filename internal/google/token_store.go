package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no cached token exists for an account.
var ErrNoToken = errors.New("no cached Google OAuth token")

var accountNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateAccountName checks that account is usable as part of a file name.
func ValidateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNameRe.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// TokenStore loads and saves OAuth tokens per account.
type TokenStore interface {
	Load(account string) (*oauth2.Token, error)
	Save(account string, token *oauth2.Token) error
}

// FileTokenStore keeps one JSON token file per account in Dir.
type FileTokenStore struct {
	Dir string
}

// NewFileTokenStore returns a store rooted at dir, or at the default cache
// directory when dir is empty.
func NewFileTokenStore(dir string) *FileTokenStore {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &FileTokenStore{Dir: dir}
}

// DefaultTokenDir is <user cache dir>/labelsheet.
func DefaultTokenDir() string {
	return filepath.Join(userCacheDir(), "labelsheet")
}

// Path returns the token file for account.
func (s *FileTokenStore) Path(account string) string {
	return filepath.Join(s.Dir, "google-"+account+".token")
}

// Has reports whether a token file exists for account.
func (s *FileTokenStore) Has(account string) bool {
	if ValidateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.Path(account))
	return err == nil
}

// Load reads the token for account. It returns ErrNoToken if there is none.
func (s *FileTokenStore) Load(account string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.Path(account), err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("token file %s holds no token", s.Path(account))
	}
	return &tok, nil
}

// Save writes token for account with owner-only permissions.
func (s *FileTokenStore) Save(account string, token *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	tmp := s.Path(account) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.Path(account)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func userCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(homeDir(), "Library", "Caches")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
