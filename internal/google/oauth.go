package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/labelsheet/internal/logging"
)

// HTTPClientProvider hands out an authenticated HTTP client for Google APIs.
type HTTPClientProvider interface {
	HTTPClient(ctx context.Context) (*http.Client, error)
}

// StaticClient is an HTTPClientProvider that always returns the same client.
type StaticClient struct {
	Client *http.Client
}

// HTTPClient returns the wrapped client, or http.DefaultClient if it is nil.
func (s StaticClient) HTTPClient(context.Context) (*http.Client, error) {
	if s.Client == nil {
		return http.DefaultClient, nil
	}
	return s.Client, nil
}

// LoadConfig reads an OAuth client file and returns a config for Scopes.
func LoadConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth client file %s: %w", credentialsFile, err)
	}
	conf, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth client file %s: %w", credentialsFile, err)
	}
	return conf, nil
}

// Authorizer obtains a fresh token interactively.
type Authorizer interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// Provider is the installed-app HTTPClientProvider. It uses the cached token
// for Account and runs Authorizer only when there is none.
type Provider struct {
	Config     *oauth2.Config
	Account    string
	Store      TokenStore
	Authorizer Authorizer
	Logger     *slog.Logger

	// Interactive allows Authorizer to run when no token is cached.
	Interactive bool
}

// NewProvider returns a Provider for account backed by the default file store
// and the loopback consent flow.
func NewProvider(conf *oauth2.Config, account string) *Provider {
	return &Provider{
		Config:      conf,
		Account:     account,
		Store:       NewFileTokenStore(""),
		Authorizer:  NewLoopbackFlow(),
		Logger:      slog.Default(),
		Interactive: true,
	}
}

// Token returns a valid token for the account, authorizing if needed.
func (p *Provider) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := p.Store.Load(p.Account)
	if err == nil {
		return tok, nil
	}
	if !errors.Is(err, ErrNoToken) {
		return nil, err
	}
	if !p.Interactive || p.Authorizer == nil {
		return nil, errors.New(AuthenticationErrorMessage(p.Account))
	}
	return p.Authorize(ctx)
}

// Authorize runs the interactive flow unconditionally and caches the result.
func (p *Provider) Authorize(ctx context.Context) (*oauth2.Token, error) {
	p.logger().Info("starting Google OAuth consent flow", logging.Account(p.Account))

	tok, err := p.Authorizer.Authorize(ctx, p.Config)
	if err != nil {
		return nil, fmt.Errorf("OAuth authorization for account %s failed: %w", p.Account, err)
	}
	if err := p.Store.Save(p.Account, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// HTTPClient returns a client that attaches and refreshes the account's token.
// Refreshed tokens are written back to the store.
func (p *Provider) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := p.Token(ctx)
	if err != nil {
		return nil, err
	}

	src := &persistingSource{
		base:    oauth2.ReuseTokenSource(tok, p.Config.TokenSource(ctx, tok)),
		store:   p.Store,
		account: p.Account,
		last:    tok.AccessToken,
		logger:  p.logger(),
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: src,
			// Google APIs occasionally fail with HTTP/2 stream errors on long runs.
			Base: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				ForceAttemptHTTP2: false,
			},
		},
	}, nil
}

func (p *Provider) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// persistingSource saves the token whenever the underlying source refreshed it.
type persistingSource struct {
	base    oauth2.TokenSource
	store   TokenStore
	account string
	logger  *slog.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.store.Save(s.account, tok); err != nil {
			s.logger.Warn("failed to cache refreshed token", logging.Account(s.account), logging.Err(err))
		} else {
			s.logger.Debug("cached refreshed token", logging.Account(s.account),
				"access_token", logging.SanitizeToken(tok.AccessToken))
		}
	}
	return tok, nil
}

// AuthenticationErrorMessage explains how to create a token for account.
func AuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("no Google OAuth token cached for account %q; run 'labelsheet auth --account %s' to authorize", account, account)
}
