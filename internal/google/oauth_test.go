package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testClientFile = `{
  "installed": {
    "client_id": "123.apps.googleusercontent.com",
    "client_secret": "secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost"]
  }
}`

type fakeAuthorizer struct {
	token *oauth2.Token
	err   error
	calls int
}

func (f *fakeAuthorizer) Authorize(context.Context, *oauth2.Config) (*oauth2.Token, error) {
	f.calls++
	return f.token, f.err
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(testClientFile), 0600))

	conf, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "123.apps.googleusercontent.com", conf.ClientID)
	assert.Equal(t, Scopes, conf.Scopes)
	assert.Equal(t, "https://oauth2.googleapis.com/token", conf.Endpoint.TokenURL)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nope": {}}`), 0600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func newTestProvider(t *testing.T, auth Authorizer) *Provider {
	t.Helper()
	return &Provider{
		Config:      &oauth2.Config{ClientID: "id", Endpoint: oauth2.Endpoint{TokenURL: "http://127.0.0.1:1/token"}},
		Account:     "default",
		Store:       NewFileTokenStore(t.TempDir()),
		Authorizer:  auth,
		Interactive: true,
	}
}

func TestProvider_Token_Cached(t *testing.T) {
	auth := &fakeAuthorizer{}
	p := newTestProvider(t, auth)
	require.NoError(t, p.Store.Save("default", &oauth2.Token{AccessToken: "cached"}))

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", tok.AccessToken)
	assert.Equal(t, 0, auth.calls)
}

func TestProvider_Token_Authorizes(t *testing.T) {
	auth := &fakeAuthorizer{token: &oauth2.Token{AccessToken: "fresh", RefreshToken: "r"}}
	p := newTestProvider(t, auth)

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, 1, auth.calls)

	saved, err := p.Store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
}

func TestProvider_Token_NonInteractive(t *testing.T) {
	auth := &fakeAuthorizer{}
	p := newTestProvider(t, auth)
	p.Interactive = false

	_, err := p.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "labelsheet auth --account default")
	assert.Equal(t, 0, auth.calls)
}

func TestProvider_Token_AuthorizeFails(t *testing.T) {
	p := newTestProvider(t, &fakeAuthorizer{err: errors.New("denied")})

	_, err := p.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
	assert.False(t, p.Store.(*FileTokenStore).Has("default"))
}

func TestProvider_HTTPClient(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	p := newTestProvider(t, &fakeAuthorizer{})
	require.NoError(t, p.Store.Save("default", &oauth2.Token{
		AccessToken: "abc",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))

	client, err := p.HTTPClient(context.Background())
	require.NoError(t, err)

	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestPersistingSource_SavesRefreshedToken(t *testing.T) {
	store := NewFileTokenStore(t.TempDir())
	src := &persistingSource{
		base:    oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "new"}),
		store:   store,
		account: "default",
		last:    "old",
		logger:  nil,
	}

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "new", tok.AccessToken)

	saved, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "new", saved.AccessToken)
}

func TestStaticClient(t *testing.T) {
	c, err := StaticClient{}.HTTPClient(context.Background())
	require.NoError(t, err)
	assert.Same(t, http.DefaultClient, c)

	custom := &http.Client{}
	c, err = StaticClient{Client: custom}.HTTPClient(context.Background())
	require.NoError(t, err)
	assert.Same(t, custom, c)
}
