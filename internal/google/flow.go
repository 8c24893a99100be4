package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// LoopbackFlow is the installed-app consent flow: it listens on a random
// loopback port, asks the user to open the consent URL and exchanges the
// code delivered to the redirect.
type LoopbackFlow struct {
	// Prompt shows the consent URL to the user.
	Prompt func(authURL string) error

	// Timeout bounds the wait for the redirect. Zero means five minutes.
	Timeout time.Duration
}

// NewLoopbackFlow returns a flow that prints the consent URL to stderr.
func NewLoopbackFlow() *LoopbackFlow {
	return &LoopbackFlow{Prompt: printPrompt(os.Stderr)}
}

func printPrompt(w io.Writer) func(string) error {
	return func(authURL string) error {
		_, err := fmt.Fprintf(w, "Open the following URL in your browser to authorize labelsheet:\n\n%s\n\n", authURL)
		return err
	}
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the flow against conf and returns the exchanged token.
func (f *LoopbackFlow) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen on loopback: %w", err)
	}

	state, err := randomState()
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	c := *conf
	c.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := c.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	if f.Prompt != nil {
		if err := f.Prompt(authURL); err != nil {
			return nil, fmt.Errorf("failed to show consent URL: %w", err)
		}
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var res callbackResult
	select {
	case res = <-results:
	case <-timer.C:
		return nil, fmt.Errorf("timed out after %s waiting for the OAuth redirect", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := c.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

// callbackHandler accepts the first redirect carrying the expected state and
// reports its code or error on results.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
			http.Error(w, "Authorization failed. You can close this window.", http.StatusForbidden)
		case q.Get("code") == "":
			res.err = errors.New("redirect carried no authorization code")
			http.Error(w, "Missing authorization code.", http.StatusBadRequest)
		default:
			res.code = q.Get("code")
			_, _ = io.WriteString(w, "labelsheet is authorized. You can close this window.\n")
		}

		select {
		case results <- res:
		default:
		}
	})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
