package records

import (
	"context"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"

	"batch-release/internal/config"
)

// BasicAuthTransport adds HTTP basic credentials to every request.
type BasicAuthTransport struct {
	Username string
	Password string
	Proxied  http.RoundTripper
}

func (b *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if b.Username != "" && b.Password != "" {
		req = req.Clone(req.Context())
		req.SetBasicAuth(b.Username, b.Password)
	}
	return b.Proxied.RoundTrip(req)
}

// newHTTPClient builds the client used against the tracking API, with basic
// auth or OAuth2 client credentials depending on configuration.
func newHTTPClient(ctx context.Context, cfg config.RecordsConfig) *http.Client {
	base := http.DefaultTransport

	switch {
	case cfg.OAuth2 != nil:
		cc := clientcredentials.Config{
			ClientID:     cfg.OAuth2.ClientID,
			ClientSecret: cfg.OAuth2.ClientSecret,
			TokenURL:     cfg.OAuth2.TokenURL,
			Scopes:       cfg.OAuth2.Scopes,
		}
		client := cc.Client(ctx)
		client.Timeout = cfg.Timeout
		return client
	case cfg.BasicAuth != nil:
		return &http.Client{
			Timeout: cfg.Timeout,
			Transport: &BasicAuthTransport{
				Username: cfg.BasicAuth.Username,
				Password: cfg.BasicAuth.Password,
				Proxied:  base,
			},
		}
	default:
		return &http.Client{Timeout: cfg.Timeout, Transport: base}
	}
}
