package bearer

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// FromTokenSource adapts an oauth2.TokenSource. Wrap ts with
// oauth2.ReuseTokenSource if it does not cache on its own.
func FromTokenSource(ts oauth2.TokenSource) TokenProvider {
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if ts == nil {
			return "", ErrNilTokenSource
		}
		tok, err := ts.Token()
		if err != nil {
			return "", errors.Join(ErrTokenFetch, err)
		}
		return tok.AccessToken, nil
	}
}

// ClientCredentials returns a provider backed by the OAuth2 client-credentials
// grant. Tokens are reused until shortly before expiry.
func ClientCredentials(cfg clientcredentials.Config) TokenProvider {
	return FromTokenSource(cfg.TokenSource(context.Background()))
}
