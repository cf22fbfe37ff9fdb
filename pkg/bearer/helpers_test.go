package bearer_test

import "golang.org/x/oauth2/clientcredentials"

func clientCredentialsConfig(baseURL string) clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     baseURL + "/oauth/token",
		Scopes:       []string{"contacts", "messages"},
	}
}
