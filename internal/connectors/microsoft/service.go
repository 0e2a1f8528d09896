package microsoft

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// Exchange Online endpoints.
const (
	// OnlineEndpoint is the EWS endpoint of Exchange Online.
	OnlineEndpoint = "https://outlook.office365.com/EWS/Exchange.asmx"

	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
)

// DefaultScopes are the app-only scopes for EWS in Exchange Online.
var DefaultScopes = []string{"https://outlook.office365.com/.default"}

// ValidateEndpoint checks that endpoint is an absolute http(s) URL.
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: EWS endpoint is required", domain.ErrInvalidInput)
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: invalid EWS endpoint: %v", domain.ErrInvalidInput, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: EWS endpoint must use http or https scheme", domain.ErrInvalidInput)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: EWS endpoint has no host", domain.ErrInvalidInput)
	}
	return nil
}

// ServiceFor guesses the deployment behind endpoint.
func ServiceFor(endpoint string) ServiceType {
	parsed, err := url.Parse(endpoint)
	if err == nil && strings.EqualFold(parsed.Hostname(), "outlook.office365.com") {
		return ServiceOnline
	}
	return ServiceOnPremises
}

// TokenURL returns the client credentials token endpoint for a tenant.
func TokenURL(tenantID string) string {
	if tenantID == "" {
		tenantID = "common"
	}
	return fmt.Sprintf(tokenURLFormat, url.PathEscape(tenantID))
}

// ClientCredentialsConfig builds the app-only token source configuration.
func ClientCredentialsConfig(creds domain.OAuthCredentials) (*clientcredentials.Config, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: oauth2 client id and secret are required", domain.ErrInvalidInput)
	}
	if creds.TenantID == "" {
		return nil, fmt.Errorf("%w: oauth2 tenant id is required", domain.ErrInvalidInput)
	}

	scopes := creds.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     TokenURL(creds.TenantID),
		Scopes:       scopes,
	}, nil
}

// OAuthClient returns an http.Client that attaches app-only bearer tokens.
// base carries the transport settings and timeout and is used for token
// requests too.
func OAuthClient(ctx context.Context, creds domain.OAuthCredentials, base *http.Client) (*http.Client, error) {
	cfg, err := ClientCredentialsConfig(creds)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return cfg.Client(ctx), nil
	}
	client := cfg.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	client.Timeout = base.Timeout
	return client, nil
}
