package domain

// AuthMethod identifies how sessions authenticate against Exchange.
type AuthMethod string

const (
	// AuthNTLM authenticates each session with NTLM using the configured credentials.
	AuthNTLM AuthMethod = "ntlm"
	// AuthOAuth2 authenticates with an Azure AD client-credentials token.
	AuthOAuth2 AuthMethod = "oauth2"
)

// Credentials holds the account used for NTLM sessions.
// Immutable for the lifetime of a client.
type Credentials struct {
	Username string
	Password string
	// Domain is the optional Windows domain. When set, NTLM uses DOMAIN\Username.
	Domain string
}

// AuthUsername returns the username formatted for NTLM authentication.
func (c Credentials) AuthUsername() string {
	if c.Domain != "" {
		return c.Domain + `\` + c.Username
	}
	return c.Username
}

// IsZero reports whether no username was supplied.
func (c Credentials) IsZero() bool {
	return c.Username == ""
}

// String never reveals the password.
func (c Credentials) String() string {
	return "credentials for " + c.AuthUsername()
}

// OAuthCredentials holds Azure AD client-credentials settings.
type OAuthCredentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}
