package connectors

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/Azure/go-ntlmssp"

	"github.com/custodia-labs/ewsctl/internal/connectors/microsoft"
	"github.com/custodia-labs/ewsctl/internal/connectors/microsoft/ews"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driven"
	"github.com/custodia-labs/ewsctl/internal/logger"
)

// Ensure Factory implements the interface.
var _ driven.SessionFactory = (*Factory)(nil)

// Config describes how sessions reach and authenticate to EWS.
type Config struct {
	// Options holds the endpoint and request settings. Options.Endpoint may
	// name a .wsdl file or URL, resolved on first use.
	Options ews.Options
	// Auth selects the registered AuthBuilder.
	Auth domain.AuthMethod
	// Credentials are used by NTLM.
	Credentials domain.Credentials
	// OAuth is used by the oauth2 client credentials flow.
	OAuth domain.OAuthCredentials
	// RateLimit overrides the default pacing when RequestsPerSecond is set.
	RateLimit microsoft.RateLimitConfig
}

// AuthBuilder wraps a session transport in an authenticated client.
type AuthBuilder func(ctx context.Context, cfg Config, transport http.RoundTripper, timeout time.Duration) (*http.Client, error)

// Factory opens EWS sessions. Every session gets its own transport; all
// sessions share one rate limiter.
type Factory struct {
	mu       sync.RWMutex
	builders map[domain.AuthMethod]AuthBuilder
	cfg      Config
	endpoint string
	limiter  *microsoft.RateLimiter
	log      *logger.Logger
}

// NewFactory creates a session factory with the default auth builders registered.
func NewFactory(cfg Config, log *logger.Logger) *Factory {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Auth == "" {
		cfg.Auth = domain.AuthNTLM
	}

	var limiter *microsoft.RateLimiter
	if cfg.RateLimit.RequestsPerSecond != 0 {
		limiter = microsoft.NewRateLimiterWithConfig(cfg.RateLimit)
	} else {
		limiter = microsoft.NewRateLimiter(microsoft.ServiceFor(cfg.Options.Endpoint))
	}

	if service := limiter.Service(); service != "" {
		log.Debug("ews: pacing requests with the %s defaults", service)
	} else {
		log.Debug("ews: pacing requests at %.2f/s, burst %d", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
	}

	f := &Factory{
		builders: make(map[domain.AuthMethod]AuthBuilder),
		cfg:      cfg,
		limiter:  limiter,
		log:      log,
	}
	f.registerDefaultBuilders()
	return f
}

// registerDefaultBuilders registers all built-in auth builders.
func (f *Factory) registerDefaultBuilders() {
	f.Register(domain.AuthNTLM, func(
		_ context.Context, cfg Config, transport http.RoundTripper, timeout time.Duration,
	) (*http.Client, error) {
		if cfg.Credentials.IsZero() {
			return nil, fmt.Errorf("%w: ntlm requires username and password", domain.ErrInvalidInput)
		}
		return &http.Client{
			Timeout: timeout,
			Transport: &basicAuthTransport{
				username: cfg.Credentials.AuthUsername(),
				password: cfg.Credentials.Password,
				next:     ntlmssp.Negotiator{RoundTripper: transport},
			},
		}, nil
	})

	f.Register(domain.AuthOAuth2, func(
		ctx context.Context, cfg Config, transport http.RoundTripper, timeout time.Duration,
	) (*http.Client, error) {
		// Token fetches must outlive the context that opened the session.
		return microsoft.OAuthClient(context.WithoutCancel(ctx), cfg.OAuth,
			&http.Client{Timeout: timeout, Transport: transport})
	})
}

// Register adds an auth builder for the given method.
func (f *Factory) Register(method domain.AuthMethod, builder AuthBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[method] = builder
}

// SupportedMethods returns all registered auth methods, sorted.
func (f *Factory) SupportedMethods() []domain.AuthMethod {
	f.mu.RLock()
	defer f.mu.RUnlock()
	methods := make([]domain.AuthMethod, 0, len(f.builders))
	for m := range f.builders {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return methods
}

// Open creates a session. opts.Timeout bounds each request; zero means none.
func (f *Factory) Open(ctx context.Context, opts driven.SessionOptions) (driven.Session, error) {
	endpoint, err := f.Endpoint(ctx)
	if err != nil {
		return nil, err
	}

	transport := ews.NewTransport(f.cfg.Options)
	client, err := f.client(ctx, transport, opts.Timeout)
	if err != nil {
		return nil, err
	}

	sessionOpts := f.cfg.Options
	sessionOpts.Endpoint = endpoint
	return ews.NewSession(ews.SessionParams{
		Options:   sessionOpts,
		Client:    client,
		Transport: transport,
		Limiter:   f.limiter,
		Logger:    f.log,
	}), nil
}

// Endpoint returns the EWS endpoint, resolving a WSDL location once.
func (f *Factory) Endpoint(ctx context.Context) (string, error) {
	f.mu.RLock()
	endpoint := f.endpoint
	f.mu.RUnlock()
	if endpoint != "" {
		return endpoint, nil
	}

	location := f.cfg.Options.Endpoint
	var client *http.Client
	if ews.IsWSDL(location) {
		transport := ews.NewTransport(f.cfg.Options)
		defer transport.CloseIdleConnections()
		c, err := f.client(ctx, transport, 0)
		if err != nil {
			return "", err
		}
		client = c
	}

	endpoint, err := ews.ResolveEndpoint(ctx, location, client)
	if err != nil {
		return "", fmt.Errorf("resolve endpoint: %w", err)
	}
	if endpoint != location {
		f.log.Debug("ews: resolved endpoint %s from %s", endpoint, location)
	}

	f.mu.Lock()
	f.endpoint = endpoint
	f.mu.Unlock()
	return endpoint, nil
}

func (f *Factory) client(ctx context.Context, transport http.RoundTripper, timeout time.Duration) (*http.Client, error) {
	f.mu.RLock()
	builder, ok := f.builders[f.cfg.Auth]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unsupported auth method %q", domain.ErrInvalidInput, f.cfg.Auth)
	}

	client, err := builder(ctx, f.cfg, transport, timeout)
	if err != nil {
		return nil, fmt.Errorf("%s auth: %w", f.cfg.Auth, err)
	}
	return client, nil
}

// basicAuthTransport attaches credentials for the NTLM negotiator, which
// reads them from the Authorization header.
type basicAuthTransport struct {
	username string
	password string
	next     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.password)
	return t.next.RoundTrip(r)
}
