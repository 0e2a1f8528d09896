package ews

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ewsctl/internal/connectors/microsoft"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driven"
	"github.com/custodia-labs/ewsctl/internal/logger"
)

// Ensure Session implements the interface.
var _ driven.Session = (*Session)(nil)

// soapActionBase prefixes the SOAPAction header of every operation.
const soapActionBase = "http://schemas.microsoft.com/exchange/services/2006/messages/"

// maxResponseSize bounds a single decoded response.
const maxResponseSize = 256 << 20

// Options configures the sessions of one mailbox.
type Options struct {
	// Endpoint is the EWS URL, e.g. https://mail.example.com/EWS/Exchange.asmx.
	Endpoint string
	// ServerVersion is sent in RequestServerVersion.
	ServerVersion string
	// Impersonate is the primary SMTP address to impersonate, if any.
	Impersonate string
	// InsecureSkipVerify disables TLS certificate checks.
	InsecureSkipVerify bool
	// UserAgent is sent with every request.
	UserAgent string
}

// NewTransport returns a fresh transport for one session.
func NewTransport(opts Options) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for lab servers
	}
	return transport
}

// SessionParams carries everything a Session needs. Client carries the
// authentication and wraps Transport.
type SessionParams struct {
	Options   Options
	Client    *http.Client
	Transport *http.Transport
	Limiter   *microsoft.RateLimiter
	Logger    *logger.Logger
}

// Session issues EWS SOAP requests over its own transport.
// It is not safe for concurrent use.
type Session struct {
	opts      Options
	client    *http.Client
	transport *http.Transport
	limiter   *microsoft.RateLimiter
	log       *logger.Logger
	closed    bool
	last      Exchange
}

// Exchange is one request envelope and the response body it received.
// Received is nil when no response arrived.
type Exchange struct {
	Action   string
	Sent     []byte
	Received []byte
}

// LastExchange returns the envelopes of the most recent request.
func (s *Session) LastExchange() Exchange {
	return s.last
}

// NewSession creates a Session.
func NewSession(p SessionParams) *Session {
	if p.Options.ServerVersion == "" {
		p.Options.ServerVersion = domain.ServerVersion
	}
	if p.Client == nil {
		p.Client = &http.Client{Transport: p.Transport}
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &Session{
		opts:      p.Options,
		client:    p.Client,
		transport: p.Transport,
		limiter:   p.Limiter,
		log:       p.Logger,
	}
}

// GetFolder issues a GetFolder request.
func (s *Session) GetFolder(ctx context.Context, req domain.GetFolderRequest) (domain.Tree, error) {
	content, err := encodeGetFolder(req)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, "GetFolder", content)
}

// FindFolder issues a FindFolder request.
func (s *Session) FindFolder(ctx context.Context, req domain.FindFolderRequest) (domain.Tree, error) {
	content, err := encodeFindFolder(req)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, "FindFolder", content)
}

// FindItem issues a FindItem request for one page.
func (s *Session) FindItem(ctx context.Context, req domain.FindItemRequest) (domain.Tree, error) {
	content, err := encodeFindItem(req)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, "FindItem", content)
}

// GetItem issues a GetItem request for a batch of ids.
func (s *Session) GetItem(ctx context.Context, req domain.GetItemRequest) (domain.Tree, error) {
	content, err := encodeGetItem(req)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, "GetItem", content)
}

// ConvertID issues a ConvertId request for one id.
func (s *Session) ConvertID(ctx context.Context, req domain.ConvertIDRequest) (domain.Tree, error) {
	content, err := encodeConvertID(req)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, "ConvertId", content)
}

// Close releases idle connections. Later calls fail with domain.ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.transport != nil {
		s.transport.CloseIdleConnections()
	}
	return nil
}

// call sends one SOAP request and decodes the response.
func (s *Session) call(ctx context.Context, action string, content any) (domain.Tree, error) {
	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit: %w", action, err)
		}
	}

	payload, err := marshalEnvelope(newEnvelope(s.opts.ServerVersion, s.opts.Impersonate, content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	s.last = Exchange{Action: action, Sent: payload}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", action, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("SOAPAction", soapActionBase+action)
	req.Header.Set("client-request-id", requestID)
	req.Header.Set("return-client-request-id", "true")
	if s.opts.UserAgent != "" {
		req.Header.Set("User-Agent", s.opts.UserAgent)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", action, err)
	}
	s.last.Received = data
	s.log.Debug("ews: %s %d (%d bytes, %s, request %s)",
		action, resp.StatusCode, len(data), time.Since(start).Round(time.Millisecond), requestID)
	if s.log.IsVerbose() {
		s.log.Debug("ews: %s sent:\n%s", action, s.last.Sent)
		s.log.Debug("ews: %s received:\n%s", action, s.last.Received)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d: %w", action, resp.StatusCode, statusError(resp.StatusCode, data))
	}

	tree, err := decodeEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return tree, nil
}

// statusError prefers the SOAP fault carried by an error response.
func statusError(status int, data []byte) error {
	if _, err := decodeEnvelope(data); err != nil {
		var fault *microsoft.Fault
		if errors.As(err, &fault) {
			return fault
		}
	}
	if err := microsoft.WrapError(status); err != nil {
		return err
	}
	return fmt.Errorf("%w: unexpected status", microsoft.ErrMalformedResponse)
}
