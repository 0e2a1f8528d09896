package ews

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/clbanning/mxj/v2"

	"github.com/custodia-labs/ewsctl/internal/connectors/microsoft"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// maxWSDLSize bounds the service description read from disk or network.
const maxWSDLSize = 8 << 20

// IsWSDL reports whether location names a service description rather than
// the EWS endpoint itself.
func IsWSDL(location string) bool {
	lower := strings.ToLower(location)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	return strings.HasSuffix(lower, ".wsdl")
}

// ResolveEndpoint returns the EWS endpoint for location. An http(s) URL that
// does not name a .wsdl file is returned as is. Otherwise the service
// description is read from disk or fetched with client, and the first
// service/port/address location is returned.
func ResolveEndpoint(ctx context.Context, location string, client *http.Client) (string, error) {
	remote := strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
	if remote && !IsWSDL(location) {
		return location, microsoft.ValidateEndpoint(location)
	}

	var (
		data []byte
		err  error
	)
	if remote {
		data, err = fetchWSDL(ctx, location, client)
	} else {
		data, err = readWSDL(strings.TrimPrefix(location, "file://"))
	}
	if err != nil {
		return "", err
	}

	endpoint, err := endpointFromWSDL(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", location, err)
	}
	return endpoint, microsoft.ValidateEndpoint(endpoint)
}

func readWSDL(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wsdl: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxWSDLSize))
	if err != nil {
		return nil, fmt.Errorf("read wsdl: %w", err)
	}
	return data, nil
}

func fetchWSDL(ctx context.Context, location string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create wsdl request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch wsdl: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch wsdl: status %d: %w", resp.StatusCode, microsoft.WrapError(resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxWSDLSize))
	if err != nil {
		return nil, fmt.Errorf("read wsdl: %w", err)
	}
	return data, nil
}

// endpointFromWSDL reads definitions/service/port/address/@location.
// SOAP 1.1 and 1.2 address elements share the local name.
func endpointFromWSDL(data []byte) (string, error) {
	m, err := mxj.NewMapXml(data)
	if err != nil {
		return "", fmt.Errorf("parse wsdl: %w", err)
	}
	locations, err := m.ValuesForPath("definitions.service.port.address.-location")
	if err != nil {
		return "", fmt.Errorf("parse wsdl: %w", err)
	}
	for _, loc := range locations {
		if s, ok := loc.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), nil
		}
	}
	return "", fmt.Errorf("%w: no service address in wsdl", domain.ErrInvalidInput)
}
