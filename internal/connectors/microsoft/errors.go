package microsoft

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types for EWS responses.
var (
	// ErrUnauthorised indicates the credentials were rejected.
	ErrUnauthorised = errors.New("ews: unauthorised")

	// ErrForbidden indicates the account may not use EWS or impersonate the mailbox.
	ErrForbidden = errors.New("ews: forbidden")

	// ErrNotFound indicates the endpoint URL does not host EWS.
	ErrNotFound = errors.New("ews: endpoint not found")

	// ErrRateLimited indicates the request was throttled by Exchange.
	ErrRateLimited = errors.New("ews: rate limited")

	// ErrBadRequest indicates the request envelope was malformed.
	ErrBadRequest = errors.New("ews: bad request")

	// ErrServerError indicates a server-side error from Exchange.
	ErrServerError = errors.New("ews: server error")

	// ErrSOAPFault indicates the server answered with a SOAP fault.
	ErrSOAPFault = errors.New("ews: soap fault")

	// ErrMalformedResponse indicates the response body is not a SOAP envelope.
	ErrMalformedResponse = errors.New("ews: malformed response")
)

// WrapError converts an HTTP status code to an appropriate error.
func WrapError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// Fault is a SOAP fault returned by Exchange.
type Fault struct {
	// Code is the faultcode, e.g. "a:ErrorSchemaValidation".
	Code string
	// Message is the faultstring.
	Message string
	// ResponseCode is the EWS response code from the fault detail, if any.
	ResponseCode string
}

// Error implements error.
func (f *Fault) Error() string {
	if f.ResponseCode != "" {
		return fmt.Sprintf("ews: soap fault %s (%s): %s", f.Code, f.ResponseCode, f.Message)
	}
	return fmt.Sprintf("ews: soap fault %s: %s", f.Code, f.Message)
}

// Unwrap maps throttling faults to ErrRateLimited and everything else to ErrSOAPFault.
func (f *Fault) Unwrap() error {
	if IsServerBusy(f.ResponseCode) {
		return ErrRateLimited
	}
	return ErrSOAPFault
}

// IsServerBusy reports whether an EWS response code signals throttling.
func IsServerBusy(responseCode string) bool {
	return responseCode == "ErrorServerBusy" || responseCode == "ErrorTooManyObjectsOpened"
}

// IsUnauthorised checks if the status code indicates an authentication failure.
func IsUnauthorised(statusCode int) bool {
	return statusCode == http.StatusUnauthorized
}

// IsRateLimited checks if the status code indicates rate limiting.
// Exchange on-premises reports throttling as 503 as well as 429.
func IsRateLimited(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable
}

// IsNotFound checks if the status code indicates a missing endpoint.
func IsNotFound(statusCode int) bool {
	return statusCode == http.StatusNotFound
}
