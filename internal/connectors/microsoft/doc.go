// Package microsoft provides transport support shared by Exchange Web Services
// (EWS) sessions.
//
// This package provides:
//   - Error mapping for EWS HTTP statuses and SOAP faults
//   - Rate limiting for EWS requests
//   - OAuth2 client credentials configuration for Exchange Online
//   - Endpoint validation
//
// # Authentication
//
// On-premises Exchange servers normally negotiate NTLM on the EWS endpoint.
// Exchange Online accepts an app-only bearer token obtained with the client
// credentials grant:
//   - Token URL: https://login.microsoftonline.com/{tenant}/oauth2/v2.0/token
//   - Scope: https://outlook.office365.com/.default
//
// # Throttling
//
// Exchange applies per-user throttling policies (EWSMaxConcurrency,
// EWSPercentTimeInCAS). A busy server answers with an ErrorServerBusy SOAP
// fault or HTTP 503. This package paces requests with a token bucket; it does
// not retry.
package microsoft
