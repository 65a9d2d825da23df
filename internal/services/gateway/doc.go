// Package gateway is the HTTP client for the remote LLM gateway that performs
// real design analyses.
//
// The gateway accepts a fixed JSON envelope and answers with
// {success, data, error}. Any transport error, non-2xx status, or
// success:false body is returned as an error tagged with services.ErrGateway
// so callers can degrade to offline analysis. Retries are off by default
// (one attempt) and can be enabled with WithRetryMaxAttempts.
package gateway
