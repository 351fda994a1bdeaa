package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

var ErrUnavailable = errors.New("server unavailable")

// NetworkError is the kind of a transport, decode or signature failure.
type NetworkError string

const (
	InvalidRequest                  NetworkError = "invalidRequest"
	ServerUnreachableTimedOut       NetworkError = "serverUnreachableTimedOut"
	ServerUnreachableInvalidHost    NetworkError = "serverUnreachableInvalidHost"
	ServerUnreachableConnectionLost NetworkError = "serverUnreachableConnectionLost"
	NoInternetConnection            NetworkError = "noInternetConnection"
	InvalidResponse                 NetworkError = "invalidResponse"
	ResponseCached                  NetworkError = "responseCached"
	ServerErrorKind                 NetworkError = "serverError"
	ResourceNotFound                NetworkError = "resourceNotFound"
	Redirection                     NetworkError = "redirection"
	ServerBusy                      NetworkError = "serverBusy"
	InvalidSignature                NetworkError = "invalidSignature"
	CannotSerialize                 NetworkError = "cannotSerialize"
	CannotDeserialize               NetworkError = "cannotDeserialize"
	AuthenticationCancelled         NetworkError = "authenticationCancelled"
)

func (e NetworkError) Error() string { return string(e) }

// ClientCode returns the three digit code shown to users. Kinds without one
// are reported by their HTTP status instead.
func (e NetworkError) ClientCode() (string, bool) {
	switch e {
	case InvalidRequest, ServerUnreachableInvalidHost:
		return "002", true
	case InvalidResponse:
		return "003", true
	case ServerUnreachableTimedOut:
		return "004", true
	case ServerUnreachableConnectionLost:
		return "005", true
	case AuthenticationCancelled:
		return "010", true
	case InvalidSignature:
		return "020", true
	case CannotDeserialize:
		return "030", true
	case CannotSerialize:
		return "031", true
	}
	return "", false
}

// Inspect maps an HTTP status to a NetworkError; ok is false for 2xx.
func Inspect(status int) (NetworkError, bool) {
	switch {
	case status >= 200 && status <= 299:
		return "", false
	case status == http.StatusNotModified:
		return ResponseCached, true
	case status >= 300 && status <= 399:
		return Redirection, true
	case status == http.StatusTooManyRequests:
		return ServerBusy, true
	case status >= 400 && status <= 499:
		return ResourceNotFound, true
	case status >= 500 && status <= 599:
		return ServerErrorKind, true
	}
	return InvalidResponse, true
}

// ServerResponse is the structured error body of the API.
type ServerResponse struct {
	Status string `json:"status"`
	Code   int    `json:"code"`
}

type ServerError struct {
	// Provider is set for failures talking to an event provider.
	Provider string
	// StatusCode is 0 when no HTTP exchange took place.
	StatusCode int
	Response   *ServerResponse
	Err        NetworkError
}

func (e *ServerError) Error() string {
	msg := string(e.Err)
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (http %d)", msg, e.StatusCode)
	}
	if e.Response != nil {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Response.Code)
	}
	return msg
}

func (e *ServerError) Unwrap() error { return e.Err }

func newServerError(status int, resp *ServerResponse, kind NetworkError) *ServerError {
	return &ServerError{StatusCode: status, Response: resp, Err: kind}
}

// classify maps an http.Client error to a NetworkError.
func classify(err error) NetworkError {
	var (
		dnsErr *net.DNSError
		netErr net.Error
	)
	switch {
	case errors.Is(err, context.Canceled):
		return AuthenticationCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ServerUnreachableTimedOut
	case errors.As(err, &dnsErr):
		if dnsErr.IsNotFound {
			return ServerUnreachableInvalidHost
		}
		return NoInternetConnection
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.ENETDOWN):
		return NoInternetConnection
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.EHOSTUNREACH):
		return ServerUnreachableInvalidHost
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ServerUnreachableConnectionLost
	case errors.As(err, &netErr) && netErr.Timeout():
		return ServerUnreachableTimedOut
	}
	return InvalidResponse
}
