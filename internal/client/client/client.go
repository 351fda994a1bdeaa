package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/security"
	"github.com/dmitrijs2005/greenwallet/internal/logging"
)

const (
	ProtocolVersionHeader = "CoronaCheck-Protocol-Version"
	ProtocolVersion       = "3.0"

	pathPrepareIssue = "/holder/prepare_issue"
	pathCredentials  = "/holder/credentials"
	pathConfig       = "/holder/config"
)

type Client interface {
	PrepareIssue(ctx context.Context) (*models.PrepareIssueEnvelope, error)
	FetchGreenCards(ctx context.Context, req models.GreenCardsRequest) (*models.RemoteGreenCards, error)
	// FetchRemoteConfiguration also returns the verified raw payload.
	FetchRemoteConfiguration(ctx context.Context) (*models.RemoteConfiguration, []byte, error)
	Ping(ctx context.Context) error
}

// SignatureValidator checks a signed envelope; see security.Verifier.
type SignatureValidator interface {
	Validate(ctx context.Context, signature, payload []byte, strategy security.TrustStrategy) (bool, error)
}

type HTTPClient struct {
	baseURL   string
	http      *http.Client
	validator SignatureValidator
	log       logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration, validator SignatureValidator, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		validator: validator,
		log:       logging.OrNop(log),
	}
}

func (c *HTTPClient) PrepareIssue(ctx context.Context) (*models.PrepareIssueEnvelope, error) {
	status, data, err := c.do(ctx, http.MethodPost, pathPrepareIssue, nil)
	if err != nil {
		return nil, err
	}
	return decodeUnsigned[models.PrepareIssueEnvelope](status, data)
}

func (c *HTTPClient) FetchGreenCards(ctx context.Context, req models.GreenCardsRequest) (*models.RemoteGreenCards, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, newServerError(0, nil, CannotSerialize)
	}
	status, data, serr := c.do(ctx, http.MethodPost, pathCredentials, body)
	if serr != nil {
		return nil, serr
	}
	return decodeUnsigned[models.RemoteGreenCards](status, data)
}

func (c *HTTPClient) FetchRemoteConfiguration(ctx context.Context) (*models.RemoteConfiguration, []byte, error) {
	status, data, err := c.do(ctx, http.MethodGet, pathConfig, nil)
	if err != nil {
		return nil, nil, err
	}
	return decodeSigned[models.RemoteConfiguration](ctx, c.validator, security.TrustConfig, status, data)
}

// Ping succeeds when the API answers at all, whatever the status.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+pathConfig, nil)
	if err != nil {
		return errors.Join(ErrUnavailable, newServerError(0, nil, InvalidRequest))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrUnavailable, newServerError(0, nil, classify(err)))
	}
	resp.Body.Close()
	return nil
}

// do performs one request. Only transport failures and 429 are errors here;
// the status of any other response is judged by the decoders.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, *ServerError) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, newServerError(0, nil, InvalidRequest)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(ProtocolVersionHeader, ProtocolVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		kind := classify(err)
		c.log.Debug(ctx, "request failed", "path", path, "kind", kind, "error", err)
		return 0, nil, newServerError(0, nil, kind)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, newServerError(resp.StatusCode, nil, classify(err))
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Debug(ctx, "non-200 response", "path", path, "status", resp.StatusCode)
	}
	if kind, ok := Inspect(resp.StatusCode); ok && kind == ServerBusy {
		return resp.StatusCode, nil, newServerError(resp.StatusCode, nil, ServerBusy)
	}
	return resp.StatusCode, data, nil
}

// serverResponse reports data as an API error body when it carries a code
// and status "error".
func serverResponse(data []byte) *ServerResponse {
	var body struct {
		Status *string `json:"status"`
		Code   *int    `json:"code"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Status == nil || body.Code == nil {
		return nil
	}
	if *body.Status != "error" {
		return nil
	}
	return &ServerResponse{Status: *body.Status, Code: *body.Code}
}

func decodeUnsigned[T any](status int, data []byte) (*T, error) {
	if resp := serverResponse(data); resp != nil {
		return nil, newServerError(status, resp, ServerErrorKind)
	}
	return decodeObject[T](status, data)
}

func decodeObject[T any](status int, data []byte) (*T, error) {
	kind, failed := Inspect(status)

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		if !failed {
			kind = CannotDeserialize
		}
		return nil, newServerError(status, serverResponse(data), kind)
	}
	if failed {
		return nil, newServerError(status, serverResponse(data), kind)
	}
	return &out, nil
}

func decodeSigned[T any](ctx context.Context, v SignatureValidator, strategy security.TrustStrategy, status int, data []byte) (*T, []byte, error) {
	var envelope models.SignedResponse
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Payload == "" || envelope.Signature == "" {
		if kind, failed := Inspect(status); failed {
			return nil, nil, newServerError(status, nil, kind)
		}
		return nil, nil, newServerError(status, nil, CannotDeserialize)
	}

	ok, err := v.Validate(ctx, []byte(envelope.Signature), []byte(envelope.Payload), strategy)
	switch {
	case errors.Is(err, security.ErrDecode):
		return nil, nil, newServerError(0, nil, CannotDeserialize)
	case err != nil, !ok:
		return nil, nil, newServerError(0, nil, InvalidSignature)
	}

	payload, err := base64.StdEncoding.DecodeString(envelope.Payload)
	if err != nil {
		return nil, nil, newServerError(0, nil, CannotDeserialize)
	}
	out, err := decodeObject[T](status, payload)
	if err != nil {
		return nil, nil, err
	}
	return out, payload, nil
}
