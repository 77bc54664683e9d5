package compile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/debemdeboas/texpad/internal/config"
)

// Request is what the service needs to typeset a document.
type Request struct {
	Action   Action
	Text     string
	Filename string
}

// Payload is a successful response body.
type Payload struct {
	Data      []byte
	MediaType string
}

// Result carries either a Payload or one of HTTPError, TransportError or DecodeError.
type Result struct {
	Payload *Payload
	Err     error
}

// Client issues requests to the typesetting service. Implementations report every failure
// through Result.Err rather than panicking.
type Client interface {
	Do(ctx context.Context, req Request) Result
}

// HTTPClient talks to the service over HTTP with multipart form bodies.
type HTTPClient struct {
	baseURL   string
	endpoints map[Action]string
	http      *http.Client
}

func NewHTTPClient(cfg config.ServiceConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		endpoints: map[Action]string{
			Compile: cfg.PDFPath,
			Export:  cfg.DOCXPath,
		},
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Endpoint returns the absolute URL the action is posted to.
func (c *HTTPClient) Endpoint(action Action) (string, error) {
	path, ok := c.endpoints[action]
	if !ok {
		return "", fmt.Errorf("no endpoint for %s", action)
	}
	return c.baseURL + path, nil
}

func (c *HTTPClient) Do(ctx context.Context, req Request) Result {
	url, err := c.Endpoint(req.Action)
	if err != nil {
		return Result{Err: &TransportError{Err: err}}
	}

	body, contentType, err := encodeForm(req)
	if err != nil {
		return Result{Err: &TransportError{Err: fmt.Errorf("error encoding form: %w", err)}}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return Result{Err: &TransportError{Err: err}}
	}
	httpReq.Header.Set(config.HCType, contentType)
	httpReq.Header.Set(config.HAccept, defaultMediaType(req.Action)+", "+config.CTypeJSON)

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		compileLogger.Debug().Err(err).Str("url", url).Msg("Request failed before a response")
		return Result{Err: &TransportError{Err: err}}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Err: &DecodeError{Err: fmt.Errorf("error reading response body: %w", err)}}
	}

	compileLogger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(started)).
		Msg("Service responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Err: &HTTPError{
			Action: req.Action,
			Status: resp.StatusCode,
			Detail: parseDetail(data),
		}}
	}

	mediaType := defaultMediaType(req.Action)
	if mt, _, err := mime.ParseMediaType(resp.Header.Get(config.HCType)); err == nil && mt != "" {
		mediaType = mt
	}
	return Result{Payload: &Payload{Data: data, MediaType: mediaType}}
}

func encodeForm(req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField(config.FormFieldSource, req.Text); err != nil {
		return nil, "", err
	}
	if err := w.WriteField(config.FormFieldMain, req.Filename); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// parseDetail pulls a string "detail" out of a JSON error body. Anything else, including the
// validation lists FastAPI sends with 422, yields "".
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func defaultMediaType(action Action) string {
	if action == Export {
		return config.CTypeDOCX
	}
	return config.CTypePDF
}
