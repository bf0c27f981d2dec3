package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Client is the single configured request pipeline shared by every API
// call. All requests go through the session Transport so the bearer
// credential and the 401 recovery behavior apply uniformly; callers never
// set the Authorization header themselves.
type Client struct {
	baseURL    string
	httpClient *http.Client
	transport  *Transport
	logger     Logger
}

// ClientOption customizes Client construction.
type ClientOption func(*Client)

// WithClientLogger overrides the logger.
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClientTransport replaces the session transport, keeping the base
// RoundTripper injectable for tests.
func WithClientTransport(transport *Transport) ClientOption {
	return func(c *Client) {
		if transport != nil {
			c.transport = transport
		}
	}
}

func NewClient(cfg Config, store CredentialStore, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: cfg.GetBaseURL(),
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.transport == nil {
		c.transport = NewTransport(store, WithTransportLogger(c.logger))
	}

	c.httpClient = &http.Client{Transport: c.transport}

	return c
}

// Transport returns the session transport backing this client.
func (c *Client) Transport() *Transport {
	return c.transport
}

// HTTPClient exposes the shared pipeline for collaborators that need a
// plain *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do issues a JSON request against the configured base address.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.execute(req, out)
}

// SubmitForm issues a multipart POST. It shares the session transport and
// overrides only the content type; build receives the writer to populate
// fields and file parts.
func (c *Client) SubmitForm(ctx context.Context, path string, build func(*multipart.Writer) error, out any) error {
	buf := &bytes.Buffer{}
	form := multipart.NewWriter(buf)

	if err := build(form); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to build form payload")
	}

	if err := form.Close(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to finalize form payload")
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.execute(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to build request")
	}

	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (c *Client) execute(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "unable to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(req, resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "unable to decode response")
	}

	return nil
}

func (c *Client) statusError(req *http.Request, status int, body []byte) error {
	metadata := map[string]any{
		"status": status,
		"path":   req.URL.Path,
	}
	if msg := serverMessage(body); msg != "" {
		metadata["message"] = msg
	}

	if status == http.StatusUnauthorized {
		// a fresh error per rejection; the sentinel is shared and callers
		// hold on to the metadata
		return goerrors.New(ErrAuthorizationExpired.Message, ErrAuthorizationExpired.Category).
			WithTextCode(textCodeAuthorizationExpired).
			WithCode(goerrors.CodeUnauthorized).
			WithMetadata(metadata)
	}

	category := goerrors.CategoryOperation
	code := goerrors.CodeInternal
	switch status {
	case http.StatusForbidden:
		category = goerrors.CategoryAuthz
		code = goerrors.CodeForbidden
	case http.StatusNotFound:
		code = goerrors.CodeNotFound
	case http.StatusConflict:
		code = goerrors.CodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = goerrors.CodeBadRequest
	}

	return goerrors.New("request rejected", category).
		WithCode(code).
		WithMetadata(metadata)
}

// serverMessage extracts the message field from an error payload.
func serverMessage(body []byte) string {
	payload := struct {
		Message string `json:"message"`
	}{}

	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
