package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// TypedResponse wraps a response with a body decoded into T.
type TypedResponse[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Data is the decoded response body.
	Data T
}

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithHeader appends a header to the request.
func WithHeader(key string, value any) RequestOption {
	return func(r *Request) {
		r.Headers = append(r.Headers, Pair{Key: key, Value: value})
	}
}

// WithQueryParam appends a query parameter to the request.
func WithQueryParam(key string, value any) RequestOption {
	return func(r *Request) {
		r.Params = append(r.Params, Pair{Key: key, Value: value})
	}
}

// WithRequestAuth overrides authentication for the request.
func WithRequestAuth(auth *AuthConfig) RequestOption {
	return func(r *Request) {
		r.Auth = auth
	}
}

// WithMaxRedirections caps redirects followed for the request.
func WithMaxRedirections(n int) RequestOption {
	return func(r *Request) {
		r.MaxRedirections = &n
	}
}

// Get performs a GET request and decodes the JSON response into type T.
func Get[T any](ctx context.Context, a *Adapter, url string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](ctx, a, http.MethodGet, url, nil, opts...)
}

// Post performs a POST request with a JSON body and decodes the response into type T.
func Post[T any](ctx context.Context, a *Adapter, url string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](ctx, a, http.MethodPost, url, body, opts...)
}

// Put performs a PUT request with a JSON body and decodes the response into type T.
func Put[T any](ctx context.Context, a *Adapter, url string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](ctx, a, http.MethodPut, url, body, opts...)
}

// Patch performs a PATCH request with a JSON body and decodes the response into type T.
func Patch[T any](ctx context.Context, a *Adapter, url string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](ctx, a, http.MethodPatch, url, body, opts...)
}

// Delete performs a DELETE request and decodes the JSON response into type T.
func Delete[T any](ctx context.Context, a *Adapter, url string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](ctx, a, http.MethodDelete, url, nil, opts...)
}

// doTyped executes a request and decodes the raw JSON body into T.
func doTyped[T any](ctx context.Context, a *Adapter, method, url string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	req := &Request{
		Method:       method,
		URL:          url,
		Data:         body,
		ResponseType: ResponseBytes,
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := a.Do(ctx, req)
	if err != nil {
		// Status errors still carry a body worth decoding.
		if resp != nil {
			var data T
			if jsonErr := json.Unmarshal(resp.Body, &data); jsonErr == nil {
				return &TypedResponse[T]{
					StatusCode: resp.Status,
					Headers:    resp.Headers,
					Data:       data,
				}, err
			}
		}
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, fmt.Errorf("httpclient: decode response: %w", err)
		}
	}

	return &TypedResponse[T]{
		StatusCode: resp.Status,
		Headers:    resp.Headers,
		Data:       data,
	}, nil
}
