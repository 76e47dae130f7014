package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// TypedResponse wraps a response with a decoded body of type T.
type TypedResponse[T any] struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Data is the decoded response body.
	Data T
}

// Get performs a GET request and decodes the JSON response into type T.
// An empty body leaves T at its zero value.
func Get[T any](c *Client, ctx context.Context, url string) (*TypedResponse[T], error) {
	resp, err := c.Do(ctx, Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, NewDecodeError(fmt.Errorf("decode %s: %w", url, err), resp.Body)
		}
	}

	return &TypedResponse[T]{StatusCode: resp.StatusCode, Data: data}, nil
}
