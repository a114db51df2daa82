package persistence

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

// NewFirebaseHTTPClient creates an authenticated HTTP client for the Realtime Database REST API
func NewFirebaseHTTPClient(ctx context.Context, tokenSource oauth2.TokenSource, timeout time.Duration) (*http.Client, error) {
	client, err := htransport.NewClient(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase http client: %w", err)
	}

	client.Timeout = timeout
	return client, nil
}
