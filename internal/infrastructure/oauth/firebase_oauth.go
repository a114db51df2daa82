package oauth

import (
	"context"
	"fmt"

	"eta-worker-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes required by the Realtime Database REST API
var FirebaseScopes = []string{
	"https://www.googleapis.com/auth/firebase.database",
	"https://www.googleapis.com/auth/userinfo.email",
}

// FirebaseOAuth handles service account authentication with Firebase
type FirebaseOAuth struct {
	credentials *google.Credentials
	logger      logger.Logger
}

// NewFirebaseOAuth creates a new Firebase OAuth handler from service account JSON
func NewFirebaseOAuth(ctx context.Context, credentialsJSON []byte, logger logger.Logger) (*FirebaseOAuth, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, FirebaseScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse firebase credentials: %w", err)
	}

	return &FirebaseOAuth{
		credentials: creds,
		logger:      logger,
	}, nil
}

// GetTokenSource returns a cached token source that refreshes before expiry
func (o *FirebaseOAuth) GetTokenSource() oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, o.credentials.TokenSource)
}

// ProjectID returns the project the credentials belong to
func (o *FirebaseOAuth) ProjectID() string {
	return o.credentials.ProjectID
}

// AccessToken fetches a fresh access token
func (o *FirebaseOAuth) AccessToken() (*oauth2.Token, error) {
	token, err := o.credentials.TokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch access token: %w", err)
	}

	o.logger.Debug("Access token obtained", "project", o.ProjectID(), "expiry", token.Expiry)
	return token, nil
}
