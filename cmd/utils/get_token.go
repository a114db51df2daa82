package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"eta-worker-service/internal/infrastructure/config"
	"eta-worker-service/internal/infrastructure/oauth"
	"eta-worker-service/pkg/logger"
)

// Prints a Realtime Database access token for the configured service account,
// for poking at the REST API with curl.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	credentials, err := cfg.FirebaseCredentials()
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	firebaseOAuth, err := oauth.NewFirebaseOAuth(ctx, credentials, logger.NewNopLogger())
	if err != nil {
		log.Fatalf("Failed to set up OAuth: %v", err)
	}

	token, err := firebaseOAuth.AccessToken()
	if err != nil {
		log.Fatalf("Failed to get token: %v", err)
	}

	fmt.Printf("\nProject: %s\nAccess Token: %s\nExpires: %s\n\n", firebaseOAuth.ProjectID(), token.AccessToken, token.Expiry.Format(time.RFC3339))
	if cfg.FirebaseDatabaseURL != "" {
		fmt.Printf("curl -H 'Authorization: Bearer %s' '%s/%s.json?shallow=true'\n", token.AccessToken, cfg.FirebaseDatabaseURL, cfg.TripsCollection)
	}
}
